package unit

// Count scales plain tallies in powers of 1000.
var Count = Must("count",
	Unit{Name: "one", Magnitude: 1, Label: ""},
	Unit{Name: "thousand", Magnitude: 1e3, Label: "K"},
	Unit{Name: "million", Magnitude: 1e6, Label: "M"},
	Unit{Name: "billion", Magnitude: 1e9, Label: "G"},
	Unit{Name: "trillion", Magnitude: 1e12, Label: "T"},
)
