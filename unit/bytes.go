package unit

// Bytes scales data sizes in powers of 1024.
var Bytes = Must("bytes",
	Unit{Name: "byte", Magnitude: 1, Label: "B"},
	Unit{Name: "kilobyte", Magnitude: 1 << 10, Label: "KB"},
	Unit{Name: "megabyte", Magnitude: 1 << 20, Label: "MB"},
	Unit{Name: "gigabyte", Magnitude: 1 << 30, Label: "GB"},
	Unit{Name: "terabyte", Magnitude: 1 << 40, Label: "TB"},
)
