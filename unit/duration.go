package unit

// Duration scales elapsed time. Raw values are nanoseconds.
var Duration = Must("duration",
	Unit{Name: "nanosecond", Magnitude: 1, Label: "ns"},
	Unit{Name: "microsecond", Magnitude: 1e3, Label: "µs"},
	Unit{Name: "millisecond", Magnitude: 1e6, Label: "ms"},
	Unit{Name: "second", Magnitude: 1e9, Label: "s"},
	Unit{Name: "minute", Magnitude: 6e10, Label: "m"},
	Unit{Name: "hour", Magnitude: 3.6e12, Label: "h"},
)
