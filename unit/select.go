package unit

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by BestUnit when a value-scanning
	// strategy is given no values to scan.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidStrategy is returned for a Strategy outside the
	// enumeration.
	ErrInvalidStrategy = errors.New("invalid strategy")
)

// Strategy picks one representative unit for a whole list of values.
// The zero value is Best, so an unspecified strategy defaults to best.
type Strategy int

const (
	// Best picks the most frequent per-value best-fit unit, breaking
	// count ties toward the larger magnitude.
	Best Strategy = iota
	// Largest picks the largest-magnitude per-value best-fit unit.
	Largest
	// Smallest picks the smallest-magnitude per-value best-fit unit.
	Smallest
	// None picks the base unit without inspecting values.
	None
)

// ParseStrategy maps a strategy name to its value. The empty string
// means Best; anything else outside the four names is rejected.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "best":
		return Best, nil
	case "largest":
		return Largest, nil
	case "smallest":
		return Smallest, nil
	case "none":
		return None, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
}

func (s Strategy) String() string {
	switch s {
	case Best:
		return "best"
	case Largest:
		return "largest"
	case Smallest:
		return "smallest"
	case None:
		return "none"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// BestUnit picks the single unit of d that should display all of values.
// With None the base unit is returned and values are never inspected.
// The other strategies scan per-value best-fit units and return
// ErrEmptyInput when values is empty.
func BestUnit(d Domain, values []float64, strategy Strategy) (Unit, error) {
	if strategy == None {
		return d.Base(), nil
	}
	if strategy != Best && strategy != Largest && strategy != Smallest {
		return Unit{}, fmt.Errorf("%w: %d", ErrInvalidStrategy, int(strategy))
	}
	if len(values) == 0 {
		return Unit{}, fmt.Errorf("%w: no values to pick a unit for", ErrEmptyInput)
	}
	switch strategy {
	case Smallest:
		_, pick := d.Scale(values[0])
		for _, v := range values[1:] {
			if _, u := d.Scale(v); u.Magnitude < pick.Magnitude {
				pick = u
			}
		}
		return pick, nil
	case Largest:
		_, pick := d.Scale(values[0])
		for _, v := range values[1:] {
			if _, u := d.Scale(v); u.Magnitude > pick.Magnitude {
				pick = u
			}
		}
		return pick, nil
	}
	// best: count per-value best-fit units, highest count wins,
	// count ties resolve to the larger magnitude
	counts := make(map[string]int)
	units := make(map[string]Unit)
	for _, v := range values {
		_, u := d.Scale(v)
		counts[u.Name]++
		units[u.Name] = u
	}
	var pick Unit
	var pickCount int
	for name, n := range counts {
		u := units[name]
		if n > pickCount || (n == pickCount && u.Magnitude > pick.Magnitude) {
			pick = u
			pickCount = n
		}
	}
	return pick, nil
}
