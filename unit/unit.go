package unit

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownUnit is returned when a unit name is not in the domain's table.
// It indicates a programming error (mismatched domain and unit), so it is
// always surfaced and never defaulted.
var ErrUnknownUnit = errors.New("unknown unit")

// Unit is one entry of a domain's table. Magnitude is the number of base
// units one of this unit represents.
type Unit struct {
	Name      string  `json:"name"`
	Magnitude float64 `json:"magnitude"`
	Label     string  `json:"label"`
}

// Domain describes one measurement family (count, duration, bytes, ...)
// over a fixed table of units. Implementations are immutable and safe for
// concurrent use.
type Domain interface {
	Name() string
	// Base returns the unit of magnitude 1, the unit raw values are
	// expressed in.
	Base() Unit
	// Units returns the table in ascending magnitude. Callers must not
	// mutate the returned slice.
	Units() []Unit
	// Scale maps a raw base-unit value to its best-fit unit: the
	// largest-magnitude unit still yielding a scaled value >= 1, or the
	// base unit with value = raw when none qualifies.
	Scale(raw float64) (float64, Unit)
	// ScaleTo converts a raw base-unit value into the named unit.
	ScaleTo(raw float64, name string) (float64, error)
	// Magnitude looks up the magnitude of the named unit.
	Magnitude(name string) (float64, error)
}

type domain struct {
	name   string
	units  []Unit // ascending magnitude
	byName map[string]Unit
	base   Unit
}

// New builds a domain over the given units, validating the table
// invariants: at least one unit, unique names, strictly positive and
// unique magnitudes, exactly one unit of magnitude 1.
func New(name string, units ...Unit) (Domain, error) {
	if name == "" {
		return nil, errors.New("domain name must not be empty")
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("domain %q has no units", name)
	}
	table := make([]Unit, len(units))
	copy(table, units)
	sort.Slice(table, func(i, j int) bool {
		return table[i].Magnitude < table[j].Magnitude
	})
	d := &domain{
		name:   name,
		units:  table,
		byName: make(map[string]Unit, len(table)),
	}
	var baseFound bool
	for i, u := range table {
		if u.Name == "" {
			return nil, fmt.Errorf("domain %q: unit with empty name", name)
		}
		if u.Magnitude <= 0 {
			return nil, fmt.Errorf("domain %q: unit %q has non-positive magnitude %v", name, u.Name, u.Magnitude)
		}
		if i > 0 && u.Magnitude == table[i-1].Magnitude {
			return nil, fmt.Errorf("domain %q: units %q and %q share magnitude %v", name, table[i-1].Name, u.Name, u.Magnitude)
		}
		if _, exists := d.byName[u.Name]; exists {
			return nil, fmt.Errorf("domain %q: duplicate unit name %q", name, u.Name)
		}
		d.byName[u.Name] = u
		if u.Magnitude == 1 {
			d.base = u
			baseFound = true
		}
	}
	if !baseFound {
		return nil, fmt.Errorf("domain %q has no unit of magnitude 1", name)
	}
	return d, nil
}

// Must is New for statically known tables, panicking on invalid input.
func Must(name string, units ...Unit) Domain {
	d, err := New(name, units...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *domain) Name() string { return d.name }

func (d *domain) Base() Unit { return d.base }

func (d *domain) Units() []Unit { return d.units }

func (d *domain) Scale(raw float64) (float64, Unit) {
	// descending, so a value exactly at a threshold takes the larger unit
	for i := len(d.units) - 1; i >= 0; i-- {
		u := d.units[i]
		if raw/u.Magnitude >= 1 {
			return raw / u.Magnitude, u
		}
	}
	return raw, d.base
}

func (d *domain) ScaleTo(raw float64, name string) (float64, error) {
	u, ok := d.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q in domain %q", ErrUnknownUnit, name, d.name)
	}
	return raw / u.Magnitude, nil
}

func (d *domain) Magnitude(name string) (float64, error) {
	u, ok := d.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q in domain %q", ErrUnknownUnit, name, d.name)
	}
	return u.Magnitude, nil
}
