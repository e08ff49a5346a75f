// skalafmt scales numbers offline using the built-in unit domains.
//
// Values come from the arguments, or from stdin one per line:
//
//	$ skalafmt -d count 1500 2500000
//	1.5K
//	2.5M
//
// With -s (or -u) one unit is picked for the whole input and every
// value is printed rescaled into it:
//
//	$ skalafmt -d count -s best 1 101 1001 10001 100001 1000001
//	unit: thousand (K)
//	0.001
//	0.101
//	...
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/swissinfo-ch/skala/unit"
)

func main() {
	var (
		domainName string
		strategy   string
		unitName   string
		list       bool
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [value...]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Values are read from stdin, one per line, when none are given.\n")
		flag.PrintDefaults()
	}

	flag.StringVar(&domainName, "d", "count", "Unit domain (count, duration or bytes)")
	flag.StringVar(&strategy, "s", "", "Pick one unit for the whole input: best, largest, smallest or none")
	flag.StringVar(&unitName, "u", "", "Rescale into this unit, skipping selection")
	flag.BoolVar(&list, "list", false, "Print the domain's unit table and exit")
	flag.Parse()

	domain, ok := unit.Default().Lookup(domainName)
	if !ok {
		fatalf("unknown domain %q", domainName)
	}

	if list {
		for _, u := range domain.Units() {
			fmt.Printf("%-12s %14g %s\n", u.Name, u.Magnitude, u.Label)
		}
		return
	}

	values, err := readValues()
	if err != nil {
		fatalf("%v", err)
	}

	// without -s or -u, every value gets its own best fit
	if strategy == "" && unitName == "" {
		for _, v := range values {
			fmt.Println(unit.Format(domain, v))
		}
		return
	}

	chosen, err := pickUnit(domain, values, strategy, unitName)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("unit: %s (%s)\n", chosen.Name, chosen.Label)
	for _, v := range values {
		scaled, err := domain.ScaleTo(v, chosen.Name)
		if err != nil {
			fatalf("%v", err)
		}
		fmt.Println(strconv.FormatFloat(scaled, 'f', -1, 64))
	}
}

func pickUnit(domain unit.Domain, values []float64, strategy, unitName string) (unit.Unit, error) {
	if unitName != "" {
		for _, u := range domain.Units() {
			if u.Name == unitName {
				return u, nil
			}
		}
		return unit.Unit{}, fmt.Errorf("%w: %q in domain %q", unit.ErrUnknownUnit, unitName, domain.Name())
	}
	s, err := unit.ParseStrategy(strategy)
	if err != nil {
		return unit.Unit{}, err
	}
	return unit.BestUnit(domain, values, s)
}

func readValues() ([]float64, error) {
	args := flag.Args()
	if len(args) > 0 {
		values := make([]float64, len(args))
		for i, arg := range args {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse value %q: %w", arg, err)
			}
			values[i] = v
		}
		return values, nil
	}
	var values []float64
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse value %q: %w", line, err)
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
