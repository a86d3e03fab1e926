package hgcalhistory

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects bin edges from the command line. Each occurrence
// of the flag appends values, given either as a comma separated list
// ("0,1,2.5") or as "n:min:max" for n uniform bins. The first occurrence
// replaces any default.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

func (f *FloatArrayFlags) Set(valueStr string) error {
	values, err := parseEdges(valueStr)
	if err != nil {
		return err
	}

	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	f.Array = append(f.Array, values...)
	return nil
}

func (f *FloatArrayFlags) String() string {
	if f == nil {
		return "[]"
	}
	return fmt.Sprint(f.Array)
}

func parseEdges(s string) ([]float64, error) {
	if parts := strings.Split(s, ":"); len(parts) == 3 {
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("bin count %q: %w", parts[0], err)
		}
		lo, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, err
		}
		return UniformEdges(n, lo, hi)
	}

	var values []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}

// UniformEdges returns the n+1 edges of n equal bins spanning [lo, hi].
func UniformEdges(n int, lo, hi float64) ([]float64, error) {
	if n < 1 || !(hi > lo) {
		return nil, fmt.Errorf("uniform edges: need n >= 1 and hi > lo, got %d, %g, %g", n, lo, hi)
	}
	edges := make([]float64, n+1)
	width := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[n] = hi
	return edges, nil
}
