package unit

import (
	"fmt"
	"strconv"
)

// Format renders raw in its best-fit unit of d, one decimal place above
// base scale and a bare number at base scale.
func Format(d Domain, raw float64) string {
	v, u := d.Scale(raw)
	if u.Magnitude == 1 {
		return strconv.FormatFloat(v, 'f', -1, 64) + u.Label
	}
	return fmt.Sprintf("%.1f%s", v, u.Label)
}

// FmtCount renders a tally using the count domain, e.g. 1500 -> "1.5K".
func FmtCount(count uint32) string {
	return Format(Count, float64(count))
}

// FmtFileSize renders a size in bytes using the bytes domain,
// e.g. 2048 -> "2.0KB".
func FmtFileSize(size int64) string {
	return Format(Bytes, float64(size))
}
