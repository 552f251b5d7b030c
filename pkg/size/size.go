// Package size converts reported (magnitude, unit) pairs into byte counts.
//
// The unit table is decimal: a kilobyte is 1000 bytes, not 1024. Unit
// labels are case-sensitive and only B, KB, MB and GB are recognized.
package size

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Canonical unit labels.
const (
	B  = "B"
	KB = "KB"
	MB = "MB"
	GB = "GB"
)

// ErrUnknownUnit is matched by every UnknownUnitError via errors.Is.
var ErrUnknownUnit = errors.New("unknown size unit")

// UnknownUnitError reports a unit label outside the fixed table.
type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown size unit %q (must be one of %s)", e.Unit, strings.Join(Units(), ", "))
}

// Is lets errors.Is(err, ErrUnknownUnit) succeed.
func (e *UnknownUnitError) Is(target error) bool {
	return target == ErrUnknownUnit
}

var factors = map[string]float64{
	B:  1,
	KB: 1000,
	MB: 1000 * 1000,
	GB: 1000 * 1000 * 1000,
}

// Units returns the canonical unit labels from smallest to largest.
func Units() []string {
	return []string{B, KB, MB, GB}
}

// Factor returns the number of bytes in one unit.
func Factor(unit string) (float64, error) {
	f, ok := factors[unit]
	if !ok {
		return 0, &UnknownUnitError{Unit: unit}
	}
	return f, nil
}

// ToBytes returns magnitude scaled to bytes.
func ToBytes(magnitude float64, unit string) (float64, error) {
	f, err := Factor(unit)
	if err != nil {
		return 0, err
	}
	return magnitude * f, nil
}

var reSize = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*([A-Za-z]+)\s*$`)

// Parse reads a human-written size such as "500KB" or "1.5 MB" and returns
// the byte count. A bare number is not accepted; the unit is required.
func Parse(s string) (float64, error) {
	m := reSize.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid size %q (expected <number><unit>, e.g. 500KB)", s)
	}

	magnitude, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}

	return ToBytes(magnitude, m[2])
}

// Format renders a byte count with decimal (SI) prefixes, e.g. "1.5 MB".
func Format(bytes float64) string {
	if bytes <= 0 || math.IsNaN(bytes) {
		return "0 B"
	}
	return humanize.Bytes(uint64(math.Round(bytes)))
}

// FormatReported renders a magnitude as it appears in the report, with two
// decimals, e.g. "12.34 MB".
func FormatReported(magnitude float64, unit string) string {
	return strconv.FormatFloat(magnitude, 'f', 2, 64) + " " + unit
}
