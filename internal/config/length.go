package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the measurement unit a Length was written in.
type Unit uint8

const (
	// UnitPixel is an absolute pixel amount.
	UnitPixel Unit = iota
	// UnitPercentage is a fraction of the monitor's width.
	UnitPercentage
)

// Length is a parsed measurement such as "5%", "20px", or "15".
type Length struct {
	Amount float64
	Unit   Unit
}

// ParseLength parses a length string. Recognized suffixes are "%" and "ppt"
// (percent of monitor width) and "px" (pixels); a bare number means pixels.
// An unrecognized suffix is tolerated and the numeric value is used as-is.
// Only a string with no leading number at all is an error.
func ParseLength(s string) (Length, error) {
	trimmed := strings.TrimSpace(s)

	end := 0
	for end < len(trimmed) {
		c := trimmed[end]
		if c >= '0' && c <= '9' || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}

	amount, err := strconv.ParseFloat(trimmed[:end], 64)
	if err != nil {
		return Length{}, fmt.Errorf("invalid length %q: no numeric amount", s)
	}

	switch strings.ToLower(strings.TrimSpace(trimmed[end:])) {
	case "%", "ppt":
		return Length{Amount: amount, Unit: UnitPercentage}, nil
	default:
		// "px", bare numbers, and anything else are pixel amounts.
		return Length{Amount: amount, Unit: UnitPixel}, nil
	}
}

// ToPixels resolves the length against a monitor width. Percentages scale
// with the monitor; pixel amounts pass through.
func (l Length) ToPixels(monitorWidth int) int {
	if l.Unit == UnitPercentage {
		return int(l.Amount / 100 * float64(monitorWidth))
	}
	return int(l.Amount)
}
