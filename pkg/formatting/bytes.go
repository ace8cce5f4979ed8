// Package formatting converts byte sizes to and from human-readable strings.
package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

const base = 1024

// Binary multiples, so "1 KB" is 1024 bytes.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above one, e.g. FormatBytes(1536, 1) is "1.5 KB".
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := float64(n)
	i := 0
	for math.Abs(size) >= base && i < len(units)-1 {
		size /= base
		i++
	}
	if i == 0 {
		return strconv.FormatInt(n, 10) + " B"
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes reads sizes such as "512", "64kb" or "1.5 MB". Units are
// case-insensitive and a bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size")
	}

	split := strings.IndexFunc(s, unicode.IsLetter)
	number, unit := s, ""
	if split >= 0 {
		number, unit = strings.TrimSpace(s[:split]), strings.ToUpper(s[split:])
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size %q", s)
	}

	exp := 0
	if unit != "" {
		if exp = slices.Index(units, unit); exp < 0 {
			return 0, fmt.Errorf("unknown byte size unit %q", unit)
		}
	}
	return int64(value * math.Pow(base, float64(exp))), nil
}
