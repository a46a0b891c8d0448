package util

import "strconv"

// ParseIntDefault parses string to int or returns default if empty/invalid.
func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// ParseFloat parses a decimal string as sent by exchange APIs.
func ParseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFloatDefault parses a decimal string or returns def if empty/invalid.
func ParseFloatDefault(s string, def float64) float64 {
	if v, ok := ParseFloat(s); ok {
		return v
	}
	return def
}
