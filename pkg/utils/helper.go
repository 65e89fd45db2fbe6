package utils

import (
	"math"
	"strings"
)

// SplitName splits a full name on whitespace. The first token is the first
// name, the rest joined by single spaces is the last name; a single token is
// used for both.
func SplitName(full string) (first, last string) {
	tokens := strings.Fields(full)
	if len(tokens) == 0 {
		return "", ""
	}

	first = tokens[0]
	last = strings.Join(tokens[1:], " ")
	if last == "" {
		last = first
	}

	return first, last
}

// AmountsEqual compares two currency amounts to the cent.
func AmountsEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}

// RoundCents rounds an amount to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
