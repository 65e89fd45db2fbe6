package usecase

import (
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// fieldSep cannot appear in trimmed single-line input.
const fieldSep = "\x1f"

// IdempotencyKey derives a stable key from the caller and the booking
// details, so a retried submission maps to the same provider request.
func IdempotencyKey(callerID string, b *bookingDraft) string {
	parts := []string{
		callerID,
		strings.ToLower(b.Email),
		strings.ToLower(b.Name),
		b.Package,
		strconv.Itoa(b.Nights),
		string(b.Occupancy),
		strconv.FormatFloat(b.TotalPrice, 'f', 2, 64),
	}
	return digest(strings.Join(parts, fieldSep))
}

func digest(s string) string {
	sum := blake2b.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
