// Package fingerprint derives the deterministic content hash that binds a
// credential to its holder. The same academic fact always yields the same
// fingerprint; altering any identity-bearing field yields a different one.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	dErrors "ijazah/pkg/domain-errors"
)

const separator = "|"

var hexPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

// Inputs are the identity-bearing fields of a credential and its resolved
// holder and program.
type Inputs struct {
	EnrollmentNumber string
	HolderName       string
	ProgramCode      string
	SerialNumber     string
	GraduationDate   time.Time
}

func canonical(field string) string {
	return strings.ToLower(strings.TrimSpace(field))
}

func digest(canonicalString string) string {
	sum := sha256.Sum256([]byte(canonicalString))
	return "0x" + hex.EncodeToString(sum[:])
}

// Compute builds the canonical string
// enrollmentNumber|holderName|programCode|serialNumber|YYYY-MM-DD,
// each field trimmed and lowercased, and returns its SHA-256 digest as a
// 0x-prefixed lowercase hex string.
//
// Missing identity fields fail with a DataIncomplete error. The function never
// substitutes defaults: a fingerprint over partial data would corrupt the
// verification guarantee.
func Compute(in Inputs) (string, error) {
	fields := map[string]string{
		"enrollment number": canonical(in.EnrollmentNumber),
		"holder name":       canonical(in.HolderName),
		"program code":      canonical(in.ProgramCode),
		"serial number":     canonical(in.SerialNumber),
	}
	for name, value := range fields {
		if value == "" {
			return "", dErrors.New(dErrors.CodeDataIncomplete, "missing "+name)
		}
	}
	if in.GraduationDate.IsZero() {
		return "", dErrors.New(dErrors.CodeDataIncomplete, "missing graduation date")
	}

	parts := []string{
		fields["enrollment number"],
		fields["holder name"],
		fields["program code"],
		fields["serial number"],
		in.GraduationDate.Format("2006-01-02"),
	}
	return digest(strings.Join(parts, separator)), nil
}

// ComputeSerial derives the secondary fingerprint from the serial number
// alone. It supports lookup by serial without exposing holder data and carries
// no standalone verification trust.
func ComputeSerial(serialNumber string) (string, error) {
	serial := canonical(serialNumber)
	if serial == "" {
		return "", dErrors.New(dErrors.CodeDataIncomplete, "missing serial number")
	}
	return digest(serial), nil
}

// Normalize lowercases and trims a candidate fingerprint string, adding the 0x
// prefix when only the bare hex was supplied.
func Normalize(candidate string) string {
	s := strings.ToLower(strings.TrimSpace(candidate))
	if len(s) == 64 && !strings.HasPrefix(s, "0x") {
		s = "0x" + s
	}
	return s
}

// IsWellFormed reports whether s is a normalized fingerprint: 0x followed by
// 64 lowercase hex characters.
func IsWellFormed(s string) bool {
	return hexPattern.MatchString(s)
}
