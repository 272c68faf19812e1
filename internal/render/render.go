// Package render builds public verification URLs and defines the port to a
// document renderer. Actual PDF and QR generation live outside this service;
// the stub renderer produces a plain-text artifact so the wiring is exercised
// end to end in development.
package render

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	dErrors "ijazah/pkg/domain-errors"
)

// Subject is the public-safe credential data a rendered artifact carries.
type Subject struct {
	SerialNumber   string
	HolderName     string
	ProgramCode    string
	GraduationDate time.Time
}

// Renderer turns credential data and its verification URL into a renderable
// artifact. Implementations are pure functions over their inputs.
type Renderer interface {
	Render(subject Subject, verificationURL string) ([]byte, error)
}

// URLBuilder builds verification URLs from a configured public base.
type URLBuilder struct {
	base string
}

// NewURLBuilder creates a builder for the given public base URL, e.g.
// https://ijazah.example.edu.
func NewURLBuilder(base string) *URLBuilder {
	return &URLBuilder{base: strings.TrimRight(base, "/")}
}

// VerificationURL returns the public lookup URL for a fingerprint.
func (b *URLBuilder) VerificationURL(fingerprint string) string {
	return b.base + "/verify?hash=" + url.QueryEscape(fingerprint)
}

// TextRenderer is the stub renderer: a plain-text summary carrying the
// verification URL, suitable as a QR payload.
type TextRenderer struct{}

// Render produces the artifact bytes.
func (TextRenderer) Render(subject Subject, verificationURL string) ([]byte, error) {
	if subject.SerialNumber == "" || verificationURL == "" {
		return nil, dErrors.New(dErrors.CodeDataIncomplete, "missing serial number or verification URL")
	}
	text := fmt.Sprintf("%s\n%s\n%s\n%s\n%s\n",
		subject.HolderName,
		subject.ProgramCode,
		subject.SerialNumber,
		subject.GraduationDate.Format("2006-01-02"),
		verificationURL,
	)
	return []byte(text), nil
}

var _ Renderer = TextRenderer{}
