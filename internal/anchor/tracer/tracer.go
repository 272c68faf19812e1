// Package tracer provides a lightweight tracing abstraction for the anchoring
// workflow. It keeps the orchestrator decoupled from OpenTelemetry APIs: tests
// use the no-op implementation, production wires the OTel adapter.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the anchoring workflow.
const (
	SpanPublish = "anchor.publish"
	SpanSubmit  = "anchor.submit"
	SpanConfirm = "anchor.confirm"
)

// Attribute keys used by the anchoring workflow.
const (
	AttrCredentialID = "credential_id"
	AttrFingerprint  = "fingerprint"
	AttrNetwork      = "network"
	AttrTxID         = "tx_id"
	AttrBlockNumber  = "block_number"
	AttrAlready      = "already_anchored"
)

// NoopTracer discards all spans. Used by tests and when tracing is disabled.
type NoopTracer struct{}

// Start returns the context unchanged with a no-op span.
func (NoopTracer) Start(ctx context.Context, _ string, _ ...Attribute) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End(error)                     {}
func (noopSpan) SetAttributes(...Attribute)    {}
func (noopSpan) AddEvent(string, ...Attribute) {}

var _ Tracer = NoopTracer{}
