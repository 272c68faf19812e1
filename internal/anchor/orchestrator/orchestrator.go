// Package orchestrator drives a credential's fingerprint to durable, confirmed
// presence on the external ledger, exactly once, with explicit failure states.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"ijazah/internal/anchor/ledger"
	"ijazah/internal/anchor/models"
	"ijazah/internal/anchor/store"
	"ijazah/internal/anchor/tracer"
	"ijazah/internal/credential/fingerprint"
	"ijazah/internal/credential/statemachine"
	"ijazah/internal/platform/metrics"
	dErrors "ijazah/pkg/domain-errors"
)

// Config carries the ledger deployment parameters, injected once at process
// start so the orchestrator is testable with a fake ledger.
type Config struct {
	Network         string
	ContractAddress string
	ExplorerBaseURL string
	ConfirmTimeout  time.Duration
}

// Configured reports whether the ledger capability is usable.
func (c Config) Configured() bool {
	return c.Network != "" && c.ContractAddress != ""
}

//go:generate mockgen -source=orchestrator.go -destination=mocks/mocks.go -package=mocks

// CredentialResolver loads the credential with its holder and program, as the
// fingerprint inputs plus the current validation status.
type CredentialResolver interface {
	ResolveAnchorSubject(ctx context.Context, credentialID uuid.UUID) (fingerprint.Inputs, statemachine.Status, error)
}

// Orchestrator publishes credential fingerprints to the ledger.
type Orchestrator struct {
	resolver CredentialResolver
	anchors  store.Store
	ledger   ledger.Ledger
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	group    singleflight.Group
}

// Option configures optional orchestrator dependencies.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithMetrics enables metric recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer sets the tracer for publish spans.
func WithTracer(t tracer.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// New creates an anchoring orchestrator.
func New(resolver CredentialResolver, anchors store.Store, lg ledger.Ledger, cfg Config, opts ...Option) *Orchestrator {
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = 2 * time.Minute
	}
	o := &Orchestrator{
		resolver: resolver,
		anchors:  anchors,
		ledger:   lg,
		cfg:      cfg,
		logger:   slog.Default(),
		tracer:   tracer.NoopTracer{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Publish anchors the credential's fingerprint on the ledger.
//
// Repeated calls for an already-anchored credential return AlreadyAnchored
// without a second submission. Concurrent in-process calls for the same
// credential collapse into one; across processes the store's conditional
// intent write is the control point and the loser returns the winner's
// in-progress record.
// Submission and confirmation failures are recorded on the anchor record
// before the error is returned, so failure state is never purely in-memory.
func (o *Orchestrator) Publish(ctx context.Context, credentialID uuid.UUID) (*models.Result, error) {
	if o.ledger == nil || !o.cfg.Configured() {
		return nil, dErrors.New(dErrors.CodeLedgerUnavailable, "ledger capability not configured")
	}

	v, err, _ := o.group.Do(credentialID.String(), func() (any, error) {
		return o.publish(ctx, credentialID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Result), nil
}

func (o *Orchestrator) publish(ctx context.Context, credentialID uuid.UUID) (result *models.Result, err error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, tracer.SpanPublish,
		tracer.String(tracer.AttrCredentialID, credentialID.String()),
		tracer.String(tracer.AttrNetwork, o.cfg.Network),
	)
	defer func() { span.End(err) }()

	if o.metrics != nil {
		o.metrics.IncrementAnchorAttempts()
	}

	existing, err := o.anchors.GetByCredential(ctx, credentialID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load anchor record")
	}
	if existing != nil {
		switch existing.Status {
		case models.StatusSuccess:
			span.SetAttributes(tracer.Bool(tracer.AttrAlready, true))
			o.recordOutcome("already_anchored")
			return &models.Result{AlreadyAnchored: true, Record: existing}, nil
		case models.StatusPending:
			// Another publisher is in flight; short-circuit unless the intent
			// is stale enough to be a crashed run.
			if time.Since(existing.UpdatedAt) < o.cfg.ConfirmTimeout {
				o.recordOutcome("in_progress")
				return &models.Result{Record: existing}, nil
			}
		}
	}

	inputs, status, err := o.resolver.ResolveAnchorSubject(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if status != statemachine.StatusFullyValidated {
		return nil, dErrors.New(dErrors.CodeIllegalTransition,
			"only fully validated credentials may be anchored, current status "+string(status))
	}

	fp, err := fingerprint.Compute(inputs)
	if err != nil {
		return nil, err
	}
	serialFP, err := fingerprint.ComputeSerial(inputs.SerialNumber)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(tracer.String(tracer.AttrFingerprint, fp))

	// Durable intent before the external call. A crash from here on leaves an
	// inspectable PENDING record rather than silence. The conditional create is
	// the cross-process claim on the publish slot: if another process holds it,
	// we return its row instead of submitting a second transaction.
	record := &models.Record{
		CredentialID:      credentialID,
		Fingerprint:       fp,
		SerialFingerprint: &serialFP,
		Network:           o.cfg.Network,
		ContractAddress:   o.cfg.ContractAddress,
		Status:            models.StatusPending,
	}
	record, err = o.anchors.CreateIntent(ctx, record, time.Now().Add(-o.cfg.ConfirmTimeout))
	if err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyFinalized):
			return o.readBack(ctx, credentialID)
		case errors.Is(err, store.ErrPublishInFlight):
			o.recordOutcome("in_progress")
			return o.readBack(ctx, credentialID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record anchor intent")
	}
	if o.metrics != nil {
		o.metrics.IncrementPendingAnchors()
		defer o.metrics.DecrementPendingAnchors()
	}

	txID, err := o.submit(ctx, fp)
	if err != nil {
		o.markFailed(ctx, record, err.Error())
		o.recordOutcome("submit_failed")
		return nil, dErrors.Wrap(err, dErrors.CodePublishFailed, "ledger submission failed")
	}
	record.TxID = &txID
	span.SetAttributes(tracer.String(tracer.AttrTxID, txID))

	// Transaction sent, not yet confirmed.
	if record, err = o.anchors.Upsert(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record submitted transaction")
	}

	block, err := o.confirm(ctx, txID)
	if err != nil {
		detail := err.Error()
		o.markFailed(ctx, record, detail)
		if errors.Is(err, context.DeadlineExceeded) {
			o.recordOutcome("timeout")
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "ledger confirmation timed out")
		}
		o.recordOutcome("confirm_failed")
		return nil, dErrors.Wrap(err, dErrors.CodeConfirmationFailed, "ledger confirmation failed")
	}
	span.SetAttributes(tracer.Int64(tracer.AttrBlockNumber, block))

	now := time.Now()
	record.Status = models.StatusSuccess
	record.BlockNumber = &block
	record.PublishedAt = &now
	record.ErrorDetail = nil
	if url := o.explorerURL(txID); url != "" {
		record.ExplorerURL = &url
	}
	record, err = o.anchors.Upsert(ctx, record)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyFinalized) {
			return o.readBack(ctx, credentialID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to finalize anchor record")
	}

	if o.metrics != nil {
		o.metrics.ObserveAnchorLatency(time.Since(start).Seconds())
	}
	o.recordOutcome("success")
	o.logger.InfoContext(ctx, "credential anchored",
		"credential_id", credentialID,
		"tx_id", txID,
		"block_number", block,
		"network", o.cfg.Network,
	)
	return &models.Result{Record: record}, nil
}

func (o *Orchestrator) submit(ctx context.Context, fp string) (txID string, err error) {
	ctx, span := o.tracer.Start(ctx, tracer.SpanSubmit)
	defer func() { span.End(err) }()
	return o.ledger.Submit(ctx, fp)
}

func (o *Orchestrator) confirm(ctx context.Context, txID string) (block int64, err error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.ConfirmTimeout)
	defer cancel()
	ctx, span := o.tracer.Start(ctx, tracer.SpanConfirm, tracer.String(tracer.AttrTxID, txID))
	defer func() { span.End(err) }()
	return o.ledger.AwaitConfirmation(ctx, txID)
}

// markFailed records a failure on the anchor record. The transaction may still
// confirm later out-of-band; a reconciliation job can resume from FAILED by
// re-querying the ledger by transaction ID.
func (o *Orchestrator) markFailed(ctx context.Context, record *models.Record, detail string) {
	record.Status = models.StatusFailed
	record.ErrorDetail = &detail
	if _, err := o.anchors.Upsert(ctx, record); err != nil {
		o.logger.ErrorContext(ctx, "failed to record anchor failure",
			"credential_id", record.CredentialID,
			"error", err,
		)
	}
}

// readBack resolves a finalize-guard rejection: another publisher won the
// race, so return its record.
func (o *Orchestrator) readBack(ctx context.Context, credentialID uuid.UUID) (*models.Result, error) {
	record, err := o.anchors.GetByCredential(ctx, credentialID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to re-read anchor record")
	}
	return &models.Result{AlreadyAnchored: record.Status == models.StatusSuccess, Record: record}, nil
}

func (o *Orchestrator) explorerURL(txID string) string {
	if o.cfg.ExplorerBaseURL == "" {
		return ""
	}
	return o.cfg.ExplorerBaseURL + "/tx/" + txID
}

func (o *Orchestrator) recordOutcome(outcome string) {
	if o.metrics != nil {
		o.metrics.IncrementAnchorOutcome(outcome)
	}
}
