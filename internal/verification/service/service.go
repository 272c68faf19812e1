package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"

	anchormodels "ijazah/internal/anchor/models"
	anchorstore "ijazah/internal/anchor/store"
	"ijazah/internal/credential/fingerprint"
	credentialstore "ijazah/internal/credential/store"
	holderstore "ijazah/internal/holder/store"
	"ijazah/internal/platform/metrics"
	programstore "ijazah/internal/program/store"
	"ijazah/internal/verification/models"
	"ijazah/internal/verification/store"
)

// RequestContext carries the best-effort requester classification and client
// context attached to a public lookup.
type RequestContext struct {
	RequesterType string
	Info          string
	IP            string
	UserAgent     string
}

// Service answers public verification lookups. It never returns an error for
// lookup failures: malformed input, unknown fingerprints, and inconsistent
// data are all well-formed negative answers.
type Service struct {
	anchors     anchorstore.Store
	credentials credentialstore.Store
	holders     holderstore.Store
	programs    programstore.Store
	events      store.Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics enables metric recording.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a verification service.
func NewService(
	anchors anchorstore.Store,
	credentials credentialstore.Store,
	holders holderstore.Store,
	programs programstore.Store,
	events store.Store,
	opts ...Option,
) *Service {
	s := &Service{
		anchors:     anchors,
		credentials: credentials,
		holders:     holders,
		programs:    programs,
		events:      events,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve answers whether the candidate fingerprint is a genuine, anchored
// credential. The format check runs before any store access. Every call
// appends a VerificationEvent; the append is best-effort and never blocks or
// fails the response.
func (s *Service) Resolve(ctx context.Context, candidate string, reqCtx RequestContext) *models.Result {
	normalized := fingerprint.Normalize(candidate)
	if !fingerprint.IsWellFormed(normalized) {
		s.appendEvent(ctx, nil, normalized, reqCtx)
		return s.negative(models.ReasonInvalidFormat)
	}

	record, err := s.anchors.GetByFingerprint(ctx, normalized)
	if err != nil {
		if !errors.Is(err, anchorstore.ErrNotFound) {
			s.logger.ErrorContext(ctx, "anchor lookup failed", "error", err)
		}
		s.appendEvent(ctx, nil, normalized, reqCtx)
		return s.negative(models.ReasonNotFound)
	}
	// A PENDING or FAILED record is not an anchored fact yet.
	if record.Status != anchormodels.StatusSuccess || record.TxID == nil || record.BlockNumber == nil {
		s.appendEvent(ctx, &record.CredentialID, normalized, reqCtx)
		return s.negative(models.ReasonNotFound)
	}

	credential, err := s.credentials.FindByID(ctx, record.CredentialID)
	if err != nil {
		s.appendEvent(ctx, &record.CredentialID, normalized, reqCtx)
		return s.negative(models.ReasonDataIncomplete)
	}
	holder, err := s.holders.FindByID(ctx, credential.HolderID)
	if err != nil {
		s.appendEvent(ctx, &record.CredentialID, normalized, reqCtx)
		return s.negative(models.ReasonDataIncomplete)
	}
	program, err := s.programs.FindByID(ctx, holder.ProgramID)
	if err != nil {
		s.appendEvent(ctx, &record.CredentialID, normalized, reqCtx)
		return s.negative(models.ReasonDataIncomplete)
	}

	s.appendEvent(ctx, &record.CredentialID, normalized, reqCtx)
	if s.metrics != nil {
		s.metrics.IncrementVerificationLookup("valid")
	}

	publishedAt := time.Time{}
	if record.PublishedAt != nil {
		publishedAt = *record.PublishedAt
	}
	return &models.Result{
		Valid: true,
		Credential: &models.PublicCredential{
			SerialNumber:     credential.SerialNumber,
			HolderName:       holder.Name,
			EnrollmentNumber: holder.EnrollmentNumber,
			ProgramName:      program.Name,
			ProgramCode:      program.Code,
			DegreeLevel:      program.DegreeLevel,
			GraduationDate:   credential.GraduationDate,
		},
		Provenance: &models.Provenance{
			Fingerprint:     record.Fingerprint,
			TxID:            *record.TxID,
			Network:         record.Network,
			ContractAddress: record.ContractAddress,
			BlockNumber:     *record.BlockNumber,
			ExplorerURL:     record.ExplorerURL,
			PublishedAt:     publishedAt,
		},
	}
}

// History returns the audit trail of lookups against a credential.
func (s *Service) History(ctx context.Context, credentialID uuid.UUID) ([]*models.Event, error) {
	return s.events.ListByCredential(ctx, credentialID)
}

func (s *Service) negative(reason models.Reason) *models.Result {
	if s.metrics != nil {
		s.metrics.IncrementVerificationLookup(string(reason))
	}
	return &models.Result{Valid: false, Reason: reason}
}

func (s *Service) appendEvent(ctx context.Context, credentialID *uuid.UUID, fp string, reqCtx RequestContext) {
	event := &models.Event{
		ID:            uuid.New(),
		CredentialID:  credentialID,
		Fingerprint:   fp,
		RequesterType: models.ParseRequesterType(reqCtx.RequesterType),
		RequesterInfo: requesterInfo(reqCtx),
		CreatedAt:     time.Now(),
	}
	if err := s.events.Append(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to append verification event",
			"fingerprint", fp,
			"error", err,
		)
	}
}

// requesterInfo condenses the client context into one free-text field,
// summarizing the user agent instead of storing the raw header.
func requesterInfo(reqCtx RequestContext) string {
	var parts []string
	if info := strings.TrimSpace(reqCtx.Info); info != "" {
		parts = append(parts, info)
	}
	if reqCtx.IP != "" {
		parts = append(parts, "ip="+reqCtx.IP)
	}
	if reqCtx.UserAgent != "" {
		ua := useragent.New(reqCtx.UserAgent)
		name, version := ua.Browser()
		summary := strings.TrimSpace(name + " " + version)
		if os := ua.OS(); os != "" {
			summary += " (" + os + ")"
		}
		if ua.Bot() {
			summary += " bot"
		}
		if summary != "" {
			parts = append(parts, "ua="+summary)
		}
	}
	return strings.Join(parts, "; ")
}
