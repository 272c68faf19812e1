package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	anchormodels "ijazah/internal/anchor/models"
	anchorstore "ijazah/internal/anchor/store"
	"ijazah/internal/credential/fingerprint"
	"ijazah/internal/credential/models"
	"ijazah/internal/credential/statemachine"
	"ijazah/internal/credential/store"
	holderstore "ijazah/internal/holder/store"
	"ijazah/internal/platform/metrics"
	programstore "ijazah/internal/program/store"
	"ijazah/pkg/domain"
	dErrors "ijazah/pkg/domain-errors"
)

// Service manages the credential lifecycle: issuance, review transitions, and
// the data resolution the anchoring workflow depends on.
type Service struct {
	store    store.Store
	holders  holderstore.Store
	programs programstore.Store
	anchors  anchorstore.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
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

// NewService creates a credential service.
func NewService(
	credentials store.Store,
	holders holderstore.Store,
	programs programstore.Store,
	anchors anchorstore.Store,
	opts ...Option,
) *Service {
	s := &Service{
		store:    credentials,
		holders:  holders,
		programs: programs,
		anchors:  anchors,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create issues a new credential in DRAFT.
func (s *Service) Create(ctx context.Context, req models.CreateRequest) (*models.Credential, error) {
	if _, err := s.holders.FindByID(ctx, req.HolderID); err != nil {
		if errors.Is(err, holderstore.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeValidation, "holder does not exist")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check holder")
	}

	now := time.Now()
	credential := &models.Credential{
		ID:             uuid.New(),
		HolderID:       req.HolderID,
		SerialNumber:   req.SerialNumber,
		GraduationDate: req.GraduationDate,
		GPA:            req.GPA,
		ThesisTitle:    req.ThesisTitle,
		FileURL:        req.FileURL,
		Status:         statemachine.StatusDraft,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Create(ctx, credential); err != nil {
		if errors.Is(err, store.ErrSerialTaken) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create credential")
	}
	if s.metrics != nil {
		s.metrics.IncrementCredentialsCreated()
	}
	s.logger.InfoContext(ctx, "credential created",
		"credential_id", credential.ID,
		"serial_number", credential.SerialNumber,
	)
	return credential, nil
}

// Update applies corrections to a credential. Changing the serial number
// invalidates any non-successful anchor intent, since the fingerprint is
// serial-derived; a credential anchored to SUCCESS has a frozen serial.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req models.UpdateRequest) (*models.Credential, error) {
	credential, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.SerialNumber != nil {
		serial := strings.TrimSpace(*req.SerialNumber)
		if serial == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "serial_number must not be empty")
		}
		if !strings.EqualFold(serial, credential.SerialNumber) {
			if err := s.resetAnchorForSerialEdit(ctx, id); err != nil {
				return nil, err
			}
		}
		credential.SerialNumber = serial
	}
	if req.GraduationDate != nil {
		credential.GraduationDate = *req.GraduationDate
	}
	if req.GPA != nil {
		if *req.GPA < 0 || *req.GPA > 4 {
			return nil, dErrors.New(dErrors.CodeValidation, "gpa must be between 0 and 4")
		}
		credential.GPA = req.GPA
	}
	if req.ThesisTitle != nil {
		credential.ThesisTitle = req.ThesisTitle
	}
	if req.FileURL != nil {
		credential.FileURL = req.FileURL
	}
	credential.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, credential); err != nil {
		if errors.Is(err, store.ErrSerialTaken) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update credential")
	}
	return credential, nil
}

func (s *Service) resetAnchorForSerialEdit(ctx context.Context, credentialID uuid.UUID) error {
	record, err := s.anchors.GetByCredential(ctx, credentialID)
	if errors.Is(err, anchorstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check anchor record")
	}
	if record.Status == anchormodels.StatusSuccess {
		return dErrors.New(dErrors.CodeAlreadyFinalized,
			"credential is anchored; serial number is frozen")
	}
	if err := s.anchors.DeleteByCredential(ctx, credentialID); err != nil &&
		!errors.Is(err, anchorstore.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset anchor record")
	}
	s.logger.InfoContext(ctx, "anchor intent reset by serial edit",
		"credential_id", credentialID,
	)
	return nil
}

// Delete removes a credential. Permitted only while in DRAFT or a rejected
// state, to preserve the audit trail of everything that advanced further.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	credential, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if credential.Status != statemachine.StatusDraft && !credential.Status.IsRejected() {
		return dErrors.New(dErrors.CodeIllegalTransition,
			"only draft or rejected credentials may be deleted")
	}
	if err := s.anchors.DeleteByCredential(ctx, id); err != nil &&
		!errors.Is(err, anchorstore.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete anchor record")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete credential")
	}
	return nil
}

// Get retrieves a credential by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Credential, error) {
	return s.store.FindByID(ctx, id)
}

// GetBySerial retrieves a credential by its serial number.
func (s *Service) GetBySerial(ctx context.Context, serialNumber string) (*models.Credential, error) {
	return s.store.FindBySerial(ctx, serialNumber)
}

// List returns credentials matching the filter. An enrollment-number filter is
// resolved to a holder first; an unknown number yields an empty list.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.Credential, error) {
	if nim := strings.TrimSpace(filter.EnrollmentNumber); nim != "" {
		holder, err := s.holders.FindByEnrollmentNumber(ctx, nim)
		if errors.Is(err, holderstore.ErrNotFound) {
			return []*models.Credential{}, nil
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve holder")
		}
		filter.HolderID = &holder.ID
	}
	credentials, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list credentials")
	}
	return credentials, nil
}

// ListPendingReview returns admin-approved credentials awaiting reviewer
// sign-off.
func (s *Service) ListPendingReview(ctx context.Context) ([]*models.Credential, error) {
	status := statemachine.StatusAdminApproved
	return s.List(ctx, models.ListFilter{Status: &status})
}

// ListByHolderUser returns the credentials of the holder linked to a platform
// user. Students use this to list their own diplomas.
func (s *Service) ListByHolderUser(ctx context.Context, userID uuid.UUID) ([]*models.Credential, error) {
	holder, err := s.holders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, models.ListFilter{HolderID: &holder.ID})
}

// Transition applies a lifecycle transition as the given actor. The decision
// is delegated to the state machine; only the status, reviewer reference,
// note, and timestamp are mutated.
func (s *Service) Transition(
	ctx context.Context,
	actorID uuid.UUID,
	role domain.Role,
	id uuid.UUID,
	t statemachine.Transition,
	note string,
) (*models.Credential, error) {
	credential, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := statemachine.Decide(credential.Status, t, role)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	effects := statemachine.EffectsFor(t, next, actorID, note, now)

	previous := credential.Status
	credential.Status = effects.NextStatus
	if effects.ClearReview {
		credential.ReviewerID = nil
		credential.ReviewNote = nil
		credential.ReviewedAt = nil
	} else {
		credential.ReviewerID = effects.SetReviewer
		credential.ReviewNote = effects.SetNote
		credential.ReviewedAt = effects.SetTime
	}
	credential.UpdatedAt = now

	if err := s.store.Update(ctx, credential); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist transition")
	}
	if s.metrics != nil {
		s.metrics.IncrementStatusTransition(string(effects.NextStatus))
	}
	s.logger.InfoContext(ctx, "credential transitioned",
		"credential_id", id,
		"from", previous,
		"to", effects.NextStatus,
		"actor_id", actorID,
	)
	return credential, nil
}

// ResolveAnchorSubject loads the credential with its holder and program and
// returns the fingerprint inputs plus the current validation status. The
// anchoring orchestrator consumes this through its resolver port.
func (s *Service) ResolveAnchorSubject(ctx context.Context, id uuid.UUID) (fingerprint.Inputs, statemachine.Status, error) {
	credential, err := s.store.FindByID(ctx, id)
	if err != nil {
		return fingerprint.Inputs{}, "", err
	}
	holder, err := s.holders.FindByID(ctx, credential.HolderID)
	if err != nil {
		if errors.Is(err, holderstore.ErrNotFound) {
			return fingerprint.Inputs{}, "", dErrors.New(dErrors.CodeDataIncomplete, "credential holder missing")
		}
		return fingerprint.Inputs{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load holder")
	}
	program, err := s.programs.FindByID(ctx, holder.ProgramID)
	if err != nil {
		if errors.Is(err, programstore.ErrNotFound) {
			return fingerprint.Inputs{}, "", dErrors.New(dErrors.CodeDataIncomplete, "holder program missing")
		}
		return fingerprint.Inputs{}, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load program")
	}
	inputs := fingerprint.Inputs{
		EnrollmentNumber: holder.EnrollmentNumber,
		HolderName:       holder.Name,
		ProgramCode:      program.Code,
		SerialNumber:     credential.SerialNumber,
		GraduationDate:   credential.GraduationDate,
	}
	return inputs, credential.Status, nil
}

// ReviewerStats reports how many credentials a reviewer has fully validated.
func (s *Service) ReviewerStats(ctx context.Context, reviewerID uuid.UUID) (int, error) {
	count, err := s.store.CountValidatedByReviewer(ctx, reviewerID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count validated credentials")
	}
	return count, nil
}
