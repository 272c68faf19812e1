package service

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	anchormodels "ijazah/internal/anchor/models"
	anchorstore "ijazah/internal/anchor/store"
	"ijazah/internal/credential/fingerprint"
	credentialmodels "ijazah/internal/credential/models"
	credentialstore "ijazah/internal/credential/store"
	"ijazah/internal/credential/statemachine"
	holdermodels "ijazah/internal/holder/models"
	holderstore "ijazah/internal/holder/store"
	programmodels "ijazah/internal/program/models"
	programstore "ijazah/internal/program/store"
	"ijazah/internal/verification/models"
	"ijazah/internal/verification/store"
)

type VerificationSuite struct {
	suite.Suite
	anchors     *anchorstore.InMemoryStore
	credentials *credentialstore.InMemoryStore
	holders     *holderstore.InMemoryStore
	programs    *programstore.InMemoryStore
	events      *store.InMemoryStore
	svc         *Service

	credentialID uuid.UUID
	fp           string
	serialFP     string
}

func (s *VerificationSuite) SetupTest() {
	s.anchors = anchorstore.NewInMemoryStore()
	s.credentials = credentialstore.NewInMemoryStore()
	s.holders = holderstore.NewInMemoryStore()
	s.programs = programstore.NewInMemoryStore()
	s.events = store.NewInMemoryStore()
	s.svc = NewService(s.anchors, s.credentials, s.holders, s.programs, s.events,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.seedAnchoredCredential()
}

// seedAnchoredCredential builds a fully validated, successfully anchored
// credential with its holder and program, the shape a positive lookup needs.
func (s *VerificationSuite) seedAnchoredCredential() {
	ctx := context.Background()

	program := &programmodels.Program{
		ID:          uuid.New(),
		Code:        "IF",
		Name:        "Informatika",
		DegreeLevel: "S1",
	}
	s.Require().NoError(s.programs.Create(ctx, program))

	holder := &holdermodels.Holder{
		ID:               uuid.New(),
		EnrollmentNumber: "2020010001",
		Name:             "Budi Santoso",
		ProgramID:        program.ID,
		EnrollmentYear:   2020,
	}
	s.Require().NoError(s.holders.Create(ctx, holder))

	gradDate := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	credential := &credentialmodels.Credential{
		ID:             uuid.New(),
		HolderID:       holder.ID,
		SerialNumber:   "IJZ-2024-001",
		GraduationDate: gradDate,
		Status:         statemachine.StatusFullyValidated,
	}
	s.Require().NoError(s.credentials.Create(ctx, credential))
	s.credentialID = credential.ID

	var err error
	s.fp, err = fingerprint.Compute(fingerprint.Inputs{
		EnrollmentNumber: holder.EnrollmentNumber,
		HolderName:       holder.Name,
		ProgramCode:      program.Code,
		SerialNumber:     credential.SerialNumber,
		GraduationDate:   gradDate,
	})
	s.Require().NoError(err)
	s.serialFP, err = fingerprint.ComputeSerial(credential.SerialNumber)
	s.Require().NoError(err)

	tx := "tx1"
	block := int64(42)
	publishedAt := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	explorer := "https://amoy.polygonscan.com/tx/tx1"
	_, err = s.anchors.Upsert(ctx, &anchormodels.Record{
		CredentialID:      credential.ID,
		Fingerprint:       s.fp,
		SerialFingerprint: &s.serialFP,
		Network:           "polygon-amoy",
		ContractAddress:   "0xCRED",
		TxID:              &tx,
		BlockNumber:       &block,
		Status:            anchormodels.StatusSuccess,
		ExplorerURL:       &explorer,
		PublishedAt:       &publishedAt,
	})
	s.Require().NoError(err)
}

func (s *VerificationSuite) resolve(candidate string) *models.Result {
	return s.svc.Resolve(context.Background(), candidate, RequestContext{RequesterType: "employer"})
}

func (s *VerificationSuite) TestResolve_Valid() {
	result := s.resolve(s.fp)

	s.True(result.Valid)
	s.Empty(result.Reason)
	s.Require().NotNil(result.Credential)
	s.Equal("IJZ-2024-001", result.Credential.SerialNumber)
	s.Equal("Budi Santoso", result.Credential.HolderName)
	s.Equal("2020010001", result.Credential.EnrollmentNumber)
	s.Equal("Informatika", result.Credential.ProgramName)
	s.Equal("S1", result.Credential.DegreeLevel)

	s.Require().NotNil(result.Provenance)
	s.Equal(s.fp, result.Provenance.Fingerprint)
	s.Equal("tx1", result.Provenance.TxID)
	s.Equal(int64(42), result.Provenance.BlockNumber)
	s.Equal("polygon-amoy", result.Provenance.Network)
	s.Require().NotNil(result.Provenance.ExplorerURL)
}

func (s *VerificationSuite) TestResolve_ToleratesPresentationNoise() {
	result := s.resolve("  0X" + s.fp[2:] + " ")
	s.True(result.Valid)

	// A bare hex digest without the 0x prefix still resolves.
	result = s.resolve(s.fp[2:])
	s.True(result.Valid)
}

func (s *VerificationSuite) TestResolve_SerialFingerprintAlsoResolves() {
	result := s.resolve(s.serialFP)
	s.True(result.Valid)
	// Provenance carries the canonical fingerprint, not the serial-only one.
	s.Equal(s.fp, result.Provenance.Fingerprint)
}

func (s *VerificationSuite) TestResolve_InvalidFormat() {
	for _, candidate := range []string{"", "abc", "0x123", "0x" + strings.Repeat("z", 64)} {
		result := s.resolve(candidate)
		s.False(result.Valid, candidate)
		s.Equal(models.ReasonInvalidFormat, result.Reason, candidate)
		s.Nil(result.Credential)
		s.Nil(result.Provenance)
	}
}

func (s *VerificationSuite) TestResolve_NotFound() {
	before := s.events.Len()
	result := s.resolve("0x9999999999999999999999999999999999999999999999999999999999999999")
	s.False(result.Valid)
	s.Equal(models.ReasonNotFound, result.Reason)
	s.Equal(before+1, s.events.Len())
}

func (s *VerificationSuite) TestResolve_PendingAnchorIsNotFound() {
	ctx := context.Background()
	pendingFP := "0x7777777777777777777777777777777777777777777777777777777777777777"
	_, err := s.anchors.Upsert(ctx, &anchormodels.Record{
		CredentialID:    uuid.New(),
		Fingerprint:     pendingFP,
		Network:         "polygon-amoy",
		ContractAddress: "0xCRED",
		Status:          anchormodels.StatusPending,
	})
	s.Require().NoError(err)

	result := s.resolve(pendingFP)
	s.False(result.Valid)
	s.Equal(models.ReasonNotFound, result.Reason)
}

func (s *VerificationSuite) TestResolve_DataIncomplete() {
	// Anchor record survives but the credential row is gone.
	s.Require().NoError(s.credentials.Delete(context.Background(), s.credentialID))

	result := s.resolve(s.fp)
	s.False(result.Valid)
	s.Equal(models.ReasonDataIncomplete, result.Reason)
}

func (s *VerificationSuite) TestResolve_AppendsEventOnEveryCall() {
	s.resolve("not-a-fingerprint")
	s.resolve("0x9999999999999999999999999999999999999999999999999999999999999999")
	s.resolve(s.fp)
	s.Equal(3, s.events.Len())

	// The valid lookup is attributed to the credential.
	history, err := s.svc.History(context.Background(), s.credentialID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(models.RequesterEmployer, history[0].RequesterType)
	s.Equal(s.fp, history[0].Fingerprint)
}

func (s *VerificationSuite) TestResolve_RequesterInfoCondensed() {
	s.svc.Resolve(context.Background(), s.fp, RequestContext{
		RequesterType: "institution",
		Info:          "PT Maju Jaya",
		IP:            "203.0.113.7",
		UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	})

	history, err := s.svc.History(context.Background(), s.credentialID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	event := history[0]
	s.Equal(models.RequesterInstitution, event.RequesterType)
	s.Contains(event.RequesterInfo, "PT Maju Jaya")
	s.Contains(event.RequesterInfo, "ip=203.0.113.7")
	s.Contains(event.RequesterInfo, "ua=Chrome")
}

func (s *VerificationSuite) TestResolve_UnknownRequesterFallsBackToSystem() {
	s.svc.Resolve(context.Background(), s.fp, RequestContext{RequesterType: "martian"})

	history, err := s.svc.History(context.Background(), s.credentialID)
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.Equal(models.RequesterSystem, history[0].RequesterType)
}

func TestVerificationSuite(t *testing.T) {
	suite.Run(t, new(VerificationSuite))
}
