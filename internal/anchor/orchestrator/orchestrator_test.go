package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"

	"ijazah/internal/anchor/ledger"
	"ijazah/internal/anchor/models"
	"ijazah/internal/anchor/orchestrator/mocks"
	"ijazah/internal/anchor/store"
	"ijazah/internal/credential/fingerprint"
	"ijazah/internal/credential/statemachine"
	dErrors "ijazah/pkg/domain-errors"
)

func testConfig() Config {
	return Config{
		Network:         "polygon-amoy",
		ContractAddress: "0xCRED",
		ExplorerBaseURL: "https://amoy.polygonscan.com",
		ConfirmTimeout:  time.Second,
	}
}

func testInputs() fingerprint.Inputs {
	return fingerprint.Inputs{
		EnrollmentNumber: "2020010001",
		HolderName:       "Budi Santoso",
		ProgramCode:      "IF",
		SerialNumber:     "IJZ-2024-001",
		GraduationDate:   time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
	}
}

type OrchestratorSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mocks.MockCredentialResolver
	anchors  *store.InMemoryStore
	chain    *ledger.StubLedger
	orch     *Orchestrator
	credID   uuid.UUID
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockCredentialResolver(s.ctrl)
	s.anchors = store.NewInMemoryStore()
	s.chain = ledger.NewStub()
	s.credID = uuid.New()
	s.orch = New(s.resolver, s.anchors, s.chain, testConfig(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorSuite) expectResolve(status statemachine.Status) {
	s.resolver.EXPECT().
		ResolveAnchorSubject(gomock.Any(), s.credID).
		Return(testInputs(), status, nil).
		AnyTimes()
}

func (s *OrchestratorSuite) TestPublish_SuccessFlow() {
	s.expectResolve(statemachine.StatusFullyValidated)
	s.chain.SetNextBlock(42)

	result, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().NoError(err)
	s.False(result.AlreadyAnchored)

	record := result.Record
	s.Equal(models.StatusSuccess, record.Status)
	s.Require().NotNil(record.TxID)
	s.Equal("tx1", *record.TxID)
	s.Require().NotNil(record.BlockNumber)
	s.Equal(int64(42), *record.BlockNumber)
	s.Require().NotNil(record.PublishedAt)
	s.Require().NotNil(record.ExplorerURL)
	s.Equal("https://amoy.polygonscan.com/tx/tx1", *record.ExplorerURL)
	s.Equal("polygon-amoy", record.Network)

	wantFP, err := fingerprint.Compute(testInputs())
	s.Require().NoError(err)
	s.Equal(wantFP, record.Fingerprint)
	s.Require().NotNil(record.SerialFingerprint)
	s.True(s.chain.Contains(wantFP))
}

func (s *OrchestratorSuite) TestPublish_IdempotentOnSuccess() {
	s.expectResolve(statemachine.StatusFullyValidated)

	first, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().NoError(err)
	s.False(first.AlreadyAnchored)

	second, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().NoError(err)
	s.True(second.AlreadyAnchored)
	s.Equal(*first.Record.TxID, *second.Record.TxID)

	third, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().NoError(err)
	s.True(third.AlreadyAnchored)

	s.Equal(1, s.chain.SubmitCount())
}

func (s *OrchestratorSuite) TestPublish_LedgerUnavailable() {
	orch := New(s.resolver, s.anchors, s.chain, Config{})
	_, err := orch.Publish(context.Background(), s.credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeLedgerUnavailable))
	s.Equal(0, s.chain.SubmitCount())
}

func (s *OrchestratorSuite) TestPublish_RequiresFullValidation() {
	s.expectResolve(statemachine.StatusAdminApproved)

	_, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))
	s.Equal(0, s.chain.SubmitCount())

	_, err = s.anchors.GetByCredential(context.Background(), s.credID)
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *OrchestratorSuite) TestPublish_SubmitFailureRecordedAndRetryable() {
	s.expectResolve(statemachine.StatusFullyValidated)
	s.chain.FailSubmit(errors.New("contract rejected transaction"))

	_, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePublishFailed))

	record, err := s.anchors.GetByCredential(context.Background(), s.credID)
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, record.Status)
	s.Require().NotNil(record.ErrorDetail)
	s.Contains(*record.ErrorDetail, "contract rejected")
	s.Nil(record.TxID)

	// A failed record does not count as anchored; the next call resubmits.
	s.chain.FailSubmit(nil)
	result, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().NoError(err)
	s.False(result.AlreadyAnchored)
	s.Equal(models.StatusSuccess, result.Record.Status)
	// The rejected submission and the retry both reached the ledger.
	s.Equal(2, s.chain.SubmitCount())
}

func (s *OrchestratorSuite) TestPublish_ConfirmFailureRecorded() {
	s.expectResolve(statemachine.StatusFullyValidated)
	s.chain.FailConfirm(errors.New("rpc connection reset"))

	_, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConfirmationFailed))

	record, err := s.anchors.GetByCredential(context.Background(), s.credID)
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, record.Status)
	// The transaction was sent; keep its ID for out-of-band reconciliation.
	s.Require().NotNil(record.TxID)
	s.Require().NotNil(record.ErrorDetail)
}

func (s *OrchestratorSuite) TestPublish_ConfirmTimeout() {
	s.expectResolve(statemachine.StatusFullyValidated)
	s.chain.FailConfirm(context.DeadlineExceeded)

	_, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	record, err := s.anchors.GetByCredential(context.Background(), s.credID)
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, record.Status)
}

func (s *OrchestratorSuite) TestPublish_ShortCircuitsOnFreshPending() {
	s.expectResolve(statemachine.StatusFullyValidated)

	pending := &models.Record{
		CredentialID:    s.credID,
		Fingerprint:     "0x1111111111111111111111111111111111111111111111111111111111111111",
		Network:         "polygon-amoy",
		ContractAddress: "0xCRED",
		Status:          models.StatusPending,
	}
	_, err := s.anchors.Upsert(context.Background(), pending)
	s.Require().NoError(err)

	result, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().NoError(err)
	s.False(result.AlreadyAnchored)
	s.Equal(models.StatusPending, result.Record.Status)
	s.Equal(0, s.chain.SubmitCount())
}

func (s *OrchestratorSuite) TestPublish_DataIncompleteLeavesNoRecord() {
	inputs := testInputs()
	inputs.SerialNumber = ""
	s.resolver.EXPECT().
		ResolveAnchorSubject(gomock.Any(), s.credID).
		Return(inputs, statemachine.StatusFullyValidated, nil)

	_, err := s.orch.Publish(context.Background(), s.credID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDataIncomplete))

	_, err = s.anchors.GetByCredential(context.Background(), s.credID)
	s.ErrorIs(err, store.ErrNotFound)
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func TestPublish_ConcurrentCallersSubmitOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	credID := uuid.New()
	resolver := mocks.NewMockCredentialResolver(ctrl)
	resolver.EXPECT().
		ResolveAnchorSubject(gomock.Any(), credID).
		Return(testInputs(), statemachine.StatusFullyValidated, nil).
		AnyTimes()

	anchors := store.NewInMemoryStore()
	chain := ledger.NewStub()
	orch := New(resolver, anchors, chain, testConfig(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			result, err := orch.Publish(context.Background(), credID)
			if err != nil {
				return err
			}
			if result.Record == nil {
				return errors.New("missing record")
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, chain.SubmitCount())

	record, err := anchors.GetByCredential(context.Background(), credID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, record.Status)
}

// Two orchestrators over one store stand in for two server processes. The
// first reads "no record" and then stalls loading the credential while the
// second publishes end to end; when the first resumes, the store's intent
// claim must send it to the second's finalized row instead of a second
// ledger submission.
func TestPublish_TwoProcessesSubmitOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	credID := uuid.New()
	anchors := store.NewInMemoryStore()
	chain := ledger.NewStub()
	quiet := WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	resolving := make(chan struct{})
	release := make(chan struct{})
	stalled := mocks.NewMockCredentialResolver(ctrl)
	stalled.EXPECT().
		ResolveAnchorSubject(gomock.Any(), credID).
		DoAndReturn(func(context.Context, uuid.UUID) (fingerprint.Inputs, statemachine.Status, error) {
			close(resolving)
			<-release
			return testInputs(), statemachine.StatusFullyValidated, nil
		})

	prompt := mocks.NewMockCredentialResolver(ctrl)
	prompt.EXPECT().
		ResolveAnchorSubject(gomock.Any(), credID).
		Return(testInputs(), statemachine.StatusFullyValidated, nil)

	first := New(stalled, anchors, chain, testConfig(), quiet)
	second := New(prompt, anchors, chain, testConfig(), quiet)

	type outcome struct {
		result *models.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := first.Publish(context.Background(), credID)
		done <- outcome{result, err}
	}()

	<-resolving
	winner, err := second.Publish(context.Background(), credID)
	require.NoError(t, err)
	require.Equal(t, models.StatusSuccess, winner.Record.Status)

	close(release)
	loser := <-done
	require.NoError(t, loser.err)
	assert.True(t, loser.result.AlreadyAnchored)
	require.NotNil(t, loser.result.Record.TxID)
	assert.Equal(t, *winner.Record.TxID, *loser.result.Record.TxID)
	assert.Equal(t, 1, chain.SubmitCount())
}

// Same interleaving, but the other process is still mid-flight: the resolver
// callback plants its PENDING intent between this process's read and its own
// intent write. The claim must fail closed, yielding the in-flight record
// without a submission.
func TestPublish_YieldsToInFlightIntent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	credID := uuid.New()
	anchors := store.NewInMemoryStore()
	chain := ledger.NewStub()

	resolver := mocks.NewMockCredentialResolver(ctrl)
	resolver.EXPECT().
		ResolveAnchorSubject(gomock.Any(), credID).
		DoAndReturn(func(ctx context.Context, id uuid.UUID) (fingerprint.Inputs, statemachine.Status, error) {
			_, err := anchors.CreateIntent(ctx, &models.Record{
				CredentialID:    id,
				Fingerprint:     "0x1111111111111111111111111111111111111111111111111111111111111111",
				Network:         "polygon-amoy",
				ContractAddress: "0xCRED",
				Status:          models.StatusPending,
			}, time.Now().Add(-time.Minute))
			require.NoError(t, err)
			return testInputs(), statemachine.StatusFullyValidated, nil
		})

	orch := New(resolver, anchors, chain, testConfig(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	result, err := orch.Publish(context.Background(), credID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyAnchored)
	assert.Equal(t, models.StatusPending, result.Record.Status)
	assert.Equal(t, 0, chain.SubmitCount())
}

func TestPublish_MockLedgerExactCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	credID := uuid.New()
	resolver := mocks.NewMockCredentialResolver(ctrl)
	resolver.EXPECT().
		ResolveAnchorSubject(gomock.Any(), credID).
		Return(testInputs(), statemachine.StatusFullyValidated, nil)

	wantFP, err := fingerprint.Compute(testInputs())
	require.NoError(t, err)

	chain := mocks.NewMockLedger(ctrl)
	chain.EXPECT().Submit(gomock.Any(), wantFP).Return("tx1", nil)
	chain.EXPECT().AwaitConfirmation(gomock.Any(), "tx1").Return(int64(42), nil)

	orch := New(resolver, store.NewInMemoryStore(), chain, testConfig(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	result, err := orch.Publish(context.Background(), credID)
	require.NoError(t, err)
	require.NotNil(t, result.Record.BlockNumber)
	assert.Equal(t, int64(42), *result.Record.BlockNumber)
}
