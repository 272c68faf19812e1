package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"ijazah/internal/anchor/models"
)

func pendingRecord(credentialID uuid.UUID) *models.Record {
	return &models.Record{
		CredentialID:    credentialID,
		Fingerprint:     "0x1111111111111111111111111111111111111111111111111111111111111111",
		Network:         "polygon-amoy",
		ContractAddress: "0xabc",
		Status:          models.StatusPending,
	}
}

func successRecord(credentialID uuid.UUID) *models.Record {
	record := pendingRecord(credentialID)
	tx := "tx1"
	block := int64(42)
	now := time.Now()
	record.Status = models.StatusSuccess
	record.TxID = &tx
	record.BlockNumber = &block
	record.PublishedAt = &now
	return record
}

func TestCreateIntent_ClaimsSlotOnce(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()
	cutoff := time.Now().Add(-time.Minute)

	created, err := s.CreateIntent(ctx, pendingRecord(id), cutoff)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	// A second publisher cannot claim a live intent.
	_, err = s.CreateIntent(ctx, pendingRecord(id), cutoff)
	assert.ErrorIs(t, err, ErrPublishInFlight)

	got, err := s.GetByCredential(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
}

func TestCreateIntent_SupersedesFailedAndStale(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	failed := pendingRecord(id)
	failed.Status = models.StatusFailed
	detail := "rpc connection reset"
	failed.ErrorDetail = &detail
	_, err := s.Upsert(ctx, failed)
	require.NoError(t, err)

	fresh, err := s.CreateIntent(ctx, pendingRecord(id), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, fresh.Status)
	assert.Nil(t, fresh.ErrorDetail)

	// A PENDING row older than the cutoff is a crashed run and may be claimed.
	_, err = s.CreateIntent(ctx, pendingRecord(id), time.Now().Add(time.Minute))
	require.NoError(t, err)
}

func TestCreateIntent_FinalizedRejected(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	_, err := s.Upsert(ctx, successRecord(id))
	require.NoError(t, err)

	_, err = s.CreateIntent(ctx, pendingRecord(id), time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestCreateIntent_ConcurrentClaimRace(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()
	cutoff := time.Now().Add(-time.Minute)

	var g errgroup.Group
	var claimed atomic.Int32
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			if _, err := s.CreateIntent(ctx, pendingRecord(id), cutoff); err == nil {
				claimed.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), claimed.Load())
}

func TestUpsert_CreatesThenAdvances(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	created, err := s.Upsert(ctx, pendingRecord(id))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, created.Status)

	advanced, err := s.Upsert(ctx, successRecord(id))
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, advanced.Status)
	require.NotNil(t, advanced.BlockNumber)
	assert.Equal(t, int64(42), *advanced.BlockNumber)

	got, err := s.GetByCredential(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, got.Status)
}

func TestUpsert_FinalizeGuard(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	_, err := s.Upsert(ctx, successRecord(id))
	require.NoError(t, err)

	_, err = s.Upsert(ctx, pendingRecord(id))
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	other := successRecord(id)
	other.Fingerprint = "0x2222222222222222222222222222222222222222222222222222222222222222"
	_, err = s.Upsert(ctx, other)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestUpsert_SerialBackfillAllowed(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	_, err := s.Upsert(ctx, successRecord(id))
	require.NoError(t, err)

	backfill := successRecord(id)
	serial := "0x3333333333333333333333333333333333333333333333333333333333333333"
	backfill.SerialFingerprint = &serial

	stored, err := s.Upsert(ctx, backfill)
	require.NoError(t, err)
	require.NotNil(t, stored.SerialFingerprint)
	assert.Equal(t, serial, *stored.SerialFingerprint)

	// Once filled, the serial fingerprint is frozen with the rest of the row.
	again := "0x4444444444444444444444444444444444444444444444444444444444444444"
	backfill.SerialFingerprint = &again
	_, err = s.Upsert(ctx, backfill)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestGetByFingerprint_FallsBackToSerial(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	record := successRecord(id)
	serial := "0x5555555555555555555555555555555555555555555555555555555555555555"
	record.SerialFingerprint = &serial
	_, err := s.Upsert(ctx, record)
	require.NoError(t, err)

	byCanonical, err := s.GetByFingerprint(ctx, record.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, id, byCanonical.CredentialID)

	bySerial, err := s.GetByFingerprint(ctx, serial)
	require.NoError(t, err)
	assert.Equal(t, id, bySerial.CredentialID)

	_, err = s.GetByFingerprint(ctx, "0x9999999999999999999999999999999999999999999999999999999999999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteByCredential(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	_, err := s.Upsert(ctx, pendingRecord(id))
	require.NoError(t, err)
	require.NoError(t, s.DeleteByCredential(ctx, id))

	_, err = s.GetByCredential(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteByCredential(ctx, id), ErrNotFound)
}

func TestUpsert_ConcurrentFinalizeRace(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	id := uuid.New()

	_, err := s.Upsert(ctx, pendingRecord(id))
	require.NoError(t, err)

	// Many publishers race to finalize; all writes after the first SUCCESS
	// must be rejected, and the stored block number is one of the attempts.
	var g errgroup.Group
	var finalized atomic.Int32
	for i := 0; i < 8; i++ {
		block := int64(100 + i)
		g.Go(func() error {
			record := successRecord(id)
			record.BlockNumber = &block
			if _, err := s.Upsert(ctx, record); err == nil {
				finalized.Add(1)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), finalized.Load())

	got, err := s.GetByCredential(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, got.Status)
}
