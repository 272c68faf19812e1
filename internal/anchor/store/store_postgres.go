package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ijazah/internal/anchor/models"
)

const anchorColumns = `credential_id, fingerprint, serial_fingerprint, tx_id,
	network, contract_address, block_number, status, error_detail, explorer_url,
	published_at, created_at, updated_at`

// PostgresStore persists anchor records in PostgreSQL. The finalize guard is a
// single conditional write, not a read-then-write pair, so concurrent
// publishers cannot slip past it.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed anchor store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetByCredential retrieves the anchor record for a credential.
func (s *PostgresStore) GetByCredential(ctx context.Context, credentialID uuid.UUID) (*models.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+anchorColumns+` FROM anchor_records WHERE credential_id = $1`,
		credentialID))
}

// GetByFingerprint retrieves an anchor record by its canonical fingerprint,
// falling back to the serial-derived fingerprint.
func (s *PostgresStore) GetByFingerprint(ctx context.Context, fingerprint string) (*models.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, `
		SELECT `+anchorColumns+` FROM anchor_records
		WHERE fingerprint = $1 OR serial_fingerprint = $1
		ORDER BY (fingerprint = $1) DESC
		LIMIT 1
	`, fingerprint))
}

// CreateIntent atomically claims the publish slot for a credential in one
// conditional statement. The conflict update only fires for a FAILED record or
// a PENDING record last touched before the supersede cutoff; when no row comes
// back another publisher holds the slot, and a read-back distinguishes a
// finalized record from a live intent.
func (s *PostgresStore) CreateIntent(ctx context.Context, record *models.Record, supersede time.Time) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO anchor_records (credential_id, fingerprint, serial_fingerprint,
			tx_id, network, contract_address, block_number, status, error_detail,
			explorer_url, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULL, $4, $5, NULL, 'PENDING', NULL, NULL, NULL, now(), now())
		ON CONFLICT (credential_id) DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			serial_fingerprint = EXCLUDED.serial_fingerprint,
			tx_id = NULL,
			network = EXCLUDED.network,
			contract_address = EXCLUDED.contract_address,
			block_number = NULL,
			status = 'PENDING',
			error_detail = NULL,
			explorer_url = NULL,
			published_at = NULL,
			updated_at = now()
		WHERE anchor_records.status = 'FAILED'
			OR (anchor_records.status = 'PENDING' AND anchor_records.updated_at < $6)
		RETURNING `+anchorColumns,
		record.CredentialID, record.Fingerprint, record.SerialFingerprint,
		record.Network, record.ContractAddress, supersede,
	)
	stored, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		existing, readErr := s.GetByCredential(ctx, record.CredentialID)
		if readErr != nil {
			return nil, readErr
		}
		if existing.Status == models.StatusSuccess {
			return nil, ErrAlreadyFinalized
		}
		return nil, ErrPublishInFlight
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Upsert atomically creates or advances the record keyed by credential ID.
// The WHERE clause on the conflict update is the finalize guard: a SUCCESS row
// only accepts a serial-fingerprint backfill that changes nothing else. When
// the guard rejects the write no row is returned and the call fails with
// ErrAlreadyFinalized.
func (s *PostgresStore) Upsert(ctx context.Context, record *models.Record) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO anchor_records (credential_id, fingerprint, serial_fingerprint,
			tx_id, network, contract_address, block_number, status, error_detail,
			explorer_url, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		ON CONFLICT (credential_id) DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			serial_fingerprint = EXCLUDED.serial_fingerprint,
			tx_id = EXCLUDED.tx_id,
			network = EXCLUDED.network,
			contract_address = EXCLUDED.contract_address,
			block_number = EXCLUDED.block_number,
			status = EXCLUDED.status,
			error_detail = EXCLUDED.error_detail,
			explorer_url = EXCLUDED.explorer_url,
			published_at = EXCLUDED.published_at,
			updated_at = now()
		WHERE anchor_records.status <> 'SUCCESS'
			OR (anchor_records.serial_fingerprint IS NULL
				AND EXCLUDED.serial_fingerprint IS NOT NULL
				AND EXCLUDED.status = 'SUCCESS'
				AND EXCLUDED.fingerprint = anchor_records.fingerprint)
		RETURNING `+anchorColumns,
		record.CredentialID, record.Fingerprint, record.SerialFingerprint,
		record.TxID, record.Network, record.ContractAddress, record.BlockNumber,
		string(record.Status), record.ErrorDetail, record.ExplorerURL,
		record.PublishedAt,
	)
	stored, err := scanRecord(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrAlreadyFinalized
	}
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// DeleteByCredential removes the anchor record for a credential.
func (s *PostgresStore) DeleteByCredential(ctx context.Context, credentialID uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM anchor_records WHERE credential_id = $1`, credentialID)
	if err != nil {
		return fmt.Errorf("delete anchor record: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanRecord(row *sql.Row) (*models.Record, error) {
	var (
		r      models.Record
		status string
	)
	err := row.Scan(&r.CredentialID, &r.Fingerprint, &r.SerialFingerprint,
		&r.TxID, &r.Network, &r.ContractAddress, &r.BlockNumber, &status,
		&r.ErrorDetail, &r.ExplorerURL, &r.PublishedAt, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan anchor record: %w", err)
	}
	r.Status = models.Status(status)
	return &r, nil
}

var _ Store = (*PostgresStore)(nil)
