package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ijazah/internal/credential/models"
	"ijazah/internal/credential/statemachine"
)

const uniqueViolation = "23505"

const credentialColumns = `id, holder_id, serial_number, graduation_date, gpa,
	thesis_title, file_url, status, reviewer_id, review_note, reviewed_at,
	created_at, updated_at`

// PostgresStore persists credentials in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed credential store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new credential. Serial uniqueness is enforced by the
// database.
func (s *PostgresStore) Create(ctx context.Context, credential *models.Credential) error {
	query := `
		INSERT INTO credentials (id, holder_id, serial_number, graduation_date, gpa,
			thesis_title, file_url, status, reviewer_id, review_note, reviewed_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		credential.ID, credential.HolderID, credential.SerialNumber,
		credential.GraduationDate, credential.GPA, credential.ThesisTitle,
		credential.FileURL, string(credential.Status), credential.ReviewerID,
		credential.ReviewNote, credential.ReviewedAt,
		credential.CreatedAt, credential.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSerialTaken
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a credential.
func (s *PostgresStore) Update(ctx context.Context, credential *models.Credential) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE credentials SET serial_number = $2, graduation_date = $3, gpa = $4,
			thesis_title = $5, file_url = $6, status = $7, reviewer_id = $8,
			review_note = $9, reviewed_at = $10, updated_at = $11
		WHERE id = $1
	`, credential.ID, credential.SerialNumber, credential.GraduationDate,
		credential.GPA, credential.ThesisTitle, credential.FileURL,
		string(credential.Status), credential.ReviewerID, credential.ReviewNote,
		credential.ReviewedAt, credential.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSerialTaken
		}
		return fmt.Errorf("update credential: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a credential.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID retrieves a credential by ID or returns ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Credential, error) {
	return scanCredential(s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id))
}

// FindBySerial retrieves a credential by serial number.
func (s *PostgresStore) FindBySerial(ctx context.Context, serialNumber string) (*models.Credential, error) {
	return scanCredential(s.db.QueryRowContext(ctx,
		`SELECT `+credentialColumns+` FROM credentials WHERE lower(serial_number) = lower($1)`,
		serialNumber))
}

// List returns credentials matching the filter, newest first.
func (s *PostgresStore) List(ctx context.Context, filter models.ListFilter) ([]*models.Credential, error) {
	query := `SELECT ` + credentialColumns + ` FROM credentials`
	var (
		clauses []string
		args    []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.HolderID != nil {
		args = append(args, *filter.HolderID)
		clauses = append(clauses, "holder_id = $"+strconv.Itoa(len(args)))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	var result []*models.Credential
	for rows.Next() {
		credential, err := scanCredentialRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, credential)
	}
	return result, rows.Err()
}

// CountValidatedByReviewer counts fully validated credentials signed off by
// the given reviewer.
func (s *PostgresStore) CountValidatedByReviewer(ctx context.Context, reviewerID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT count(*) FROM credentials WHERE status = $1 AND reviewer_id = $2
	`, string(statemachine.StatusFullyValidated), reviewerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count validated credentials: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInto(scanner rowScanner) (*models.Credential, error) {
	var (
		c      models.Credential
		status string
	)
	err := scanner.Scan(&c.ID, &c.HolderID, &c.SerialNumber, &c.GraduationDate,
		&c.GPA, &c.ThesisTitle, &c.FileURL, &status, &c.ReviewerID,
		&c.ReviewNote, &c.ReviewedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Status = statemachine.Status(status)
	return &c, nil
}

func scanCredential(row *sql.Row) (*models.Credential, error) {
	credential, err := scanInto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return credential, nil
}

func scanCredentialRow(rows *sql.Rows) (*models.Credential, error) {
	credential, err := scanInto(rows)
	if err != nil {
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	return credential, nil
}

var _ Store = (*PostgresStore)(nil)
