package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ijazah/internal/holder/models"
)

const uniqueViolation = "23505"

const holderColumns = `id, user_id, enrollment_number, name, program_id,
	enrollment_year, graduation_year, birth_place, birth_date, created_at, updated_at`

// PostgresStore persists holders in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed holder store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new holder. Enrollment-number uniqueness is enforced by the
// database.
func (s *PostgresStore) Create(ctx context.Context, holder *models.Holder) error {
	query := `
		INSERT INTO holders (id, user_id, enrollment_number, name, program_id,
			enrollment_year, graduation_year, birth_place, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		holder.ID, holder.UserID, holder.EnrollmentNumber, holder.Name, holder.ProgramID,
		holder.EnrollmentYear, holder.GraduationYear, holder.BirthPlace, holder.BirthDate,
		holder.CreatedAt, holder.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEnrollmentTaken
		}
		return fmt.Errorf("insert holder: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a holder.
func (s *PostgresStore) Update(ctx context.Context, holder *models.Holder) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE holders SET user_id = $2, enrollment_number = $3, name = $4,
			graduation_year = $5, birth_place = $6, birth_date = $7, updated_at = $8
		WHERE id = $1
	`, holder.ID, holder.UserID, holder.EnrollmentNumber, holder.Name,
		holder.GraduationYear, holder.BirthPlace, holder.BirthDate, holder.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEnrollmentTaken
		}
		return fmt.Errorf("update holder: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID retrieves a holder by ID or returns ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Holder, error) {
	return scanHolder(s.db.QueryRowContext(ctx,
		`SELECT `+holderColumns+` FROM holders WHERE id = $1`, id))
}

// FindByUserID retrieves the holder linked to a platform user.
func (s *PostgresStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Holder, error) {
	return scanHolder(s.db.QueryRowContext(ctx,
		`SELECT `+holderColumns+` FROM holders WHERE user_id = $1`, userID))
}

// FindByEnrollmentNumber retrieves a holder by enrollment number.
func (s *PostgresStore) FindByEnrollmentNumber(ctx context.Context, nim string) (*models.Holder, error) {
	return scanHolder(s.db.QueryRowContext(ctx,
		`SELECT `+holderColumns+` FROM holders WHERE lower(enrollment_number) = lower($1)`, nim))
}

// List returns all holders ordered by enrollment number.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Holder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+holderColumns+` FROM holders ORDER BY enrollment_number`)
	if err != nil {
		return nil, fmt.Errorf("list holders: %w", err)
	}
	defer rows.Close()

	var result []*models.Holder
	for rows.Next() {
		var h models.Holder
		if err := rows.Scan(&h.ID, &h.UserID, &h.EnrollmentNumber, &h.Name, &h.ProgramID,
			&h.EnrollmentYear, &h.GraduationYear, &h.BirthPlace, &h.BirthDate,
			&h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan holder: %w", err)
		}
		result = append(result, &h)
	}
	return result, rows.Err()
}

func scanHolder(row *sql.Row) (*models.Holder, error) {
	var h models.Holder
	err := row.Scan(&h.ID, &h.UserID, &h.EnrollmentNumber, &h.Name, &h.ProgramID,
		&h.EnrollmentYear, &h.GraduationYear, &h.BirthPlace, &h.BirthDate,
		&h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan holder: %w", err)
	}
	return &h, nil
}

var _ Store = (*PostgresStore)(nil)
