package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"ijazah/internal/program/models"
)

const uniqueViolation = "23505"

// PostgresStore persists programs in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed program store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new program. Code uniqueness is enforced by the database.
func (s *PostgresStore) Create(ctx context.Context, program *models.Program) error {
	query := `
		INSERT INTO programs (id, code, name, degree_level, created_at, updated_at)
		VALUES ($1, upper($2), $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		program.ID, program.Code, program.Name, program.DegreeLevel,
		program.CreatedAt, program.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrCodeTaken
		}
		return fmt.Errorf("insert program: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of a program.
func (s *PostgresStore) Update(ctx context.Context, program *models.Program) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE programs SET name = $2, degree_level = $3, updated_at = $4
		WHERE id = $1
	`, program.ID, program.Name, program.DegreeLevel, program.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID retrieves a program by ID or returns ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	return scanProgram(s.db.QueryRowContext(ctx, `
		SELECT id, code, name, degree_level, created_at, updated_at
		FROM programs WHERE id = $1
	`, id))
}

// FindByCode retrieves a program by code or returns ErrNotFound.
func (s *PostgresStore) FindByCode(ctx context.Context, code string) (*models.Program, error) {
	return scanProgram(s.db.QueryRowContext(ctx, `
		SELECT id, code, name, degree_level, created_at, updated_at
		FROM programs WHERE code = upper($1)
	`, code))
}

// List returns all programs ordered by code.
func (s *PostgresStore) List(ctx context.Context) ([]*models.Program, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, degree_level, created_at, updated_at
		FROM programs ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var result []*models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.DegreeLevel, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		result = append(result, &p)
	}
	return result, rows.Err()
}

func scanProgram(row *sql.Row) (*models.Program, error) {
	var p models.Program
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.DegreeLevel, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan program: %w", err)
	}
	return &p, nil
}

var _ Store = (*PostgresStore)(nil)
