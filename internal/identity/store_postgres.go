package identity

import (
	"context"
	"database/sql"
	"fmt"

	dErrors "sentinela/pkg/domain-errors"
)

// PostgresStore reads profiles from the profiles table. Pure I/O: role
// checks belong in the service.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT id, role, email, COALESCE(nome, ''), COALESCE(empresa_id::text, '')
		FROM profiles
		WHERE id = $1
	`
	var p Profile
	var role string
	err := s.db.QueryRowContext(ctx, query, userID).Scan(&p.ID, &role, &p.Email, &p.Name, &p.CompanyID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile not found")
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	p.Role = Role(role)
	return &p, nil
}

func (s *PostgresStore) ListAdmins(ctx context.Context) ([]Profile, error) {
	query := `
		SELECT id, role, email, COALESCE(nome, ''), COALESCE(empresa_id::text, '')
		FROM profiles
		WHERE role IN ('admin', 'super_admin')
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list admin profiles: %w", err)
	}
	defer rows.Close()

	var admins []Profile
	for rows.Next() {
		var p Profile
		var role string
		if err := rows.Scan(&p.ID, &role, &p.Email, &p.Name, &p.CompanyID); err != nil {
			return nil, fmt.Errorf("scan admin profile: %w", err)
		}
		p.Role = Role(role)
		admins = append(admins, p)
	}
	return admins, rows.Err()
}
