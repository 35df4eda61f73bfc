package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgconn"
)

type nameMappingRepositoryImpl struct {
	db *database.DB
}

func NewNameMappingRepository(db *database.DB) employee.NameMappingRepository {
	return &nameMappingRepositoryImpl{db: db}
}

const nameMappingColumns = `id, alternate_name, canonical_name, employee_id, source, notes, is_active, created_at`

// ListActive implements employee.NameMappingRepository.
func (n *nameMappingRepositoryImpl) ListActive(ctx context.Context) ([]employee.NameMapping, error) {
	return n.list(ctx, `SELECT `+nameMappingColumns+` FROM employee_name_mappings WHERE is_active = TRUE ORDER BY alternate_name`)
}

// List implements employee.NameMappingRepository.
func (n *nameMappingRepositoryImpl) List(ctx context.Context) ([]employee.NameMapping, error) {
	return n.list(ctx, `SELECT `+nameMappingColumns+` FROM employee_name_mappings ORDER BY canonical_name, alternate_name`)
}

func (n *nameMappingRepositoryImpl) list(ctx context.Context, query string) ([]employee.NameMapping, error) {
	q := GetQuerier(ctx, n.db)

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query name mappings: %w", err)
	}
	defer rows.Close()

	var mappings []employee.NameMapping
	for rows.Next() {
		var m employee.NameMapping
		if err := rows.Scan(&m.ID, &m.AlternateName, &m.CanonicalName, &m.EmployeeID, &m.Source, &m.Notes, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan name mapping: %w", err)
		}
		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

// Create implements employee.NameMappingRepository.
func (n *nameMappingRepositoryImpl) Create(ctx context.Context, mapping employee.NameMapping) (employee.NameMapping, error) {
	q := GetQuerier(ctx, n.db)

	query := `
		INSERT INTO employee_name_mappings (alternate_name, canonical_name, employee_id, source, notes, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + nameMappingColumns

	var m employee.NameMapping
	err := q.QueryRow(ctx, query,
		mapping.AlternateName, mapping.CanonicalName, mapping.EmployeeID, mapping.Source, mapping.Notes, mapping.IsActive,
	).Scan(&m.ID, &m.AlternateName, &m.CanonicalName, &m.EmployeeID, &m.Source, &m.Notes, &m.IsActive, &m.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return employee.NameMapping{}, employee.ErrNameMappingExists
		}
		return employee.NameMapping{}, fmt.Errorf("insert name mapping %q: %w", mapping.AlternateName, err)
	}

	return m, nil
}
