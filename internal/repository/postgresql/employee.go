package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timesheet-sync/internal/domain/employee"
	"github.com/cmlabs-hris/timesheet-sync/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

// GetIDByFullName implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetIDByFullName(ctx context.Context, fullName string) (*string, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id
		FROM employees
		WHERE full_name = $1
		ORDER BY is_active DESC
		LIMIT 1
	`

	var id string
	err := q.QueryRow(ctx, query, fullName).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up employee %q: %w", fullName, err)
	}

	return &id, nil
}
