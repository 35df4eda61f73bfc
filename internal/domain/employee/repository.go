package employee

import "context"

type EmployeeRepository interface {
	// GetIDByFullName returns nil without error when no employee carries the name.
	GetIDByFullName(ctx context.Context, fullName string) (*string, error)
}

type NameMappingRepository interface {
	ListActive(ctx context.Context) ([]NameMapping, error)
	List(ctx context.Context) ([]NameMapping, error)
	Create(ctx context.Context, mapping NameMapping) (NameMapping, error)
}
