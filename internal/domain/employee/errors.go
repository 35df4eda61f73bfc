package employee

import "errors"

var (
	ErrNameMappingExists     = errors.New("a mapping for this alternate name already exists")
	ErrAlternateNameRequired = errors.New("alternate_name is required")
	ErrCanonicalNameRequired = errors.New("canonical_name is required")
	ErrMappingNamesIdentical = errors.New("alternate_name and canonical_name must differ")
)
