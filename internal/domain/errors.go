package domain

import "errors"

// Error kinds returned by the stores. Callers match them with errors.Is.
var (
	ErrInvalidCredentials      = errors.New("invalid username or password")
	ErrInvalidAdminCredentials = errors.New("invalid admin credentials")
	ErrDuplicateUsername       = errors.New("username already exists")
	ErrAlreadyExists           = errors.New("already exists")
	ErrInvalidName             = errors.New("invalid list name")
	ErrNotFound                = errors.New("not found")
	ErrValidation              = errors.New("validation failed")
	ErrStorageUnavailable      = errors.New("no storage session available")
	ErrTransactionFailed       = errors.New("transaction failed")
)

var kinds = []error{
	ErrInvalidCredentials,
	ErrInvalidAdminCredentials,
	ErrDuplicateUsername,
	ErrAlreadyExists,
	ErrInvalidName,
	ErrNotFound,
	ErrValidation,
	ErrStorageUnavailable,
	ErrTransactionFailed,
}

// IsKind reports whether err carries one of the error kinds above.
func IsKind(err error) bool {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
