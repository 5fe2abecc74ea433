package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Roster and ledger errors
	ErrEmptyName     = fmt.Errorf("participant name is empty")
	ErrDuplicateName = fmt.Errorf("participant already exists")
	ErrEmptyPrize    = fmt.Errorf("prize is empty")
	ErrNotFound      = fmt.Errorf("not found")

	// Draw errors. Invalid draw requests are logged and ignored, never surfaced to the operator.
	ErrInvalidDrawRequest = fmt.Errorf("invalid draw request")

	// Storage errors
	ErrStorage = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidInput      = fmt.Errorf("invalid input")
	ErrMissingArgument   = fmt.Errorf("missing required argument")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrUnsupportedFormat = fmt.Errorf("unsupported format")
)
