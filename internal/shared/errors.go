package shared

import "fmt"

var (
	// Input validation errors
	ErrUsage           = fmt.Errorf("usage error")
	ErrMissingLibrary  = fmt.Errorf("library path is required")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Pipeline errors
	ErrNotFound          = fmt.Errorf("not found in library")
	ErrRetrieval         = fmt.Errorf("recommendation retrieval failed")
	ErrUnsupportedFormat = fmt.Errorf("unsupported format")
	ErrNoRelativePath    = fmt.Errorf("no relative path exists")

	// Store errors
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
	ErrNotAnalyzed      = fmt.Errorf("library has not been analyzed")
)
