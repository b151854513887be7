package types

import (
	"errors"
	"fmt"
)

// Top-level error classes. Configuration errors are fatal to a run and are
// never retried; data inconsistencies are reported as configuration errors.
var (
	ErrConfig = errors.New("configuration error")
	ErrData   = fmt.Errorf("%w: data inconsistency", ErrConfig)
)

// Configuration errors.
var (
	ErrTooFewCores      = fmt.Errorf("%w: fewer than two core areas, nothing to connect", ErrConfig)
	ErrNoCorridors      = fmt.Errorf("%w: no corridor links remain to map", ErrConfig)
	ErrNoCorePairs      = fmt.Errorf("%w: no valid core area pairs", ErrConfig)
	ErrSkippedStep      = fmt.Errorf("%w: steps may start or stop anywhere but only step 4 may be skipped", ErrConfig)
	ErrInvalidStep      = fmt.Errorf("%w: step must be between 1 and 5", ErrConfig)
	ErrMissingInput     = fmt.Errorf("%w: required input file not found", ErrConfig)
	ErrReservedField    = fmt.Errorf("%w: core id field names \"ID\" and \"id\" are reserved", ErrConfig)
	ErrInvalidThreshold = fmt.Errorf("%w: invalid distance threshold", ErrConfig)
	ErrMergeThreshold   = fmt.Errorf("%w: connecting fragments requires a merge threshold or maximum Euclidean distance", ErrConfig)
	ErrInvalidUnit      = fmt.Errorf("%w: nearest neighbor unit must be euclidean or cost", ErrConfig)
	ErrProjectDirEmpty  = fmt.Errorf("%w: project directory must not be empty", ErrConfig)
	ErrCoreFileEmpty    = fmt.Errorf("%w: core list file must not be empty", ErrConfig)
)

// Data errors.
var (
	ErrInvalidCoreID   = fmt.Errorf("%w: core id must be a positive integer", ErrData)
	ErrUnknownCore     = fmt.Errorf("%w: core id not present in core area list", ErrData)
	ErrShape           = fmt.Errorf("%w: malformed table", ErrData)
)

// Archive lifecycle errors.
var (
	ErrArchiveDetached = errors.New("archive is detached")
	ErrAlreadyAttached = errors.New("archive is already attached")
	ErrRunNotFound     = errors.New("run not found")
	ErrStepArchived    = errors.New("step table already archived for run")
	ErrStepNotArchived = errors.New("step table not archived for run")
)

// IsConfigError reports whether err is a fatal configuration or data error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}
