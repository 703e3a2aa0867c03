// Package errs defines the sentinel errors shared by all EDS packages.
//
// Call sites wrap these with fmt.Errorf("%w: ...") to attach positions and
// other context; callers branch on the kind with errors.Is.
package errs

import "errors"

var (
	// ErrInvalidFormat indicates malformed EDS, sEDS, MSA or VCF text:
	// missing delimiters, an empty symbol, or unequal alignment lengths.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidCharacter indicates a byte that is not allowed where it
	// appeared, e.g. a non-digit inside an sEDS path set.
	ErrInvalidCharacter = errors.New("invalid character")

	// ErrCardinalityMismatch indicates an sEDS set count that does not
	// match the EDS cardinality m.
	ErrCardinalityMismatch = errors.New("cardinality mismatch")

	// ErrEmptyPathSet indicates an empty {} path set in sEDS input.
	ErrEmptyPathSet = errors.New("empty path set")

	// ErrOutOfRange indicates a symbol index, degenerate ordinal or
	// position beyond bounds.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidArgument indicates a structurally wrong request: choice
	// vector of the wrong size, an ordinal belonging to a different
	// symbol, a non-adjacent merge, or a driver/source mode mismatch.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrModeUnsupported indicates an operation that requires the other
	// storage mode.
	ErrModeUnsupported = errors.New("operation unsupported in this storage mode")

	// ErrEmptySetResult indicates a LINEAR merge in which every source
	// intersection came up empty.
	ErrEmptySetResult = errors.New("merge produced empty set")

	// ErrMergeDidNotConverge indicates the l-EDS driver exceeded its
	// iteration cap.
	ErrMergeDidNotConverge = errors.New("merge did not converge")

	// ErrIO wraps file open/read/write/seek failures.
	ErrIO = errors.New("i/o error")
)
