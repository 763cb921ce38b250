package daac

import "fmt"

// ErrorKind classifies construction and decoding errors.
type ErrorKind uint8

const (
	// EmptyPatternSet indicates that no patterns were given.
	EmptyPatternSet ErrorKind = iota

	// EmptyPattern indicates a zero-length pattern.
	EmptyPattern

	// DuplicatePattern indicates that the same pattern was given twice.
	DuplicatePattern

	// ValueOutOfRange indicates that an automatically assigned pattern index
	// does not fit the value type.
	ValueOutOfRange

	// ScaleExceeded indicates that the pattern set or the resulting automaton
	// does not fit the fixed-width fields of the double array.
	ScaleExceeded

	// InvalidPattern indicates a pattern the character-wise automaton cannot
	// decode (it is not valid UTF-8).
	InvalidPattern

	// InvalidData indicates a serialized automaton that failed validation.
	InvalidData
)

// String returns a human-readable error kind name
func (k ErrorKind) String() string {
	switch k {
	case EmptyPatternSet:
		return "EmptyPatternSet"
	case EmptyPattern:
		return "EmptyPattern"
	case DuplicatePattern:
		return "DuplicatePattern"
	case ValueOutOfRange:
		return "ValueOutOfRange"
	case ScaleExceeded:
		return "ScaleExceeded"
	case InvalidPattern:
		return "InvalidPattern"
	case InvalidData:
		return "InvalidData"
	default:
		return fmt.Sprintf("UnknownErrorKind(%d)", k)
	}
}

// BuildError is returned by every construction and validating decode entry
// point. Compare against the Err* sentinels with errors.Is; the comparison
// only looks at Kind.
type BuildError struct {
	Kind    ErrorKind
	Message string
	Cause   error // Optional underlying error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error (for errors.Is/As)
func (e *BuildError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison for errors.Is
func (e *BuildError) Is(target error) bool {
	t, ok := target.(*BuildError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

var (
	ErrEmptyPatternSet  = &BuildError{Kind: EmptyPatternSet, Message: "pattern set is empty"}
	ErrEmptyPattern     = &BuildError{Kind: EmptyPattern, Message: "pattern is empty"}
	ErrDuplicatePattern = &BuildError{Kind: DuplicatePattern, Message: "duplicate pattern"}
	ErrValueOutOfRange  = &BuildError{Kind: ValueOutOfRange, Message: "pattern index does not fit the value type"}
	ErrScaleExceeded    = &BuildError{Kind: ScaleExceeded, Message: "automaton scale exceeded"}
	ErrInvalidPattern   = &BuildError{Kind: InvalidPattern, Message: "pattern is not valid UTF-8"}
	ErrInvalidData      = &BuildError{Kind: InvalidData, Message: "invalid serialized automaton"}
)

func buildErrorf(kind ErrorKind, format string, args ...interface{}) *BuildError {
	return &BuildError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
