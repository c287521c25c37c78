// Package cfgerror defines the error taxonomy used across the configuration
// resolution engine. Every error the engine can return belongs to exactly one
// Kind, so callers (the cmd/pgconf CLI surface) can map failures to distinct
// process exit codes without parsing message text.
package cfgerror

import "fmt"

// Kind classifies an Error into the engine's error taxonomy.
type Kind int

const (
	// KindCommandInvalid covers an unknown command or an invalid role for a
	// known command.
	KindCommandInvalid Kind = iota
	// KindCommandRequired is thrown when argv has options but no command.
	KindCommandRequired
	// KindParamInvalid is thrown when positional parameters are present but
	// the resolved command does not allow them.
	KindParamInvalid
	// KindOptionInvalid covers structural option problems: unknown option,
	// missing argument, illegal negate/reset/multi combinations, secure
	// option on argv, not-valid-for-command, duplicate in a section,
	// depend-unsatisfied.
	KindOptionInvalid
	// KindOptionInvalidValue covers a value that failed type parsing, range
	// checking, allow-list checking, path shape checking, or the boolean
	// y/n rule.
	KindOptionInvalidValue
	// KindOptionRequired covers a required option with no value and no
	// default.
	KindOptionRequired
	// KindFormatError covers malformed input to a parsing helper; should
	// never escape a well-formed input.
	KindFormatError
	// KindAssertError covers an internal invariant violation in the rule
	// table or resolver; should never escape a well-formed rule table.
	KindAssertError
)

func (k Kind) String() string {
	switch k {
	case KindCommandInvalid:
		return "CommandInvalid"
	case KindCommandRequired:
		return "CommandRequired"
	case KindParamInvalid:
		return "ParamInvalid"
	case KindOptionInvalid:
		return "OptionInvalid"
	case KindOptionInvalidValue:
		return "OptionInvalidValue"
	case KindOptionRequired:
		return "OptionRequired"
	case KindFormatError:
		return "FormatError"
	case KindAssertError:
		return "AssertError"
	default:
		return "Unknown"
	}
}

// Error is the single error type returned by every layer of the engine.
type Error struct {
	kind    Kind
	message string
	hint    string
	wrapped error
}

func (e *Error) Error() string {
	if e.hint == "" {
		return e.message
	}
	return e.message + "\nHINT: " + e.hint
}

// Kind reports the taxonomy classification of the error.
func (e *Error) Kind() Kind { return e.kind }

// Hint reports the optional hint text, or "" if none was set.
func (e *Error) Hint() string { return e.hint }

// Unwrap lets errors.Is/As see through to a wrapped lower-level error, when
// one exists (e.g. an *os.PathError from the storage collaborator).
func (e *Error) Unwrap() error { return e.wrapped }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// WithHint attaches a HINT line to an error, matching the two-line
// "message\nHINT: ..." shape the original engine throws for secure options
// and required-in-a-stanza options.
func WithHint(kind Kind, hint string, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), hint: hint}
}

// Wrap builds an Error that also carries a lower-level cause, for collaborator
// failures (storage I/O, INI validation) that should surface through the
// taxonomy while remaining inspectable with errors.Unwrap.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), wrapped: cause}
}

// Assertf panics with a KindAssertError-classified error. Reserved for
// invariants the rule table guarantees at build/init time; it should never
// be reachable from a well-formed input, matching the source's ASSERT macro.
func Assertf(format string, args ...any) {
	panic(New(KindAssertError, format, args...))
}

// Is reports whether err is an *Error of the given kind. It does not match
// wrapped errors of a different concrete type, matching errors.Is semantics
// for a sentinel-free taxonomy.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.kind == kind
}
