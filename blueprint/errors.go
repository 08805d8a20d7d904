package blueprint

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel errors. Use [errors.Is] against these to classify a returned
// error without inspecting its concrete type.
var (
	// ErrMalformedToken indicates a token was missing its '=' separator.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidReferenceTarget indicates a "key@=target" token whose
	// target contains a wildcard segment.
	ErrInvalidReferenceTarget = errors.New("invalid reference target")
	// ErrMissingRequired indicates a required parameter path had no
	// argument and no default.
	ErrMissingRequired = errors.New("missing required parameter")
	// ErrExtraneousArgument indicates a qualified key was never
	// consulted by the schema walker.
	ErrExtraneousArgument = errors.New("extraneous argument")
	// ErrUnknownSubtype indicates a polymorphic field's token did not
	// resolve to any registered subtype.
	ErrUnknownSubtype = errors.New("unknown subtype")
	// ErrCastFailed indicates a raw token could not be cast to its
	// declared type.
	ErrCastFailed = errors.New("cast failed")
	// ErrReferenceNotFound indicates a Reference's target path does not
	// exist in the thunk graph.
	ErrReferenceNotFound = errors.New("reference target not found")
	// ErrCycle indicates the thunk graph contains a reference cycle.
	ErrCycle = errors.New("cycle detected")
	// ErrConstruction indicates a thunk's compute function raised an
	// error during evaluation.
	ErrConstruction = errors.New("construction error")
	// ErrValidation indicates one or more validators rejected a value.
	ErrValidation = errors.New("validation error")
	// ErrConflictingRegistration indicates a [Registry] key was
	// re-registered with a different value.
	ErrConflictingRegistration = errors.New("conflicting registration")
	// ErrHelpRequested indicates [Blueprint.Make] was called after
	// [Blueprint.ApplyArgv] saw a distinguished --help/-h token; the
	// caller should render [Blueprint.Help] instead of treating this as
	// a construction failure.
	ErrHelpRequested = errors.New("help requested")
)

// ParseError reports a problem found while parsing CLI-style tokens.
type ParseError struct {
	Token string
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.Token, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ResolutionError reports a problem found while the schema walker
// reconciles the schema with the argument map: a missing required
// parameter, an extraneous argument, or an unrecognized polymorphic
// subtype token.
type ResolutionError struct {
	Kind        error // one of ErrMissingRequired, ErrExtraneousArgument, ErrUnknownSubtype
	Path        Path
	LayerName   string
	Token       string
	ValidSet    []string
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%v: %s", e.Kind, e.Path)

	if e.Token != "" {
		fmt.Fprintf(&sb, " (token %q)", e.Token)
	}

	if e.LayerName != "" {
		fmt.Fprintf(&sb, " [layer %s]", e.LayerName)
	}

	if len(e.ValidSet) > 0 {
		fmt.Fprintf(&sb, ", valid: %s", strings.Join(e.ValidSet, ", "))
	}

	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&sb, ", did you mean: %s?", strings.Join(e.Suggestions, ", "))
	}

	return sb.String()
}

func (e *ResolutionError) Unwrap() error { return e.Kind }

// CastError reports that a raw token could not be cast to its declared
// type. TypeRepr is the stable human-readable form of the declared type,
// used both here and in help text.
type CastError struct {
	Path     Path
	Raw      string
	TypeRepr string
	Reason   string
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cannot cast %s=%q to %s: %s", e.Path, e.Raw, e.TypeRepr, e.Reason)
}

func (e *CastError) Unwrap() error { return ErrCastFailed }

// ReferenceError reports a Reference whose target does not exist in the
// thunk graph.
type ReferenceError struct {
	Path   Path
	Target Path
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s references nonexistent path %s", e.Path, e.Target)
}

func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

// CycleError reports a reference cycle found during evaluation. Stack
// holds the in-progress path chain at the point the cycle was detected,
// outermost first.
type CycleError struct {
	Stack []Path
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Stack))
	for i, p := range e.Stack {
		parts[i] = string(p)
	}

	return fmt.Sprintf("cycle detected: %s", strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// ConstructionError wraps an error raised by a thunk's compute function
// with the path at which it occurred. The original error is retained as
// a cause chain via github.com/pkg/errors annotations. No stack trace is
// recorded, and %+v prints the same text as %v.
type ConstructionError struct {
	Path  Path
	Cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("constructing %s: %v", e.Path, e.Cause)
}

func (e *ConstructionError) Unwrap() error { return e.Cause }

// wrapConstruction attaches path context to a thunk failure, chaining
// onto any existing ConstructionError so the deepest path is innermost.
func wrapConstruction(path Path, err error) error {
	if err == nil {
		return nil
	}

	return &ConstructionError{
		Path:  path,
		Cause: errors.WithMessage(err, "evaluating "+string(path)),
	}
}

// FieldError is one element of a [ValidationError]: a single field or
// whole-record validator rejection.
type FieldError struct {
	Path    Path // empty for a whole-record validator
	Message string
}

func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationError aggregates every validator rejection found while
// post-processing a single construction. Field and whole-record
// validators run independently, so every failure is collected rather
// than short-circuiting on the first one.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Error()
	}

	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// HasErrors reports whether any validator rejected a value.
func (e *ValidationError) HasErrors() bool { return e != nil && len(e.Errors) > 0 }
