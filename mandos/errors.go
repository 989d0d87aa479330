// Copyright (c) 2024 the mandos authors

package mandos

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why loading or lowering a scenario failed.
type Kind int

const (
	// Syntax covers malformed JSON, delegated to the parser collaborator.
	Syntax Kind = iota
	// Shape covers a missing required field, an unknown step discriminator,
	// or the wrong JSON kind in a position.
	Shape
	// BadLiteral covers an unparseable numeric body or a stray character.
	BadLiteral
	// NumericOverflow covers a value that exceeds the target numeric width.
	NumericOverflow
	// Unsupported covers a recognised prefix with no collaborator injected.
	Unsupported
	// External covers a collaborator (the file loader) reporting failure.
	External
	// DuplicateEntry covers two distinct raw keys lowering to the same
	// canonical address.
	DuplicateEntry
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Shape:
		return "shape"
	case BadLiteral:
		return "bad_literal"
	case NumericOverflow:
		return "numeric_overflow"
	case Unsupported:
		return "unsupported"
	case External:
		return "external"
	case DuplicateEntry:
		return "duplicate_entry"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every exported entry point. It
// carries the taxonomy Kind and a human-readable path into the document,
// e.g. "steps[3].tx.arguments[0]".
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, path Path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: string(path), Err: errors.Errorf(format, args...)}
}

// wrapError attaches path to err's outermost *Error if it doesn't already
// carry one (the deepest failure point sets it first and wins), or
// constructs a new *Error of kind otherwise.
func wrapError(kind Kind, path Path, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Path == "" {
			existing.Path = string(path)
		}
		return existing
	}
	return &Error{Kind: kind, Path: string(path), Err: errors.WithStack(err)}
}

// Path locates a value inside a scenario document for error reporting.
type Path string

// Field appends a struct field name, e.g. "steps[3]" -> "steps[3].tx".
func (p Path) Field(name string) Path {
	if p == "" {
		return Path(name)
	}
	return Path(string(p) + "." + name)
}

// Index appends a list index, e.g. "steps" -> "steps[3]".
func (p Path) Index(i int) Path {
	return Path(fmt.Sprintf("%s[%d]", p, i))
}

// Key appends a map key, e.g. "accounts" -> `accounts["address:a"]`.
func (p Path) Key(k string) Path {
	return Path(fmt.Sprintf("%s[%q]", p, k))
}

func (p Path) String() string {
	return string(p)
}
