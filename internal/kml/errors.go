package kml

import (
	"errors"
	"fmt"
)

// Error classes. Use errors.Is to test for them.
var (
	// ErrMalformedInput marks unparseable text or a structurally invalid node.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedVariant marks a feature or geometry kind that has no model equivalent,
	// or a model variant with no equivalent in the target format.
	ErrUnsupportedVariant = errors.New("unsupported feature type")
	// ErrDuplicateIdentifier marks an identifier already present in the document.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrUnknownParent marks an insertion under a folder that is not part of the document.
	ErrUnknownParent = errors.New("parent folder not in document")
)

// ParseError describes a node dropped while parsing.
type ParseError struct {
	// Path locates the node, e.g. "Document/Folder[1]/Placemark[3]".
	Path string
	// Element is the element or discriminant name of the dropped node.
	Element string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Element, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Path, e.Element, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DuplicateIDError reports an identifier collision on insert or parse.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate identifier %q", e.ID)
}

// Is matches ErrDuplicateIdentifier.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateIdentifier
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

func unsupported(kind string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedVariant, kind)
}
