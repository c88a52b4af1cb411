package resolve

import (
	"fmt"

	"github.com/dhamidi/docsy/ast"
)

// MissingGlobalError is returned when an identifier names no global.
type MissingGlobalError struct {
	*ast.FileError
	Name string
}

func (e *MissingGlobalError) Unwrap() error { return e.FileError }

// CannotResolveNodeError is returned for nodes that have no value, or whose
// operands have the wrong type.
type CannotResolveNodeError struct {
	*ast.FileError
}

func (e *CannotResolveNodeError) Unwrap() error { return e.FileError }

// CannotResolveInjectError is returned when an inject does not produce a
// string.
type CannotResolveInjectError struct {
	*ast.FileError
	Value any
}

func (e *CannotResolveInjectError) Unwrap() error { return e.FileError }

// MissingJsxFunctionError is returned when the document contains elements
// but no element constructor was configured.
type MissingJsxFunctionError struct {
	*ast.FileError
}

func (e *MissingJsxFunctionError) Unwrap() error { return e.FileError }

func (r *resolver) fileError(n ast.Node, format string, args ...any) *ast.FileError {
	return &ast.FileError{File: r.file, Node: n, Message: fmt.Sprintf(format, args...)}
}

func (r *resolver) missingGlobal(id *ast.Identifier) error {
	return &MissingGlobalError{FileError: r.fileError(id, "Missing global %s", id.Name), Name: id.Name}
}

func (r *resolver) cannotResolve(n ast.Node, format string, args ...any) error {
	return &CannotResolveNodeError{r.fileError(n, format, args...)}
}
