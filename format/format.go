package format

import (
	"encoding"

	"github.com/dhamidi/docsy/ast"
)

// Encoder writes a parsed file in some presentation format.
type Encoder interface {
	encoding.TextMarshaler
	Encode(file *ast.File) error
}

var (
	_ Encoder = (*ASTJSONEncoder)(nil)
	_ Encoder = (*LineEncoder)(nil)
	_ Encoder = (*TableEncoder)(nil)
)
