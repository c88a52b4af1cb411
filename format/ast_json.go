package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/docsy/ast"
)

type ASTJSONEncoder struct {
	w    io.Writer
	file *ast.File
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(file *ast.File) error {
	e.file = file
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText() ([]byte, error) {
	if e.file == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(NodeToJSON(e.file, e.file.Root), "", "  ")
}

// ASTJSONNode is the JSON shape of a node.
type ASTJSONNode struct {
	Kind     string         `json:"kind"`
	Span     *ASTJSONSpan   `json:"span,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	Children []*ASTJSONNode `json:"children,omitempty"`
}

type ASTJSONSpan struct {
	Start ASTJSONPosition `json:"start"`
	End   ASTJSONPosition `json:"end"`
}

type ASTJSONPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

// NodeToJSON converts the tree rooted at n. Spans are included when file
// knows the node's range.
func NodeToJSON(file *ast.File, n ast.Node) *ASTJSONNode {
	jn := &ASTJSONNode{
		Kind: n.Kind().String(),
		Meta: ast.Meta(n),
	}

	if file != nil {
		if r, ok := file.Range(n); ok {
			start := file.Position(r.Start)
			end := file.Position(r.End)
			jn.Span = &ASTJSONSpan{
				Start: ASTJSONPosition{Offset: start.Offset, Line: start.Line, Column: start.Column},
				End:   ASTJSONPosition{Offset: end.Offset, Line: end.Line, Column: end.Column},
			}
		}
	}

	children := ast.Children(n)
	if len(children) > 0 {
		jn.Children = make([]*ASTJSONNode, len(children))
		for i, child := range children {
			jn.Children[i] = NodeToJSON(file, child)
		}
	}

	return jn
}
