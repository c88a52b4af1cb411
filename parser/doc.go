// Package parser turns Docsy source into a lossless syntax tree.
//
// # Syntax
//
// A document is markup: text, whitespace, comments, injected expressions
// and elements.
//
//	<|Card title='Hi'>          element, closed by </> or <Card/>
//	  Some text {user.name}
//	</>
//	</Icon name="star"/>        self-closing element
//	<h1>A heading               line element, ends at the newline
//	<#Code>raw <b>text</b><#/>   raw element, content is not parsed
//	<|>...</>                    fragment
//	<#>...<#/>                   raw fragment
//
// Attribute values and injects hold expressions: numbers, strings in single,
// double or backtick quotes, true, false, null, undefined, arrays, objects,
// identifiers, member access, computed member access, calls and
// parentheses. Elements are expressions too.
//
// # Entry Points
//
//	func ParseDocument(source, filename string, opts ...Option) (*ast.File, error)
//	func ParseExpression(source, filename string, opts ...Option) (*ast.File, error)
//
// The returned file owns the range table for every node in the tree. On
// failure the error is a *ParsingError describing the furthest point the
// grammar reached; a named close tag that does not match its opening tag is
// reported at the close tag.
//
// Parsing is synchronous and keeps no state between calls, so independent
// documents may be parsed concurrently.
package parser
