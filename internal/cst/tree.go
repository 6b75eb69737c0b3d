// Package cst is the concrete stand-in for "a generic syntax tree keyed by
// node kind with child accessors and source text lookups" that a real
// tree-sitter-driven parser would hand to the lowering pass (spec.md §6).
// The parser itself is out of this core's scope; this package only defines
// the contract internal/lower consumes, plus a builder so tests can
// construct trees without a grammar.
package cst

import "corec/internal/source"

// Kind is deliberately an open string, not a closed enum: the lowering pass
// must tolerate node kinds it has never seen (spec.md §4.1, §6) by emitting
// placeholder HIR rather than failing a type switch.
type Kind string

// Node kinds named in spec.md §6. Kinds outside this list are still legal
// input; lower.go falls back to a placeholder for anything it does not
// recognize.
const (
	KindFile            Kind = "file"
	KindFunctionItem     Kind = "function_item"
	KindStructItem       Kind = "struct_item"
	KindEnumItem         Kind = "enum_item"
	KindTraitItem        Kind = "trait_item"
	KindImplItem         Kind = "impl_item"
	KindExternBlock      Kind = "extern_block"
	KindUseDeclaration   Kind = "use_declaration"
	KindModuleItem       Kind = "module_item"
	KindParameter        Kind = "parameter"
	KindBlock            Kind = "block"
	KindLetStatement     Kind = "let_statement"
	KindReturnStatement  Kind = "return_statement"
	KindExprStatement    Kind = "expr_statement"

	// Expressions.
	KindLiteral       Kind = "literal"
	KindIdentifier    Kind = "identifier"
	KindBinary        Kind = "binary"
	KindUnary         Kind = "unary"
	KindCall          Kind = "call"
	KindMethodCall    Kind = "method_call"
	KindFieldAccess   Kind = "field_access"
	KindIndex         Kind = "index"
	KindReference     Kind = "reference"
	KindDereference   Kind = "dereference"
	KindIfExpression  Kind = "if_expression"
	KindMatchExpression Kind = "match_expression"
	KindClosureExpression Kind = "closure_expression"
	KindStructExpression  Kind = "struct_expression"
	KindTupleExpression   Kind = "tuple_expression"
	KindArrayExpression   Kind = "array_expression"

	// Patterns.
	KindPatLiteral    Kind = "pat_literal"
	KindPatWildcard   Kind = "pat_wildcard"
	KindPatIdentifier Kind = "pat_identifier"
	KindPatTuple      Kind = "pat_tuple"
	KindPatStruct     Kind = "pat_struct"
	KindPatEnum       Kind = "pat_enum"
	KindPatOr         Kind = "pat_or"
	KindPatRange      Kind = "pat_range"

	// Types.
	KindTypeNamed     Kind = "type_named"
	KindTypeTuple     Kind = "type_tuple"
	KindTypeReference Kind = "type_reference"
	KindTypeFunction  Kind = "type_function"
)

// Node is one node of the generic syntax tree: a kind tag, a source span,
// zero or more named children, and a source-text slice accessor. JSON tags
// let internal/driver's fixture loader decode a tree straight off disk
// without a separate DTO (a real tree-sitter binding would populate Span
// and Text itself; a JSON fixture typically leaves Span zeroed).
type Node struct {
	Kind     Kind              `json:"kind"`
	Span     source.Span       `json:"span,omitempty"`
	Children []Child           `json:"children,omitempty"`
	Text     string            `json:"text,omitempty"` // source_slice: the verbatim text this node spans
	Fields   map[string]string `json:"fields,omitempty"` // small scalar fields (operator, literal kind, ABI tag, ...)
}

// Child pairs a node with the grammar role it plays in its parent (e.g.
// "condition", "then", "else", "receiver", "args"). A parser may attach
// several children under the same role name (e.g. repeated "arg").
type Child struct {
	Role string `json:"role"`
	Node *Node  `json:"node"`
}

// ChildrenByRole returns every child attached under the given role, in
// source order.
func (n *Node) ChildrenByRole(role string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Role == role {
			out = append(out, c.Node)
		}
	}
	return out
}

// ChildByRole returns the first child under the given role, or nil.
func (n *Node) ChildByRole(role string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Role == role {
			return c.Node
		}
	}
	return nil
}

// Field reads a small scalar field attached to the node (e.g. the binary
// operator spelling, the ABI tag string).
func (n *Node) Field(name string) string {
	if n == nil || n.Fields == nil {
		return ""
	}
	return n.Fields[name]
}

// Builder assembles Node trees programmatically (used by tests; the
// driver's fixture loader in internal/driver/fixture.go decodes JSON
// instead).
type Builder struct{}

// Leaf builds a childless node.
func (Builder) Leaf(kind Kind, span source.Span, text string) *Node {
	return &Node{Kind: kind, Span: span, Text: text}
}

// Node builds a node with children, each tagged with its grammar role.
func (Builder) Node(kind Kind, span source.Span, text string, children ...Child) *Node {
	return &Node{Kind: kind, Span: span, Text: text, Children: children}
}

// WithField returns n with an additional scalar field set (used fluently
// when building fixtures).
func (n *Node) WithField(name, value string) *Node {
	if n.Fields == nil {
		n.Fields = make(map[string]string)
	}
	n.Fields[name] = value
	return n
}
