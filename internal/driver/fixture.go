package driver

import (
	"encoding/json"
	"fmt"

	"corec/internal/cst"
)

// LoadFixture decodes one JSON-encoded generic syntax tree (spec.md §6)
// from content and returns its root node. A real tree-sitter-driven parser
// would hand internal/lower a *cst.Node directly; this core has no parser
// of its own, so `corec check` reads the tree as a JSON fixture instead —
// the same "stand-in for the parser's output" internal/cst's package doc
// describes.
func LoadFixture(content []byte) (*cst.Node, error) {
	var root cst.Node
	if err := json.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("decode syntax tree fixture: %w", err)
	}
	return &root, nil
}
