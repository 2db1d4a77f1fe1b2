package document

import (
	"errors"
	"strings"
)

// ErrStaleSlot is returned by Replace when the slot no longer points at the
// node it was collected for.
var ErrStaleSlot = errors.New("document: slot does not match tree")

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Slot locates a node by its parent and index.
type Slot struct {
	Parent *Node
	Index  int
}

// Node returns the node currently stored in the slot.
func (s Slot) Node() *Node {
	if s.Parent == nil || s.Index < 0 || s.Index >= len(s.Parent.Children) {
		return nil
	}
	return s.Parent.Children[s.Index]
}

// FindPlaceholders returns every diagram placeholder under root in pre-order.
func FindPlaceholders(root *Node) []Slot {
	var out []Slot
	var visit func(*Node)
	visit = func(parent *Node) {
		for i, c := range parent.Children {
			if c.Kind == KindDiagramPlaceholder {
				out = append(out, Slot{Parent: parent, Index: i})
				continue
			}
			visit(c)
		}
	}
	if root != nil {
		visit(root)
	}
	return out
}

// Replace swaps the node in slot for repl. want must be the node the slot was
// collected for; the replacement is a single assignment so a tree is never
// observed half-spliced.
func Replace(s Slot, want, repl *Node) error {
	if s.Node() != want || want == nil {
		return ErrStaleSlot
	}
	s.Parent.Children[s.Index] = repl
	return nil
}

// FlattenText returns the text content of n. Inline runs are concatenated;
// block children are separated by newlines.
func FlattenText(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case KindText:
		return n.Text
	case KindCodeBlock:
		return n.Text
	case KindImage:
		return n.Alt
	case KindDiagramPlaceholder, KindDiagramFallback:
		if n.Diagram != nil {
			return n.Diagram.Raw
		}
		return ""
	case KindDiagramArtifact:
		return ""
	}

	var b strings.Builder
	prevBlock := false
	for i, c := range n.Children {
		t := FlattenText(c)
		block := c.Kind.IsBlock()
		if i > 0 && (block || prevBlock) {
			b.WriteByte('\n')
		}
		b.WriteString(t)
		prevBlock = block
	}
	return b.String()
}

// Clone returns a deep copy of n.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := *n
	if n.Diagram != nil {
		d := *n.Diagram
		cp.Diagram = &d
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = Clone(c)
		}
	}
	return &cp
}
