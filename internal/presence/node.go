package presence

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one element of a presence attribute tree.
//
// The transport hands stanzas over in this shape: tag name, attributes, the
// concatenated direct text content and the child elements in document order.
type Node struct {
	Tag      string            `json:"tagName" yaml:"tag"`
	Space    string            `json:"xmlns,omitempty" yaml:"xmlns,omitempty"`
	Attrs    map[string]string `json:"attributes,omitempty" yaml:"attrs,omitempty"`
	Value    string            `json:"value,omitempty" yaml:"value,omitempty"`
	Children []Node            `json:"children,omitempty" yaml:"children,omitempty"`
}

// Attr returns the named attribute, or "" when absent.
func (n Node) Attr(name string) string {
	if n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Child returns the first direct child with the given tag.
func (n Node) Child(tag string) (Node, bool) {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c, true
		}
	}
	return Node{}, false
}

// Walk visits every node below root in pre-order (document order), root
// excluded. Returning false from fn prunes that node's subtree.
//
// Uses an explicit stack so pathological nesting cannot exhaust the
// goroutine stack.
func Walk(root Node, fn func(n Node, depth int) bool) {
	type frame struct {
		node  Node
		depth int
	}
	stack := make([]frame, 0, len(root.Children))
	for i := len(root.Children) - 1; i >= 0; i-- {
		stack = append(stack, frame{root.Children[i], 1})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(top.node, top.depth) {
			continue
		}
		for i := len(top.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{top.node.Children[i], top.depth + 1})
		}
	}
}

// Flatten lists every node below root in document order.
func Flatten(root Node) []Node {
	var out []Node
	Walk(root, func(n Node, _ int) bool {
		out = append(out, n)
		return true
	})
	return out
}

// ParseXML builds a Node tree from a raw stanza.
//
// Tag and attribute names lose their namespace prefix; the element's own
// namespace is kept in Space. Text is the trimmed concatenation of the
// element's direct character data.
func ParseXML(data []byte) (Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		stack []*Node
		text  []*strings.Builder
		root  *Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Node{}, fmt.Errorf("parse stanza: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Tag: t.Name.Local, Space: t.Name.Space}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				if n.Attrs == nil {
					n.Attrs = make(map[string]string, len(t.Attr))
				}
				n.Attrs[a.Name.Local] = a.Value
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			n := stack[len(stack)-1]
			n.Value = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
			if len(stack) == 0 {
				root = n
				continue
			}
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, *n)
		}
	}

	if root == nil {
		return Node{}, fmt.Errorf("parse stanza: no root element")
	}
	return *root, nil
}

// TierNode builds the userType element a client re-announces after its
// tier has been changed remotely.
func TierNode(tier string) Node {
	return Node{
		Tag:   "userType",
		Space: NSUserType,
		Value: tier,
	}
}
