package shape

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/antchfx/xmlquery"
)

// XMLOutline is the element hierarchy of an XML object. Repeated sibling
// elements are folded into one node with a count.
type XMLOutline struct {
	Root     *XMLNode `json:"root"`
	Elements int      `json:"elements"`
}

// XMLNode is one element name at one position in the hierarchy.
type XMLNode struct {
	Name       string     `json:"name"`
	Count      int        `json:"count"`
	Attributes []string   `json:"attributes,omitempty"`
	HasText    bool       `json:"has_text,omitempty"`
	Children   []*XMLNode `json:"children,omitempty"`
	Truncated  bool       `json:"truncated,omitempty"` // children below the depth limit were not walked
}

func inspectXML(body []byte, maxDepth int) (*XMLOutline, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	var root *xmlquery.Node
	for n := doc.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == xmlquery.ElementNode {
			root = n
			break
		}
	}
	if root == nil {
		return nil, fmt.Errorf("parse XML: no root element")
	}

	out := &XMLOutline{}
	out.Root = foldElements([]*xmlquery.Node{root}, 1, maxDepth, &out.Elements)
	return out, nil
}

// foldElements merges same-named elements into a single node and walks
// the union of their children.
func foldElements(nodes []*xmlquery.Node, depth, maxDepth int, total *int) *XMLNode {
	node := &XMLNode{Name: nodes[0].Data, Count: len(nodes)}
	*total += len(nodes)

	attrs := make(map[string]bool)
	var order []string
	groups := make(map[string][]*xmlquery.Node)
	for _, n := range nodes {
		for _, a := range n.Attr {
			name := a.Name.Local
			if a.Name.Space != "" {
				name = a.Name.Space + ":" + name
			}
			attrs[name] = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.ElementNode:
				if _, ok := groups[c.Data]; !ok {
					order = append(order, c.Data)
				}
				groups[c.Data] = append(groups[c.Data], c)
			case xmlquery.TextNode, xmlquery.CharDataNode:
				if len(bytes.TrimSpace([]byte(c.Data))) > 0 {
					node.HasText = true
				}
			}
		}
	}
	for a := range attrs {
		node.Attributes = append(node.Attributes, a)
	}
	sort.Strings(node.Attributes)

	if len(order) == 0 {
		return node
	}
	if maxDepth > 0 && depth >= maxDepth {
		node.Truncated = true
		return node
	}
	for _, name := range order {
		node.Children = append(node.Children, foldElements(groups[name], depth+1, maxDepth, total))
	}
	return node
}
