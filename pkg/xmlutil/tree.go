// Package xmlutil builds XML parse trees from encoding/xml tokens. The default
// TreeBuilder drops comments the way most tree parsers do; CommentedTreeBuilder
// keeps them as CommentNode children in document order so a document can be
// read, edited and written back without losing them.
package xmlutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node is one node of a parsed document. Name and Attr are set for elements;
// Data holds the content of text and comment nodes. Names keep the prefix
// used in the source document in Name.Space.
type Node struct {
	Type     NodeType
	Name     xml.Name
	Attr     []xml.Attr
	Data     string
	Children []*Node
	Parent   *Node
}

// Root returns the document element.
func (n *Node) Root() *Node {
	for _, c := range n.Children {
		if c.Type == ElementNode {
			return c
		}
	}
	return nil
}

// Elements returns the element children of n.
func (n *Node) Elements() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) appendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// Encode writes n and its descendants as XML.
func (n *Node) Encode(w io.Writer) error {
	var buf bytes.Buffer
	n.encode(&buf)
	_, err := w.Write(buf.Bytes())
	return err
}

func (n *Node) String() string {
	var buf bytes.Buffer
	n.encode(&buf)
	return buf.String()
}

func (n *Node) encode(buf *bytes.Buffer) {
	switch n.Type {
	case DocumentNode:
		for _, c := range n.Children {
			c.encode(buf)
		}
	case TextNode:
		buf.WriteString(textEscaper.Replace(n.Data))
	case CommentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.Data)
		buf.WriteString("-->")
	case ElementNode:
		buf.WriteByte('<')
		buf.WriteString(qualifiedName(n.Name))
		for _, a := range n.Attr {
			buf.WriteByte(' ')
			buf.WriteString(qualifiedName(a.Name))
			buf.WriteString(`="`)
			buf.WriteString(attrEscaper.Replace(a.Value))
			buf.WriteByte('"')
		}
		if len(n.Children) == 0 {
			buf.WriteString("/>")
			return
		}
		buf.WriteByte('>')
		for _, c := range n.Children {
			c.encode(buf)
		}
		buf.WriteString("</")
		buf.WriteString(qualifiedName(n.Name))
		buf.WriteByte('>')
	}
}
