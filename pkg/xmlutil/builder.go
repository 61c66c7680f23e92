package xmlutil

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Builder receives parse events from Parse and assembles a tree.
type Builder interface {
	Start(el xml.StartElement) error
	End(el xml.EndElement) error
	Data(data []byte) error
	Comment(data []byte)
	Close() (*Node, error)
}

const xmlWhitespace = " \t\r\n"

// TreeBuilder is the default Builder. Comments are dropped. The zero value is
// ready to use.
type TreeBuilder struct {
	doc   *Node
	stack []*Node
}

func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{}
}

func (b *TreeBuilder) current() *Node {
	if len(b.stack) > 0 {
		return b.stack[len(b.stack)-1]
	}
	if b.doc == nil {
		b.doc = &Node{Type: DocumentNode}
	}
	return b.doc
}

// Start opens an element. A document has exactly one document element.
func (b *TreeBuilder) Start(el xml.StartElement) error {
	if len(b.stack) == 0 {
		if root := b.current().Root(); root != nil {
			return fmt.Errorf("junk after document element: <%s> follows </%s>",
				qualifiedName(el.Name), qualifiedName(root.Name))
		}
	}
	n := &Node{
		Type: ElementNode,
		Name: el.Name,
		Attr: append([]xml.Attr(nil), el.Attr...),
	}
	b.current().appendChild(n)
	b.stack = append(b.stack, n)
	return nil
}

func (b *TreeBuilder) End(el xml.EndElement) error {
	if len(b.stack) == 0 {
		return fmt.Errorf("unexpected end element </%s>", qualifiedName(el.Name))
	}
	top := b.stack[len(b.stack)-1]
	if top.Name != el.Name {
		return fmt.Errorf("element <%s> closed by </%s>", qualifiedName(top.Name), qualifiedName(el.Name))
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

// Data appends character data to the open element. Outside the document
// element only whitespace is allowed, and it is not kept.
func (b *TreeBuilder) Data(data []byte) error {
	if len(b.stack) == 0 {
		if len(bytes.Trim(data, xmlWhitespace)) > 0 {
			return fmt.Errorf("character data %q outside the document element", data)
		}
		return nil
	}
	cur := b.current()
	if last := len(cur.Children) - 1; last >= 0 && cur.Children[last].Type == TextNode {
		cur.Children[last].Data += string(data)
		return nil
	}
	cur.appendChild(&Node{Type: TextNode, Data: string(data)})
	return nil
}

func (b *TreeBuilder) Comment([]byte) {}

func (b *TreeBuilder) Close() (*Node, error) {
	if len(b.stack) > 0 {
		return nil, fmt.Errorf("unclosed element <%s>", qualifiedName(b.stack[len(b.stack)-1].Name))
	}
	doc := b.current()
	if doc.Root() == nil {
		return nil, errors.New("no document element")
	}
	return doc, nil
}

// CommentedTreeBuilder is a TreeBuilder that keeps comments.
type CommentedTreeBuilder struct {
	TreeBuilder
}

func NewCommentedTreeBuilder() *CommentedTreeBuilder {
	return &CommentedTreeBuilder{}
}

func (b *CommentedTreeBuilder) Comment(data []byte) {
	b.current().appendChild(&Node{Type: CommentNode, Data: string(data)})
}

// Parse reads an XML document from r and feeds it to b. A nil b uses a
// TreeBuilder. Namespace prefixes are kept as written.
func Parse(r io.Reader, b Builder) (*Node, error) {
	if b == nil {
		b = NewTreeBuilder()
	}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xmlutil: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if err := b.Start(t); err != nil {
				return nil, fmt.Errorf("xmlutil: %w", err)
			}
		case xml.EndElement:
			if err := b.End(t); err != nil {
				return nil, fmt.Errorf("xmlutil: %w", err)
			}
		case xml.CharData:
			if err := b.Data(t); err != nil {
				return nil, fmt.Errorf("xmlutil: %w", err)
			}
		case xml.Comment:
			b.Comment(t)
		}
	}

	doc, err := b.Close()
	if err != nil {
		return nil, fmt.Errorf("xmlutil: %w", err)
	}
	return doc, nil
}

// ParseString is Parse over a string.
func ParseString(s string, b Builder) (*Node, error) {
	return Parse(strings.NewReader(s), b)
}
