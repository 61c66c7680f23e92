package xmlutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_Comments(t *testing.T) {
	const src = `<a><!--c--><b/></a>`

	t.Run("default builder drops comments", func(t *testing.T) {
		doc, err := ParseString(src, nil)
		require.NoError(t, err)

		a := doc.Root()
		require.Equal(t, "a", a.Name.Local)
		require.Len(t, a.Children, 1)
		require.Equal(t, ElementNode, a.Children[0].Type)
		require.Equal(t, "b", a.Children[0].Name.Local)
		require.Equal(t, `<a><b/></a>`, doc.String())
	})

	t.Run("commented builder keeps them in order", func(t *testing.T) {
		doc, err := ParseString(src, NewCommentedTreeBuilder())
		require.NoError(t, err)

		a := doc.Root()
		require.Len(t, a.Children, 2)
		require.Equal(t, CommentNode, a.Children[0].Type)
		require.Equal(t, "c", a.Children[0].Data)
		require.Same(t, a, a.Children[0].Parent)
		require.Equal(t, ElementNode, a.Children[1].Type)
		require.Equal(t, "b", a.Children[1].Name.Local)
		require.Equal(t, src, doc.String())
	})

	t.Run("comments outside the document element", func(t *testing.T) {
		doc, err := ParseString("<?xml version=\"1.0\"?>\n<!--head--><a/><!--tail-->\n", NewCommentedTreeBuilder())
		require.NoError(t, err)
		require.Len(t, doc.Children, 3)
		require.Equal(t, []NodeType{CommentNode, ElementNode, CommentNode},
			[]NodeType{doc.Children[0].Type, doc.Children[1].Type, doc.Children[2].Type})
		require.Equal(t, "<!--head--><a/><!--tail-->", doc.String())
	})
}

func TestParse_RoundTrip(t *testing.T) {
	const src = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ep="urn:enterprise.soap.sforce.com">` +
		`<soapenv:Body><!-- generated --><ep:describeSObject>` +
		`<ep:sObjectType a="x &amp; &quot;y&quot;">Acme &amp; Co &lt;3</ep:sObjectType>` +
		`</ep:describeSObject></soapenv:Body></soapenv:Envelope>`

	doc, err := ParseString(src, NewCommentedTreeBuilder())
	require.NoError(t, err)

	root := doc.Root()
	require.Equal(t, "soapenv", root.Name.Space)
	require.Equal(t, "Envelope", root.Name.Local)

	body := root.Elements()[0]
	require.Equal(t, CommentNode, body.Children[0].Type)
	require.Equal(t, " generated ", body.Children[0].Data)

	sObjectType := body.Elements()[0].Elements()[0]
	require.Equal(t, "Acme & Co <3", sObjectType.Children[0].Data)
	require.Equal(t, `x & "y"`, sObjectType.Attr[0].Value)

	var buf bytes.Buffer
	require.NoError(t, doc.Encode(&buf))
	require.Equal(t, src, buf.String())
}

func TestParse_TextMerging(t *testing.T) {
	doc, err := ParseString(`<a>one<![CDATA[ two]]> three</a>`, nil)
	require.NoError(t, err)

	a := doc.Root()
	require.Len(t, a.Children, 1)
	require.Equal(t, TextNode, a.Children[0].Type)
	require.Equal(t, "one two three", a.Children[0].Data)
}

func TestParse_Errors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":          "",
		"only a comment": "<!--c-->",
		"unclosed":       "<a><b></b>",
		"mismatched":     "<a></b>",
		"stray end":      "</a>",
		"syntax":         "<a <b/>",
		"two roots":      "<a/><b/>",
		"trailing text":  "<a/>junk",
		"leading text":   "junk<a/>",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseString(src, NewCommentedTreeBuilder())
			require.Error(t, err)
		})
	}
}

func TestParse_WhitespaceAroundRoot(t *testing.T) {
	doc, err := ParseString("\n\t<a>x</a>\r\n ", nil)
	require.NoError(t, err)
	require.Len(t, doc.Children, 1)
	require.Equal(t, "<a>x</a>", doc.String())

	_, err = ParseString("<a/>junk", nil)
	require.ErrorContains(t, err, "outside the document element")

	_, err = ParseString("<a/><!--c--><b/>", NewCommentedTreeBuilder())
	require.ErrorContains(t, err, "junk after document element")
}

func TestNodeType_String(t *testing.T) {
	require.Equal(t, "comment", CommentNode.String())
	require.Equal(t, "NodeType(9)", NodeType(9).String())
}
