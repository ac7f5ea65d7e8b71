package doctree

import (
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Render сериализует поддерево в HTML. Корень документа сериализуется
// только содержимым, без обертки <body>.
func Render(w io.Writer, n *Node) error {
	if n.Kind == Root {
		for _, c := range n.children {
			if err := html.Render(w, toHTML(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, toHTML(n))
}

// RenderString возвращает HTML поддерева строкой.
func RenderString(n *Node) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func toHTML(n *Node) *html.Node {
	if n.Kind == Text {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}

	el := &html.Node{Type: html.ElementNode, Data: string(n.Kind)}

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: n.Attrs[k]})
	}
	if style := styleString(n.Styles); style != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: "style", Val: style})
	}

	for _, c := range n.children {
		el.AppendChild(toHTML(c))
	}
	return el
}
