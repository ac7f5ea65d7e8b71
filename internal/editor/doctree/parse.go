// Парсинг HTML в дерево документа и сериализация дерева обратно в HTML.
package doctree

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Семантические синонимы приводятся к каноническому виду ноды.
var tagAliases = map[string]Kind{
	"strong": Bold,
	"em":     Italic,
	"strike": Strike,
	"del":    Strike,
	"ins":    Underline,
}

var knownTags = func() map[string]Kind {
	m := map[string]Kind{}
	for _, k := range []Kind{
		Paragraph, Heading1, Heading2, Heading3, Heading4, Heading5, Heading6,
		BulletList, NumberList, ListItem, Blockquote,
		Table, TableRow, TableCell, TableHead, Pre, Rule, Div,
		LineBreak, Bold, Italic, Underline, Strike, Subscript, Superscript,
		Span, Anchor, Image, Video,
	} {
		m[string(k)] = k
	}
	for tag, k := range tagAliases {
		m[tag] = k
	}
	return m
}()

// Parse читает HTML и строит корень документа из содержимого body.
func Parse(r io.Reader) (*Node, error) {
	rootNode, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	root := NewNode(Root)
	body := findElementByTagName(rootNode, "body")
	if body == nil {
		return root, nil
	}
	for el := body.FirstChild; el != nil; el = el.NextSibling {
		appendConverted(root, el)
	}
	return root, nil
}

// ParseFragment парсит HTML-фрагмент (контекст body) в список нод.
func ParseFragment(fragment string) ([]*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}

	holder := NewNode(Root)
	for _, el := range parsed {
		appendConverted(holder, el)
	}
	nodes := make([]*Node, len(holder.children))
	copy(nodes, holder.children)
	for _, n := range nodes {
		n.Detach()
	}
	return nodes, nil
}

// appendConverted конвертирует HTML-ноду и добавляет результат к parent.
// Неизвестные элементы не сохраняются: их дети поднимаются на место родителя.
func appendConverted(parent *Node, el *html.Node) {
	switch el.Type {
	case html.TextNode:
		if strings.TrimSpace(el.Data) == "" {
			return
		}
		parent.AppendChild(NewText(el.Data))
		return
	case html.ElementNode:
	default:
		return
	}

	kind, ok := knownTags[el.Data]
	if !ok {
		for c := el.FirstChild; c != nil; c = c.NextSibling {
			appendConverted(parent, c)
		}
		return
	}

	n := NewNode(kind)
	for _, attr := range el.Attr {
		if attr.Key == "style" {
			for _, style := range parseStyles(strings.Split(attr.Val, ";")) {
				if style.Key == "" || style.Val == "inherit" {
					continue
				}
				n.SetStyle(style.Key, style.Val)
			}
			continue
		}
		n.SetAttr(attr.Key, attr.Val)
	}

	for c := el.FirstChild; c != nil; c = c.NextSibling {
		appendConverted(n, c)
	}
	parent.AppendChild(n)
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func parseStyles(rawStyles []string) []html.Attribute {
	res := make([]html.Attribute, 0, len(rawStyles))
	for _, styleRaw := range rawStyles {
		arr := strings.SplitN(styleRaw, ":", 2)
		if len(arr) < 2 {
			continue
		}
		res = append(res, html.Attribute{
			Key: strings.TrimSpace(arr[0]),
			Val: strings.TrimSpace(arr[1]),
		})
	}
	return res
}
