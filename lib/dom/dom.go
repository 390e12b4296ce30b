// Package dom holds the in-memory HTML tree helpers the widget renders into.
//
// Elements are *goquery.Selection values over golang.org/x/net/html nodes.
// Templates render to markup which ParseFragment turns back into a detached
// element ready to be appended somewhere in a document.
package dom

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoElement is returned when markup contains no element node.
var ErrNoElement = errors.New("dom: markup contains no element")

// ParseDocument parses a full HTML document.
func ParseDocument(markup string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(markup))
}

// ParseFragment parses markup in a body context and returns its first
// element, detached from any parent. Text and comments around the element
// are discarded.
func ParseFragment(markup string) (*goquery.Selection, error) {
	nodes, err := html.ParseFragment(strings.NewReader(strings.TrimSpace(markup)), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, err
	}

	for _, node := range nodes {
		if node.Type == html.ElementNode {
			node.Parent = nil
			node.PrevSibling = nil
			node.NextSibling = nil
			return goquery.NewDocumentFromNode(node).Selection, nil
		}
	}
	return nil, ErrNoElement
}

// RenderComponent renders c and parses the output with ParseFragment.
func RenderComponent(ctx context.Context, c templ.Component) (*goquery.Selection, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return ParseFragment(buf.String())
}

// OuterHTML renders the first node of sel including its own tag. An empty
// selection renders as "".
func OuterHTML(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	out, err := goquery.OuterHtml(sel)
	if err != nil {
		return ""
	}
	return out
}
