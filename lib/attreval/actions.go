package attreval

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/pthm/hxfeed/lib/expr"
)

// SetText replaces the element's children with the value as text.
func SetText(el *goquery.Selection, v any) {
	el.SetText(expr.ToString(v))
}

// SetHTML replaces the element's children with the value parsed as markup.
func SetHTML(el *goquery.Selection, v any) {
	el.SetHtml(expr.ToString(v))
}

// SetAttr returns an action that stores the value in the named attribute.
func SetAttr(name string) Action {
	return func(el *goquery.Selection, v any) {
		el.SetAttr(name, expr.ToString(v))
	}
}
