package hxfeed

import "github.com/PuerkitoBio/goquery"

// ClickEvent is the listener type the pager transform binds.
const ClickEvent = "click"

// DefaultTransforms returns the built-in transforms keyed by template name.
func DefaultTransforms() map[string]Transform {
	return map[string]Transform{
		TemplateEntry: IdentityTransform,
		TemplateFeed:  IdentityTransform,
		TemplatePager: PagerTransform,
	}
}

// IdentityTransform returns el unchanged.
func IdentityTransform(_ *Loader, el *goquery.Selection) *goquery.Selection {
	return el
}

// PagerTransform makes the next and previous controls advance the loader
// by one page when clicked.
func PagerTransform(l *Loader, el *goquery.Selection) *goquery.Selection {
	l.Listeners().On(el.Find("."+ClassPagerNext), ClickEvent, func(*goquery.Selection) {
		l.Advance(1)
	})
	l.Listeners().On(el.Find("."+ClassPagerPrev), ClickEvent, func(*goquery.Selection) {
		l.Advance(-1)
	})
	return el
}

func mergeTransforms(overrides map[string]Transform) map[string]Transform {
	merged := DefaultTransforms()
	for name, tr := range overrides {
		if tr == nil {
			tr = IdentityTransform
		}
		merged[name] = tr
	}
	return merged
}
