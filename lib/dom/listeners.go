package dom

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Handler reacts to an event triggered on target.
type Handler func(target *goquery.Selection)

// Listeners maps element nodes to event handlers. The tree itself has no
// event model, so interaction is expressed by triggering named events on a
// selection.
type Listeners struct {
	mu       sync.Mutex
	handlers map[*html.Node]map[string][]Handler
}

// NewListeners creates an empty listener table.
func NewListeners() *Listeners {
	return &Listeners{handlers: make(map[*html.Node]map[string][]Handler)}
}

// On binds fn to the event typ on every node of sel.
func (l *Listeners) On(sel *goquery.Selection, typ string, fn Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, node := range sel.Nodes {
		byType, ok := l.handlers[node]
		if !ok {
			byType = make(map[string][]Handler)
			l.handlers[node] = byType
		}
		byType[typ] = append(byType[typ], fn)
	}
}

// Trigger runs the handlers bound to typ on each node of sel, in binding
// order, and returns how many ran. Handlers run without the table locked so
// they may bind further listeners.
func (l *Listeners) Trigger(sel *goquery.Selection, typ string) int {
	type call struct {
		fn     Handler
		target *goquery.Selection
	}

	l.mu.Lock()
	var calls []call
	sel.Each(func(_ int, s *goquery.Selection) {
		for _, fn := range l.handlers[s.Get(0)][typ] {
			calls = append(calls, call{fn: fn, target: s})
		}
	})
	l.mu.Unlock()

	for _, c := range calls {
		c.fn(c.target)
	}
	return len(calls)
}

// Count returns the number of handlers bound to typ on the first node of sel.
func (l *Listeners) Count(sel *goquery.Selection, typ string) int {
	if sel.Length() == 0 {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.handlers[sel.Get(0)][typ])
}
