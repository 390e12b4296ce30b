// Package attreval binds marked-up elements to data through expression
// attributes.
//
// An element opts into a binding context with the context marker attribute
// and carries one attribute per action it wants applied:
//
//	<span data-context="feed" data-content="resultsCount + ' results'"></span>
//	<img data-context="streamEntry" data-src="preview.medium">
//
// Run evaluates each such attribute with the expr package against the
// context's data object and hands the result to the action registered for
// the attribute name.
package attreval

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/pthm/hxfeed/lib/expr"
	"github.com/pthm/hxfeed/lib/interpolate"
	"github.com/pthm/hxfeed/lib/metrics"
)

// ErrUnknownContext is logged when Run names a context that was never added.
var ErrUnknownContext = errors.New("attreval: unknown context")

// ContextAttr is the attribute naming the binding context of an element.
const ContextAttr = "data-context"

// Default action attribute names.
const (
	AttrContent     = "data-content"
	AttrSrc         = "data-src"
	AttrHTML        = "data-html"
	AttrHref        = "data-href"
	AttrPlaceholder = "data-placeholder"
)

// Action applies an evaluated value to an element. v is expr.Undefined when
// evaluation failed.
type Action func(el *goquery.Selection, v any)

// Context is a named binding scope.
type Context struct {
	Base          *goquery.Selection
	Data          any
	DisabledAttrs []string
}

// ContextOptions configures AddContext.
type ContextOptions struct {
	// Base is the subtree scanned by default.
	Base *goquery.Selection
	// Data is the object expressions are evaluated against by default.
	Data any
	// DisabledAttrs lists action attribute names skipped for this context.
	DisabledAttrs []string
}

// RunOptions overrides a context's defaults for one Run.
type RunOptions struct {
	Base   *goquery.Selection
	Data   any
	Locals map[string]any
}

// Evaluator holds binding contexts and the actions applied to bound elements.
//
// Evaluator is safe for concurrent use as long as the trees handed to Run are
// not shared between goroutines.
type Evaluator struct {
	mu          sync.RWMutex
	contexts    map[string]*Context
	actionNames []string
	actions     map[string]Action
	document    *goquery.Selection
	globals     any
	pattern     *regexp.Regexp
	logger      *log.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithDocument sets the subtree scanned when neither Run nor the context
// supplies a base.
func WithDocument(doc *goquery.Selection) Option {
	return func(e *Evaluator) {
		e.document = doc
	}
}

// WithGlobals sets the object searched last when resolving identifiers and
// used as data when neither Run nor the context supplies one.
func WithGlobals(globals any) Option {
	return func(e *Evaluator) {
		e.globals = globals
	}
}

// WithInterpolate overrides the placeholder pattern applied to attribute
// values before evaluation.
func WithInterpolate(pattern *regexp.Regexp) Option {
	return func(e *Evaluator) {
		e.pattern = pattern
	}
}

// WithLogger sets the logger for evaluation diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New creates an Evaluator with the default content, src, html, href and
// placeholder actions.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		contexts: make(map[string]*Context),
		actions:  make(map[string]Action),
		globals:  map[string]any{},
		pattern:  interpolate.DefaultPattern,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.AddAction(AttrContent, SetText)
	e.AddAction(AttrSrc, SetAttr("src"))
	e.AddAction(AttrHTML, SetHTML)
	e.AddAction(AttrHref, SetAttr("href"))
	e.AddAction(AttrPlaceholder, SetAttr("placeholder"))
	return e
}

// AddContext registers name, replacing any previous registration.
func (e *Evaluator) AddContext(name string, opts ContextOptions) *Evaluator {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contexts[name] = &Context{
		Base:          opts.Base,
		Data:          opts.Data,
		DisabledAttrs: opts.DisabledAttrs,
	}
	return e
}

// AddAction registers fn for attrName. Replacing an action keeps its place in
// the evaluation order.
func (e *Evaluator) AddAction(attrName string, fn Action) *Evaluator {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.actions[attrName]; !exists {
		e.actionNames = append(e.actionNames, attrName)
	}
	e.actions[attrName] = fn
	return e
}

// HasContext reports whether name is registered.
func (e *Evaluator) HasContext(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.contexts[name]
	return ok
}

// Context returns the registration for name.
func (e *Evaluator) Context(name string) (*Context, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.contexts[name]
	return c, ok
}

// Contexts returns the registered context names, sorted.
func (e *Evaluator) Contexts() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.contexts))
	for name := range e.contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Actions returns the action attribute names in evaluation order.
func (e *Evaluator) Actions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.actionNames)
}

// Run binds every descendant of the base carrying data-context=name. For
// each such element, in document order, each registered action not disabled
// for the context is applied when the element has its attribute.
//
// Running an unknown context logs a warning and does nothing.
func (e *Evaluator) Run(name string, opts RunOptions) {
	e.mu.RLock()
	ctx, ok := e.contexts[name]
	names := slices.Clone(e.actionNames)
	actions := make([]Action, len(names))
	for i, n := range names {
		actions[i] = e.actions[n]
	}
	e.mu.RUnlock()

	if !ok {
		e.logger.Warn("context does not exist", "context", name, "err", ErrUnknownContext)
		return
	}

	base := opts.Base
	if base == nil {
		base = ctx.Base
	}
	if base == nil {
		base = e.document
	}
	if base == nil {
		e.logger.Warn("no base element to bind", "context", name)
		return
	}

	data := opts.Data
	if data == nil {
		data = ctx.Data
	}
	if data == nil {
		data = e.globals
	}

	var locals any
	if opts.Locals != nil {
		locals = opts.Locals
	}

	selector := fmt.Sprintf(`[%s=%q]`, ContextAttr, name)
	base.Find(selector).Each(func(_ int, el *goquery.Selection) {
		for i, attrName := range names {
			if slices.Contains(ctx.DisabledAttrs, attrName) {
				continue
			}
			if _, has := el.Attr(attrName); has {
				e.execute(name, attrName, actions[i], el, data, locals, opts.Locals)
			}
		}
	})
}

// execute evaluates one attribute and always applies its action, passing
// expr.Undefined when evaluation fails.
func (e *Evaluator) execute(contextName, attrName string, action Action, el *goquery.Selection, data, locals any, values map[string]any) {
	var result any = expr.Undefined
	defer func() {
		action(el, result)
	}()

	raw, _ := el.Attr(attrName)
	src := interpolate.Supplant(raw, values, e.pattern)

	v, err := expr.Eval(src, expr.Scope{This: data, Locals: locals, Globals: e.globals})
	if err != nil {
		metrics.EvaluationErrors.WithLabelValues(contextName).Inc()
		e.logger.Error("attribute evaluation failed", "context", contextName, "attr", attrName, "expr", src, "err", err)
		return
	}
	result = v
}
