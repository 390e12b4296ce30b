package hxfeed

import (
	"math"
	"reflect"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/pthm/hxfeed/lib/attreval"
	"github.com/pthm/hxfeed/lib/expr"
	"github.com/pthm/hxfeed/lib/interpolate"
)

// DefaultEntriesPerPage is the page size used without WithEntriesPerPage.
const DefaultEntriesPerPage = 5

// MaxResultsCount caps the result count a response can report.
const MaxResultsCount = math.MaxInt32

// Option configures a Loader.
type Option func(*options)

type options struct {
	jsonpCallback     string
	entriesPerPage    int
	pattern           *regexp.Regexp
	extractEntries    func(data any) any
	extractNumResults func(data any) int
	defaultQuery      string
	rawQuery          bool
	templates         map[string]Template
	transforms        map[string]Transform
	content           map[string]any
	registry          *Registry
	fetcher           Fetcher
	scripts           ScriptLoader
	evaluator         *attreval.Evaluator
	logger            *log.Logger
}

func defaultOptions() options {
	return options{
		entriesPerPage:    DefaultEntriesPerPage,
		pattern:           interpolate.DefaultPattern,
		extractEntries:    func(data any) any { return data },
		extractNumResults: sequenceLength,
	}
}

// WithJSONPCallback switches the loader to JSONP. name is the query
// parameter the API reads the callback name from, commonly "callback".
func WithJSONPCallback(name string) Option {
	return func(o *options) {
		o.jsonpCallback = name
	}
}

// WithEntriesPerPage sets the page size. Values below 1 are ignored.
func WithEntriesPerPage(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.entriesPerPage = n
		}
	}
}

// WithInterpolate overrides the placeholder pattern used on the URL
// template and on attribute values. The first capture group names the value.
func WithInterpolate(pattern *regexp.Regexp) Option {
	return func(o *options) {
		if pattern != nil {
			o.pattern = pattern
		}
	}
}

// WithExtractEntries sets how the list of entries is read from a response.
// The default uses the response itself.
func WithExtractEntries(fn func(data any) any) Option {
	return func(o *options) {
		if fn != nil {
			o.extractEntries = fn
		}
	}
}

// WithExtractNumResults sets how the total result count is read from a
// response. The default is the length of the response when it is a list.
func WithExtractNumResults(fn func(data any) int) Option {
	return func(o *options) {
		if fn != nil {
			o.extractNumResults = fn
		}
	}
}

// WithDefaultQuery sets the query issued the first time the loader is
// attached.
func WithDefaultQuery(q string) Option {
	return func(o *options) {
		o.defaultQuery = q
	}
}

// WithRawQuery substitutes the query into the URL template as given,
// without query escaping. The template is then responsible for encoding.
func WithRawQuery() Option {
	return func(o *options) {
		o.rawQuery = true
	}
}

// WithTemplates overrides templates by name. Names not given keep the
// defaults.
func WithTemplates(templates map[string]Template) Option {
	return func(o *options) {
		o.templates = templates
	}
}

// WithTransforms overrides transforms by name. Names not given keep the
// defaults; a nil transform means identity.
func WithTransforms(transforms map[string]Transform) Option {
	return func(o *options) {
		o.transforms = transforms
	}
}

// WithContent overrides entries of the copy bound through the feedContent
// context.
func WithContent(content map[string]any) Option {
	return func(o *options) {
		o.content = content
	}
}

// WithRegistry registers the loader in reg instead of Default().
func WithRegistry(reg *Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithFetcher replaces the HTTP client used for plain loads.
func WithFetcher(f Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithScriptLoader replaces the client used for JSONP loads.
func WithScriptLoader(s ScriptLoader) Option {
	return func(o *options) {
		o.scripts = s
	}
}

// WithEvaluator shares an attribute evaluator between loaders. The loader
// adds its three contexts to it.
func WithEvaluator(e *attreval.Evaluator) Option {
	return func(o *options) {
		o.evaluator = e
	}
}

// WithLogger sets the logger for load and render diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// ExtractField returns an extractor reading the named top-level field of an
// object response, for use with WithExtractEntries:
//
//	hxfeed.WithExtractEntries(hxfeed.ExtractField("streams"))
func ExtractField(name string) func(data any) any {
	return func(data any) any {
		v, _, err := expr.Property(data, name)
		if err != nil {
			return expr.Undefined
		}
		return v
	}
}

// ExtractCount returns an extractor reading the named numeric field of an
// object response, for use with WithExtractNumResults. Missing or
// non-numeric fields count as 0; counts above MaxResultsCount are capped.
func ExtractCount(name string) func(data any) int {
	return func(data any) int {
		v, _, err := expr.Property(data, name)
		if err != nil {
			return 0
		}
		n := expr.ToNumber(v)
		if math.IsNaN(n) || n < 0 {
			return 0
		}
		if n > MaxResultsCount {
			return MaxResultsCount
		}
		return int(n)
	}
}

// sequenceLength is the default count extractor.
func sequenceLength(data any) int {
	list, err := sequence(data)
	if err != nil {
		return 0
	}
	return len(list)
}

// sequence returns the elements of a slice or array value.
func sequence(v any) ([]any, error) {
	if list, ok := v.([]any); ok {
		return list, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &sequenceError{got: v}
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, nil
}

type sequenceError struct {
	got any
}

func (e *sequenceError) Error() string {
	return ErrNotSequence.Error() + ": got " + typeName(e.got)
}

func (e *sequenceError) Unwrap() error {
	return ErrNotSequence
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	if expr.IsUndefined(v) {
		return "undefined"
	}
	return reflect.TypeOf(v).String()
}
