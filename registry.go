package hxfeed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/pthm/hxfeed/lib/encoding"
)

// Registry tracks every loader by key and routes JSONP scripts to the
// callback they name.
//
// Loaders register themselves in New and are never removed, so a key stays
// taken for the life of the registry. Tests and multi-tenant hosts should
// give each loader group its own registry via WithRegistry:
//
//	reg := hxfeed.NewRegistry()
//	a := hxfeed.New(searchURL, hxfeed.WithRegistry(reg))
//	b := hxfeed.New(searchURL, hxfeed.WithRegistry(reg)) // different key
type Registry struct {
	mu        sync.RWMutex
	loaders   map[string]*Loader
	callbacks map[string]Callback
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		loaders:   make(map[string]*Loader),
		callbacks: make(map[string]Callback),
	}
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry = NewRegistry()
)

// Default returns the registry used by loaders built without WithRegistry.
func Default() *Registry {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultRegistry
}

// SetDefault replaces the process-wide registry. Loaders already built keep
// the registry they were created with.
func SetDefault(reg *Registry) {
	if reg == nil {
		panic("hxfeed: SetDefault called with nil registry")
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRegistry = reg
}

// keyHash returns the first 4 bytes of the sha256 of s as 8 hex chars.
func keyHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:4])
}

// GenerateKey returns the key a loader for url would get right now: the hash
// of url, or on collision the hash of url followed by 0, 1, 2... until free.
// The key is not reserved.
func (reg *Registry) GenerateKey(url string) string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.generateKey(url)
}

func (reg *Registry) generateKey(url string) string {
	key := keyHash(url)
	for offset := 0; reg.loaders[key] != nil; offset++ {
		key = keyHash(url + strconv.Itoa(offset))
	}
	return key
}

// add reserves a key for l and stores it.
func (reg *Registry) add(url string, l *Loader) string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	key := reg.generateKey(url)
	reg.loaders[key] = l
	return key
}

// Lookup returns the loader registered under key.
func (reg *Registry) Lookup(key string) (*Loader, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	l, ok := reg.loaders[key]
	return l, ok
}

// Keys returns every registered loader key, sorted.
func (reg *Registry) Keys() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	keys := make([]string, 0, len(reg.loaders))
	for k := range reg.loaders {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// RegisterCallback routes JSONP scripts calling name to cb.
// Panics if name is already taken.
func (reg *Registry) RegisterCallback(name string, cb Callback) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.callbacks[name]; exists {
		panic(fmt.Sprintf("hxfeed: callback collision for %q", name))
	}
	reg.callbacks[name] = cb
}

// Dispatch parses a JSONP script and invokes the callback it names with the
// decoded payload. The callback runs on the calling goroutine.
func (reg *Registry) Dispatch(ctx context.Context, script []byte) error {
	name, payload, err := encoding.ParseJSONP(script)
	if err != nil {
		return wrapEncodingError(err)
	}

	reg.mu.RLock()
	cb, ok := reg.callbacks[name]
	reg.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCallback, name)
	}

	var data any
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %q payload: %v", ErrMalformedResponse, name, err)
	}
	cb(ctx, data)
	return nil
}
