package analysis

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Aman-CERP/tokengaps/internal/errors"
)

// Registered tokenizer names.
const (
	CodeTokenizerName       = "code"
	WhitespaceTokenizerName = "whitespace"
)

// FilterConstructor builds a filter factory from its argument map.
type FilterConstructor func(args map[string]string) (TokenFilterFactory, error)

// Registry maps names to tokenizers and filter constructors.
type Registry struct {
	mu         sync.RWMutex
	filters    map[string]FilterConstructor
	tokenizers map[string]TokenizeFunc
}

// NewRegistry creates a Registry with the built-in components registered.
func NewRegistry() *Registry {
	r := &Registry{
		filters:    make(map[string]FilterConstructor),
		tokenizers: make(map[string]TokenizeFunc),
	}

	removeGaps := func(args map[string]string) (TokenFilterFactory, error) {
		return NewRemoveGapsFilterFactory(args)
	}
	r.filters[RemoveGapsName] = removeGaps
	r.filters[RemoveGapsAliasName] = removeGaps
	r.filters[LowercaseName] = func(args map[string]string) (TokenFilterFactory, error) {
		return NewLowercaseFilterFactory(args)
	}
	r.filters[StopName] = func(args map[string]string) (TokenFilterFactory, error) {
		return NewStopFilterFactory(args)
	}

	r.tokenizers[CodeTokenizerName] = TokenizeCode
	r.tokenizers[WhitespaceTokenizerName] = TokenizeWhitespace
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// RegisterFilter adds a filter constructor under name.
func (r *Registry) RegisterFilter(name string, ctor FilterConstructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.filters[name]; exists {
		return fmt.Errorf("filter already registered: %q", name)
	}
	r.filters[name] = ctor
	return nil
}

// RegisterTokenizer adds a tokenizer under name.
func (r *Registry) RegisterTokenizer(name string, fn TokenizeFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokenizers[name]; exists {
		return fmt.Errorf("tokenizer already registered: %q", name)
	}
	r.tokenizers[name] = fn
	return nil
}

// NewFilterFactory constructs the factory registered under name.
func (r *Registry) NewFilterFactory(name string, args map[string]string) (TokenFilterFactory, error) {
	r.mu.RLock()
	ctor, ok := r.filters[name]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.UnknownComponent("filter", name)
	}
	return ctor(args)
}

// Tokenizer returns the tokenizer registered under name.
func (r *Registry) Tokenizer(name string) (TokenizeFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.tokenizers[name]
	if !ok {
		return nil, errors.UnknownComponent("tokenizer", name)
	}
	return fn, nil
}

// FilterNames returns the registered filter names in order.
func (r *Registry) FilterNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.filters))
	for name := range r.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TokenizerNames returns the registered tokenizer names in order.
func (r *Registry) TokenizerNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tokenizers))
	for name := range r.tokenizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
