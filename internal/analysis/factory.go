package analysis

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/Aman-CERP/tokengaps/internal/errors"
)

// Reserved argument keys consumed by every factory.
const (
	ArgClass   = "class"
	ArgVersion = "version"
)

// Registered filter names.
const (
	RemoveGapsName      = "removeTokenGaps"
	RemoveGapsAliasName = "remove_token_gaps"
	LowercaseName       = "lowercase"
	StopName            = "stop"
)

// TokenFilterFactory builds filters around an upstream stream.
type TokenFilterFactory interface {
	Create(input TokenStream) TokenStream
}

// BaseFactory holds the construction contract shared by all filter
// factories: reserved keys are consumed up front, options are consumed as
// they are read, and anything left over is rejected.
type BaseFactory struct {
	name    string
	args    map[string]string
	class   string
	version string
}

// NewBaseFactory copies args and consumes the reserved keys.
func NewBaseFactory(name string, args map[string]string) BaseFactory {
	owned := make(map[string]string, len(args))
	for k, v := range args {
		owned[k] = v
	}
	b := BaseFactory{name: name, args: owned}
	b.class = b.Get(ArgClass, "")
	b.version = b.Get(ArgVersion, "")
	return b
}

// Name returns the registered name of the factory.
func (b *BaseFactory) Name() string {
	return b.name
}

// Version returns the value of the reserved version key, if any.
func (b *BaseFactory) Version() string {
	return b.version
}

// Get consumes key and returns its value, or def when absent.
func (b *BaseFactory) Get(key, def string) string {
	v, ok := b.args[key]
	if !ok {
		return def
	}
	delete(b.args, key)
	return v
}

// GetBool consumes key and parses it as a boolean.
func (b *BaseFactory) GetBool(key string, def bool) (bool, error) {
	v, ok := b.args[key]
	if !ok {
		return def, nil
	}
	delete(b.args, key)
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return def, errors.ConfigError("invalid boolean for "+b.name+"."+key+": "+v, err)
	}
	return parsed, nil
}

// GetList consumes key and splits its value on commas, trimming blanks.
func (b *BaseFactory) GetList(key string) []string {
	v := b.Get(key, "")
	if v == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// RequireNoUnknownArgs fails if any argument was not consumed.
func (b *BaseFactory) RequireNoUnknownArgs() error {
	if len(b.args) == 0 {
		return nil
	}
	return errors.UnknownParameters(b.name, b.args)
}

// RemoveGapsFilterFactory creates RemoveGapsFilter instances. It accepts no
// options beyond the reserved keys.
type RemoveGapsFilterFactory struct {
	BaseFactory
}

// NewRemoveGapsFilterFactory validates args and returns the factory.
func NewRemoveGapsFilterFactory(args map[string]string) (*RemoveGapsFilterFactory, error) {
	base := NewBaseFactory(RemoveGapsName, args)
	if err := base.RequireNoUnknownArgs(); err != nil {
		return nil, err
	}
	slog.Debug("filter factory created", slog.String("filter", RemoveGapsName))
	return &RemoveGapsFilterFactory{BaseFactory: base}, nil
}

// Create wraps input in a new RemoveGapsFilter.
func (f *RemoveGapsFilterFactory) Create(input TokenStream) TokenStream {
	return NewRemoveGapsFilter(input)
}

// LowercaseFilterFactory creates LowercaseFilter instances.
type LowercaseFilterFactory struct {
	BaseFactory
}

// NewLowercaseFilterFactory validates args and returns the factory.
func NewLowercaseFilterFactory(args map[string]string) (*LowercaseFilterFactory, error) {
	base := NewBaseFactory(LowercaseName, args)
	if err := base.RequireNoUnknownArgs(); err != nil {
		return nil, err
	}
	return &LowercaseFilterFactory{BaseFactory: base}, nil
}

// Create wraps input in a new LowercaseFilter.
func (f *LowercaseFilterFactory) Create(input TokenStream) TokenStream {
	return NewLowercaseFilter(input)
}

// StopFilterFactory creates StopFilter instances.
//
// Options:
//   - words: comma separated stop words (default: EnglishStopWords)
//   - ignoreCase: compare case-insensitively (default: false)
type StopFilterFactory struct {
	BaseFactory
	stopWords  map[string]struct{}
	ignoreCase bool
}

// NewStopFilterFactory validates args and returns the factory.
func NewStopFilterFactory(args map[string]string) (*StopFilterFactory, error) {
	base := NewBaseFactory(StopName, args)
	ignoreCase, err := base.GetBool("ignoreCase", false)
	if err != nil {
		return nil, err
	}
	words := base.GetList("words")
	if words == nil {
		words = EnglishStopWords
	}
	if err := base.RequireNoUnknownArgs(); err != nil {
		return nil, err
	}
	return &StopFilterFactory{
		BaseFactory: base,
		stopWords:   BuildStopWordMap(words, ignoreCase),
		ignoreCase:  ignoreCase,
	}, nil
}

// Create wraps input in a new StopFilter.
func (f *StopFilterFactory) Create(input TokenStream) TokenStream {
	return NewStopFilter(input, f.stopWords, f.ignoreCase)
}

var (
	_ TokenFilterFactory = (*RemoveGapsFilterFactory)(nil)
	_ TokenFilterFactory = (*LowercaseFilterFactory)(nil)
	_ TokenFilterFactory = (*StopFilterFactory)(nil)
)
