package analysis

import (
	"log/slog"
	"strings"
)

// FilterSpec names a filter and its construction arguments.
type FilterSpec struct {
	Name string            `yaml:"name" json:"name"`
	Args map[string]string `yaml:"args,omitempty" json:"args,omitempty"`
}

// Chain is a tokenizer followed by an ordered list of filters.
// A Chain is immutable and may be shared; every Stream call builds fresh
// stages.
type Chain struct {
	tokenizerName string
	tokenize      TokenizeFunc
	filterNames   []string
	factories     []TokenFilterFactory
}

// NewChain resolves the tokenizer and builds one factory per filter spec.
func NewChain(reg *Registry, tokenizer string, filters []FilterSpec) (*Chain, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	tokenize, err := reg.Tokenizer(tokenizer)
	if err != nil {
		return nil, err
	}

	c := &Chain{tokenizerName: tokenizer, tokenize: tokenize}
	for _, spec := range filters {
		factory, err := reg.NewFilterFactory(spec.Name, spec.Args)
		if err != nil {
			return nil, err
		}
		c.factories = append(c.factories, factory)
		c.filterNames = append(c.filterNames, spec.Name)
	}

	slog.Debug("analysis chain built",
		slog.String("tokenizer", tokenizer),
		slog.String("filters", strings.Join(c.filterNames, ",")))
	return c, nil
}

// Stream returns a new stream over text. The caller must Close it.
func (c *Chain) Stream(text string) TokenStream {
	var stream TokenStream = NewSliceStream(c.tokenize(text))
	for _, f := range c.factories {
		stream = f.Create(stream)
	}
	return stream
}

// Analyze runs the chain over text and returns the resulting tokens.
func (c *Chain) Analyze(text string) (tokens []Token, err error) {
	stream := c.Stream(text)
	defer func() {
		if cerr := stream.Close(); err == nil {
			err = cerr
		}
	}()
	return Collect(stream)
}

// Describe returns a short human-readable form, e.g. "code | stop | removeTokenGaps".
func (c *Chain) Describe() string {
	parts := append([]string{c.tokenizerName}, c.filterNames...)
	return strings.Join(parts, " | ")
}
