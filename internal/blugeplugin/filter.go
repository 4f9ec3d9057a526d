// Package blugeplugin adapts tokengaps filters to bluge's analysis API,
// whose tokens already carry position increments.
package blugeplugin

import (
	"regexp"

	"github.com/blugelabs/bluge/analysis"
	"github.com/blugelabs/bluge/analysis/lang/en"
	"github.com/blugelabs/bluge/analysis/tokenizer"

	tganalysis "github.com/Aman-CERP/tokengaps/internal/analysis"
)

// wordRegexp keeps apostrophes so the possessive filter can strip "'s".
var wordRegexp = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['’][\p{L}]+)?`)

// Filter runs a tokengaps filter over a bluge token stream.
type Filter struct {
	factory tganalysis.TokenFilterFactory
}

// NewFilter adapts factory to bluge's analysis.TokenFilter.
func NewFilter(factory tganalysis.TokenFilterFactory) *Filter {
	return &Filter{factory: factory}
}

// NewRemoveGapsFilter returns the gap removal filter for bluge.
func NewRemoveGapsFilter() *Filter {
	factory, _ := tganalysis.NewRemoveGapsFilterFactory(nil)
	return NewFilter(factory)
}

// NewStopFilter returns a stop filter for words, or the English list when
// words is empty.
func NewStopFilter(words []string) *Filter {
	if len(words) == 0 {
		words = tganalysis.EnglishStopWords
	}
	return NewFilter(stopFactory{words: tganalysis.BuildStopWordMap(words, true)})
}

// NewLowercaseFilter returns a lowercasing filter for bluge.
func NewLowercaseFilter() *Filter {
	factory, _ := tganalysis.NewLowercaseFilterFactory(nil)
	return NewFilter(factory)
}

type stopFactory struct {
	words map[string]struct{}
}

func (f stopFactory) Create(input tganalysis.TokenStream) tganalysis.TokenStream {
	return tganalysis.NewStopFilter(input, f.words, true)
}

// Filter implements analysis.TokenFilter.
func (f *Filter) Filter(input analysis.TokenStream) analysis.TokenStream {
	if len(input) == 0 {
		return input
	}

	stream := f.factory.Create(tganalysis.NewSliceStream(FromBluge(input)))
	defer func() { _ = stream.Close() }()

	// A slice source never fails, so an error here means nothing was emitted.
	tokens, _ := tganalysis.Collect(stream)
	return ToBluge(tokens)
}

// NewAnalyzer returns an English analyzer: word tokenizer, lowercase,
// possessive stripping, stop words and, when removeGaps is set, gap removal.
func NewAnalyzer(removeGaps bool) *analysis.Analyzer {
	filters := []analysis.TokenFilter{
		NewLowercaseFilter(),
		en.NewPossessiveFilter(),
		NewStopFilter(nil),
	}
	if removeGaps {
		filters = append(filters, NewRemoveGapsFilter())
	}
	return &analysis.Analyzer{
		Tokenizer:    tokenizer.NewRegexpTokenizer(wordRegexp),
		TokenFilters: filters,
	}
}

// Analyze runs NewAnalyzer(removeGaps) over text.
func Analyze(text string, removeGaps bool) []tganalysis.Token {
	return FromBluge(NewAnalyzer(removeGaps).Analyze([]byte(text)))
}

// FromBluge converts a bluge stream into tokengaps tokens.
func FromBluge(input analysis.TokenStream) []tganalysis.Token {
	tokens := make([]tganalysis.Token, len(input))
	for i, t := range input {
		tokens[i] = tganalysis.Token{
			Term:              string(t.Term),
			Start:             t.Start,
			End:               t.End,
			Type:              tganalysis.TypeName(int(t.Type)),
			PositionIncrement: t.PositionIncr,
			Keyword:           t.KeyWord,
		}
	}
	return tokens
}

// ToBluge converts tokens into a bluge stream.
func ToBluge(tokens []tganalysis.Token) analysis.TokenStream {
	out := make(analysis.TokenStream, len(tokens))
	for i, t := range tokens {
		out[i] = &analysis.Token{
			Term:         []byte(t.Term),
			Start:        t.Start,
			End:          t.End,
			PositionIncr: t.PositionIncrement,
			Type:         analysis.TokenType(tganalysis.TypeOrdinal(t.Type)),
			KeyWord:      t.Keyword,
		}
	}
	return out
}

var _ analysis.TokenFilter = (*Filter)(nil)
