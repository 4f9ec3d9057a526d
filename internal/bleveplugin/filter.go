package bleveplugin

import (
	"github.com/blevesearch/bleve/v2/analysis"

	tganalysis "github.com/Aman-CERP/tokengaps/internal/analysis"
)

// Filter runs a tokengaps filter over a bleve token stream.
//
// Bleve tokens carry absolute positions; they are turned into increments on
// the way in and accumulated back into positions on the way out.
type Filter struct {
	factory tganalysis.TokenFilterFactory
}

// NewFilter adapts factory to bleve's analysis.TokenFilter.
func NewFilter(factory tganalysis.TokenFilterFactory) *Filter {
	return &Filter{factory: factory}
}

// Filter implements analysis.TokenFilter.
func (f *Filter) Filter(input analysis.TokenStream) analysis.TokenStream {
	if len(input) == 0 {
		return input
	}

	stream := f.factory.Create(tganalysis.NewSliceStream(FromBleve(input)))
	defer func() { _ = stream.Close() }()

	// A slice source never fails, so an error here means nothing was emitted.
	tokens, _ := tganalysis.Collect(stream)
	return ToBleve(tokens, 0)
}

// FromBleve converts a bleve stream into tokens with position increments.
func FromBleve(input analysis.TokenStream) []tganalysis.Token {
	tokens := make([]tganalysis.Token, len(input))
	prev := 0
	for i, t := range input {
		tokens[i] = tganalysis.Token{
			Term:              string(t.Term),
			Start:             t.Start,
			End:               t.End,
			Type:              tganalysis.TypeName(int(t.Type)),
			PositionIncrement: t.Position - prev,
			Keyword:           t.KeyWord,
		}
		prev = t.Position
	}
	return tokens
}

// ToBleve converts tokens back into a bleve stream, accumulating increments
// into absolute positions starting after base.
func ToBleve(tokens []tganalysis.Token, base int) analysis.TokenStream {
	out := make(analysis.TokenStream, len(tokens))
	positions := tganalysis.Positions(tokens, base)
	for i, t := range tokens {
		out[i] = &analysis.Token{
			Term:     []byte(t.Term),
			Start:    t.Start,
			End:      t.End,
			Position: positions[i],
			Type:     analysis.TokenType(tganalysis.TypeOrdinal(t.Type)),
			KeyWord:  t.Keyword,
		}
	}
	return out
}

var _ analysis.TokenFilter = (*Filter)(nil)
