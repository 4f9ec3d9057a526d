package analysis

import "strings"

// EnglishStopWords contains common English words that are usually not useful
// for searching.
var EnglishStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "but", "by",
	"for", "if", "in", "into", "is", "it",
	"no", "not", "of", "on", "or", "such",
	"that", "the", "their", "then", "there", "these",
	"they", "this", "to", "was", "will", "with",
}

// BuildStopWordMap converts a slice of stop words to a map for efficient lookup.
func BuildStopWordMap(stopWords []string, ignoreCase bool) map[string]struct{} {
	m := make(map[string]struct{}, len(stopWords))
	for _, word := range stopWords {
		if ignoreCase {
			word = strings.ToLower(word)
		}
		m[word] = struct{}{}
	}
	return m
}

// StopFilter removes stop words. The increments of removed tokens are added
// to the next kept token, so downstream stages see the gap.
type StopFilter struct {
	TokenFilter
	stopWords  map[string]struct{}
	ignoreCase bool
	skipped    int
}

// NewStopFilter wraps input and drops every token whose term is in stopWords.
func NewStopFilter(input TokenStream, stopWords map[string]struct{}, ignoreCase bool) *StopFilter {
	return &StopFilter{
		TokenFilter: NewTokenFilter(input),
		stopWords:   stopWords,
		ignoreCase:  ignoreCase,
	}
}

// IncrementToken implements TokenStream.
func (f *StopFilter) IncrementToken() (bool, error) {
	f.skipped = 0
	for {
		ok, err := f.input.IncrementToken()
		if err != nil || !ok {
			return false, err
		}
		tok := f.input.Token()
		if !f.isStopWord(tok.Term) {
			tok.PositionIncrement += f.skipped
			return true, nil
		}
		f.skipped += tok.PositionIncrement
	}
}

func (f *StopFilter) isStopWord(term string) bool {
	if f.ignoreCase {
		term = strings.ToLower(term)
	}
	_, ok := f.stopWords[term]
	return ok
}

// Reset implements TokenStream.
func (f *StopFilter) Reset() error {
	f.skipped = 0
	return f.input.Reset()
}

// End carries the increments of trailing stop words into the final state.
func (f *StopFilter) End() error {
	if err := f.input.End(); err != nil {
		return err
	}
	f.input.Token().PositionIncrement += f.skipped
	return nil
}

// LowercaseFilter lowercases every term.
type LowercaseFilter struct {
	TokenFilter
}

// NewLowercaseFilter wraps input.
func NewLowercaseFilter(input TokenStream) *LowercaseFilter {
	return &LowercaseFilter{TokenFilter: NewTokenFilter(input)}
}

// IncrementToken implements TokenStream.
func (f *LowercaseFilter) IncrementToken() (bool, error) {
	ok, err := f.input.IncrementToken()
	if err != nil || !ok {
		return false, err
	}
	tok := f.input.Token()
	if !tok.Keyword {
		tok.Term = strings.ToLower(tok.Term)
	}
	return true, nil
}

var (
	_ TokenStream = (*StopFilter)(nil)
	_ TokenStream = (*LowercaseFilter)(nil)
)
