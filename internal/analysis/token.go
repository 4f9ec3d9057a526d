// Package analysis implements pull-based token streams and the filters that
// run over them, most notably RemoveGapsFilter, which forces every token's
// position increment back to 1.
//
// A stream exposes its current token through a shared slot returned by
// Token(). Each stage in a chain mutates that slot in place during a single
// IncrementToken call; nothing is buffered or copied between stages.
package analysis

import "fmt"

// Token types assigned by the built-in tokenizers.
const (
	TypeWord     = "word"
	TypeAlphaNum = "<ALPHANUM>"
	TypeNum      = "<NUM>"
)

// Token is one unit of analyzed text.
type Token struct {
	// Term is the token text.
	Term string `json:"term"`

	// Start and End are byte offsets into the analyzed input.
	Start int `json:"start"`
	End   int `json:"end"`

	// Type is a free-form tag set by the tokenizer.
	Type string `json:"type"`

	// PositionIncrement is the distance in positions from the previous token.
	// Values above 1 mark removed tokens; 0 stacks the token on the previous one.
	PositionIncrement int `json:"position_increment"`

	// Keyword marks tokens later filters should leave unchanged.
	Keyword bool `json:"keyword,omitempty"`
}

func (t Token) String() string {
	return fmt.Sprintf("%s [%d:%d] type=%s posinc=%d", t.Term, t.Start, t.End, t.Type, t.PositionIncrement)
}

// TokenStream produces tokens on demand.
//
// Callers loop on IncrementToken until it returns false, read the current
// token through Token, then call End and Close. A stream must not be advanced
// after it reported exhaustion unless Reset is called first. Streams are not
// safe for concurrent use.
type TokenStream interface {
	// IncrementToken advances to the next token. It returns false once the
	// stream is exhausted.
	IncrementToken() (bool, error)

	// Token returns the shared slot holding the current token. The pointer
	// stays valid for the stream's lifetime; its contents change on every
	// IncrementToken call.
	Token() *Token

	// Reset rewinds the stream so it can be consumed again.
	Reset() error

	// End performs end-of-stream bookkeeping, such as recording trailing
	// position increments, after IncrementToken returned false.
	End() error

	// Close releases the stream and everything it wraps.
	Close() error
}

// Collect drains stream and returns copies of every token it produced.
// The stream is ended but not closed.
func Collect(stream TokenStream) ([]Token, error) {
	var tokens []Token
	for {
		ok, err := stream.IncrementToken()
		if err != nil {
			return tokens, err
		}
		if !ok {
			break
		}
		tokens = append(tokens, *stream.Token())
	}
	return tokens, stream.End()
}

// Positions returns the absolute position of each token, starting from
// start and adding every increment in turn.
func Positions(tokens []Token, start int) []int {
	positions := make([]int, len(tokens))
	pos := start
	for i, t := range tokens {
		pos += t.PositionIncrement
		positions[i] = pos
	}
	return positions
}

// engineTypeNames names the ordinal token types shared by bleve and bluge,
// indexed by ordinal.
var engineTypeNames = []string{
	TypeAlphaNum,
	"<IDEOGRAPHIC>",
	TypeNum,
	"<DATETIME>",
	"<SHINGLE>",
	"<SINGLE>",
	"<DOUBLE>",
	"<BOOLEAN>",
	"<IP>",
}

// TypeName returns the Type string for an ordinal bleve or bluge token type.
// Ordinals without a name become "<TYPE:n>".
func TypeName(ordinal int) string {
	if ordinal >= 0 && ordinal < len(engineTypeNames) {
		return engineTypeNames[ordinal]
	}
	return fmt.Sprintf("<TYPE:%d>", ordinal)
}

// TypeOrdinal is the inverse of TypeName. Names it does not know, such as
// TypeWord, map to 0, the alphanumeric type.
func TypeOrdinal(name string) int {
	for i, n := range engineTypeNames {
		if n == name {
			return i
		}
	}
	var n int
	if _, err := fmt.Sscanf(name, "<TYPE:%d>", &n); err == nil {
		return n
	}
	return 0
}
