package analysis

// TokenFilter is the base for streams whose input is another stream.
// It shares the input's token slot and forwards lifecycle calls to it.
type TokenFilter struct {
	input TokenStream
}

// NewTokenFilter wraps input.
func NewTokenFilter(input TokenStream) TokenFilter {
	return TokenFilter{input: input}
}

// Input returns the wrapped stream.
func (f *TokenFilter) Input() TokenStream {
	return f.input
}

// Token returns the input's current token.
func (f *TokenFilter) Token() *Token {
	return f.input.Token()
}

// Reset resets the input.
func (f *TokenFilter) Reset() error {
	return f.input.Reset()
}

// End ends the input.
func (f *TokenFilter) End() error {
	return f.input.End()
}

// Close closes the input.
func (f *TokenFilter) Close() error {
	return f.input.Close()
}

// RemoveGapsFilter forces the position increment of every token to 1,
// collapsing gaps left by filters that dropped tokens upstream.
//
// Only PositionIncrement is touched. Errors from the input are returned as-is.
type RemoveGapsFilter struct {
	TokenFilter
	exhausted bool
}

// NewRemoveGapsFilter wraps input. The filter owns input and closes it.
func NewRemoveGapsFilter(input TokenStream) *RemoveGapsFilter {
	return &RemoveGapsFilter{TokenFilter: NewTokenFilter(input)}
}

// IncrementToken implements TokenStream.
func (f *RemoveGapsFilter) IncrementToken() (bool, error) {
	if f.exhausted {
		return false, nil
	}
	ok, err := f.input.IncrementToken()
	if err != nil {
		return false, err
	}
	if !ok {
		f.exhausted = true
		return false, nil
	}
	f.input.Token().PositionIncrement = 1
	return true, nil
}

// Reset rewinds the input and makes the filter active again.
func (f *RemoveGapsFilter) Reset() error {
	if err := f.input.Reset(); err != nil {
		return err
	}
	f.exhausted = false
	return nil
}

// Exhausted reports whether the input has run out of tokens.
func (f *RemoveGapsFilter) Exhausted() bool {
	return f.exhausted
}

var _ TokenStream = (*RemoveGapsFilter)(nil)
