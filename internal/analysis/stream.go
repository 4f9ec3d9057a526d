package analysis

// SliceStream is a TokenStream over a fixed list of tokens.
//
// It is the upstream used by tokenizers and adapters, and doubles as a fake
// source in tests: FailAt makes a chosen call return an error.
type SliceStream struct {
	tokens  []Token
	next    int
	current Token

	calls   int
	failAt  int
	failErr error

	closed bool
}

// NewSliceStream returns a stream that yields copies of tokens in order.
func NewSliceStream(tokens []Token) *SliceStream {
	owned := make([]Token, len(tokens))
	copy(owned, tokens)
	return &SliceStream{tokens: owned}
}

// FailAt makes the n-th IncrementToken call (1-based) return err instead of
// a token. The token that would have been produced is not consumed.
func (s *SliceStream) FailAt(n int, err error) *SliceStream {
	s.failAt = n
	s.failErr = err
	return s
}

// IncrementToken implements TokenStream.
func (s *SliceStream) IncrementToken() (bool, error) {
	s.calls++
	if s.failAt > 0 && s.calls == s.failAt {
		return false, s.failErr
	}
	if s.next >= len(s.tokens) {
		return false, nil
	}
	s.current = s.tokens[s.next]
	s.next++
	return true, nil
}

// Token implements TokenStream.
func (s *SliceStream) Token() *Token {
	return &s.current
}

// Reset implements TokenStream.
func (s *SliceStream) Reset() error {
	s.next = 0
	s.calls = 0
	s.current = Token{}
	return nil
}

// End leaves the final offset in the slot with a zero increment.
func (s *SliceStream) End() error {
	final := 0
	if n := len(s.tokens); n > 0 {
		final = s.tokens[n-1].End
	}
	s.current = Token{Start: final, End: final}
	return nil
}

// Close implements TokenStream.
func (s *SliceStream) Close() error {
	s.closed = true
	return nil
}

// Closed reports whether Close was called.
func (s *SliceStream) Closed() bool {
	return s.closed
}

// Calls reports how many times IncrementToken ran since the last Reset.
func (s *SliceStream) Calls() int {
	return s.calls
}
