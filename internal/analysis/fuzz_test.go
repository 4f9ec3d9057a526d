package analysis

import "testing"

func FuzzRemoveGapsChain(f *testing.F) {
	f.Add("the quick brown fox")
	f.Add("")
	f.Add("  a  an   the  ")
	f.Add("getUserById in the_http_handler")

	f.Fuzz(func(t *testing.T, input string) {
		c, err := NewChain(nil, CodeTokenizerName, []FilterSpec{{Name: StopName}, {Name: RemoveGapsName}})
		if err != nil {
			t.Fatal(err)
		}
		tokens, err := c.Analyze(input)
		if err != nil {
			t.Fatal(err)
		}
		for i, tk := range tokens {
			if tk.PositionIncrement != 1 {
				t.Errorf("token %d %q has increment %d", i, tk.Term, tk.PositionIncrement)
			}
			if tk.Start < 0 || tk.End > len(input) || tk.Start > tk.End {
				t.Errorf("invalid offsets: start=%d end=%d input_len=%d", tk.Start, tk.End, len(input))
			}
		}
	})
}
