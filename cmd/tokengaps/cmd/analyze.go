package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/tokengaps/internal/analysis"
	"github.com/Aman-CERP/tokengaps/internal/blugeplugin"
	"github.com/Aman-CERP/tokengaps/internal/errors"
	"github.com/Aman-CERP/tokengaps/internal/ui"
)

// analyzeResult is the analysis of one input.
type analyzeResult struct {
	Source string           `json:"source"`
	Chain  string           `json:"chain"`
	Tokens []analysis.Token `json:"tokens"`
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var (
		files      []string
		jsonOutput bool
		keepGaps   bool
		tokenizer  string
		useBluge   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Run text through the analysis chain and print the tokens",
		Long: `Analyze text with the configured chain and print one token per line:
term, byte offsets, type and position increment.

Input comes from the arguments, from --file (repeatable, analyzed in
parallel) or from stdin. --keep-gaps drops the gap removal stage so the
increments left by stop words are visible. --bluge analyzes with the bluge
English analyzer instead of the configured chain.`,
		Example: `  tokengaps analyze "the quick and the dead"
  tokengaps analyze --keep-gaps --file README.md
  echo "getUserById" | tokengaps analyze --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			name := cfg.Analysis.Tokenizer
			if tokenizer != "" {
				name = tokenizer
			}
			filters := cfg.Analysis.Filters
			if keepGaps {
				filters = withoutGapRemoval(filters)
			}

			newAnalyzer := func() (textAnalyzer, error) {
				return analysis.NewChain(nil, name, filters)
			}
			if useBluge {
				newAnalyzer = func() (textAnalyzer, error) {
					return blugeAnalyzer{removeGaps: !keepGaps}, nil
				}
			}

			var results []analyzeResult
			if len(files) > 0 {
				results, err = analyzeFiles(cmd, files, newAnalyzer)
			} else {
				source := "args"
				if len(args) == 0 {
					source = "stdin"
				}
				text, readErr := inputText(cmd, args)
				if readErr != nil {
					return readErr
				}
				results, err = analyzeTexts([]string{source}, []string{text}, newAnalyzer)
			}
			if err != nil {
				return err
			}

			return printResults(ui.NewPrinter(cmd.OutOrStdout()), results, jsonOutput)
		},
	}

	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "File to analyze (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output tokens as JSON")
	cmd.Flags().BoolVar(&keepGaps, "keep-gaps", false, "Skip gap removal")
	cmd.Flags().StringVar(&tokenizer, "tokenizer", "", "Tokenizer name (overrides config)")
	cmd.Flags().BoolVar(&useBluge, "bluge", false, "Analyze with the bluge English analyzer")

	return cmd
}

// inputText joins args, or reads stdin when there are none.
func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.IOError("failed to read stdin", err)
	}
	return string(data), nil
}

// withoutGapRemoval returns filters minus every gap removal stage.
func withoutGapRemoval(filters []analysis.FilterSpec) []analysis.FilterSpec {
	out := make([]analysis.FilterSpec, 0, len(filters))
	for _, f := range filters {
		if f.Name == analysis.RemoveGapsName || f.Name == analysis.RemoveGapsAliasName {
			continue
		}
		out = append(out, f)
	}
	return out
}

// textAnalyzer turns one text into tokens. Implementations need not be safe
// for concurrent use; each goroutine builds its own.
type textAnalyzer interface {
	Analyze(text string) ([]analysis.Token, error)
	Describe() string
}

// blugeAnalyzer runs the bluge English analyzer.
type blugeAnalyzer struct {
	removeGaps bool
}

func (b blugeAnalyzer) Analyze(text string) ([]analysis.Token, error) {
	return blugeplugin.Analyze(text, b.removeGaps), nil
}

func (b blugeAnalyzer) Describe() string {
	chain := "bluge regexp | lowercase | possessive_en | stop"
	if b.removeGaps {
		chain += " | " + analysis.RemoveGapsAliasName
	}
	return chain
}

func analyzeTexts(sources, texts []string, newAnalyzer func() (textAnalyzer, error)) ([]analyzeResult, error) {
	a, err := newAnalyzer()
	if err != nil {
		return nil, err
	}
	results := make([]analyzeResult, len(texts))
	for i, text := range texts {
		tokens, err := a.Analyze(text)
		if err != nil {
			return nil, err
		}
		results[i] = analyzeResult{Source: sources[i], Chain: a.Describe(), Tokens: tokens}
	}
	return results, nil
}

// analyzeFiles reads and analyzes each file in its own goroutine with its
// own analyzer. Results keep the order of paths.
func analyzeFiles(cmd *cobra.Command, paths []string, newAnalyzer func() (textAnalyzer, error)) ([]analyzeResult, error) {
	results := make([]analyzeResult, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := readInput(path)
			if err != nil {
				return err
			}
			res, err := analyzeTexts([]string{path}, []string{string(data)}, newAnalyzer)
			if err != nil {
				return err
			}
			results[i] = res[0]
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: "+path, err).
			WithDetail("path", path)
	}
	if err != nil {
		return nil, errors.New(errors.ErrCodeFilePermission, "failed to read "+path, err).
			WithDetail("path", path)
	}
	return data, nil
}

func printResults(p *ui.Printer, results []analyzeResult, jsonOutput bool) error {
	if jsonOutput {
		return p.JSON(results)
	}
	for _, r := range results {
		if p.Styled() {
			p.Header(r.Source + "  " + r.Chain)
		} else if len(results) > 1 {
			p.Line("# %s", r.Source)
		}
		if err := p.Tokens(r.Tokens); err != nil {
			return err
		}
	}
	return nil
}
