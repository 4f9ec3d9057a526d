package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/tokengaps/internal/blugeplugin"
	"github.com/Aman-CERP/tokengaps/internal/errors"
	"github.com/Aman-CERP/tokengaps/internal/search"
	"github.com/Aman-CERP/tokengaps/internal/ui"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		docs       []string
		files      []string
		limit      int
		jsonOutput bool
		keepGaps   bool
		useBluge   bool
		queryStr   bool
		deleteIDs  []string
	)

	cmd := &cobra.Command{
		Use:   "search <phrase>",
		Short: "Phrase search over documents analyzed with gap removal",
		Long: `Index the given documents in a bleve index whose analyzer drops English
stop words and closes the gaps they leave, then run a phrase query.

"quick fox" therefore matches "quick as the fox". Use --keep-gaps to compare
with an index that keeps the gaps. --bluge searches an in-memory bluge index
instead, where --query-string accepts query string syntax.

With search.index_path set, documents persist between runs and --delete
removes them by ID. An on-disk index keeps the analyzer it was created with.`,
		Example: `  tokengaps search "quick fox" --doc "the quick as the fox" --doc "a slow dog"
  tokengaps search --bluge --query-string '"quick fox" -dog' --doc "quick the fox"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := strings.Join(args, " ")
			p := ui.NewPrinter(cmd.OutOrStdout())

			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if limit <= 0 {
				limit = cfg.Search.MaxResults
			}

			documents := make([]*search.Document, 0, len(docs)+len(files))
			for i, d := range docs {
				documents = append(documents, &search.Document{ID: fmt.Sprintf("doc-%d", i+1), Content: d})
			}
			for _, path := range files {
				data, err := readInput(path)
				if err != nil {
					return err
				}
				documents = append(documents, &search.Document{ID: path, Content: string(data)})
			}
			if useBluge {
				if len(deleteIDs) > 0 {
					return errors.ValidationError("--delete needs a persistent index and cannot be used with --bluge", nil)
				}
				return searchBluge(cmd, p, documents, phrase, limit, !keepGaps, queryStr, jsonOutput)
			}
			if queryStr {
				return errors.ValidationError("--query-string requires --bluge", nil)
			}
			if len(documents) == 0 && cfg.Search.IndexPath == "" {
				return noDocuments()
			}

			scfg := search.DefaultConfig()
			scfg.Path = cfg.Search.IndexPath
			scfg.RemoveGaps = !keepGaps
			idx, err := search.New(scfg)
			if err != nil {
				return err
			}
			defer func() { _ = idx.Close() }()

			if err := idx.Delete(cmd.Context(), deleteIDs); err != nil {
				return err
			}
			if err := idx.Index(cmd.Context(), documents); err != nil {
				return err
			}
			count, err := idx.Count()
			if err != nil {
				return err
			}
			if count == 0 {
				return noDocuments()
			}
			slog.Debug("searching index",
				slog.Int("documents", count),
				slog.Bool("remove_gaps", scfg.RemoveGaps))

			results, err := idx.SearchPhrase(cmd.Context(), phrase, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return p.JSON(results)
			}
			if len(results) == 0 {
				p.Warn(fmt.Sprintf("no documents match %q", phrase))
				return nil
			}
			p.Header(fmt.Sprintf("%d match(es) for %q", len(results), phrase))
			for _, r := range results {
				p.Line("%s\t%.4f\t%s", r.ID, r.Score, strings.Join(r.MatchedTerms, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&docs, "doc", nil, "Document text to index (repeatable)")
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "File to index (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default: search.max_results)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&keepGaps, "keep-gaps", false, "Keep position gaps left by stop words")
	cmd.Flags().BoolVar(&useBluge, "bluge", false, "Search an in-memory bluge index instead of bleve")
	cmd.Flags().BoolVar(&queryStr, "query-string", false, "Parse the query as a bluge query string (with --bluge)")
	cmd.Flags().StringArrayVar(&deleteIDs, "delete", nil, "Document ID to remove before searching (repeatable)")

	return cmd
}

func noDocuments() error {
	return errors.ValidationError("no documents to search", nil).
		WithSuggestion("Pass --doc or --file, or set search.index_path")
}

func searchBluge(cmd *cobra.Command, p *ui.Printer, documents []*search.Document, query string, limit int, removeGaps, queryString, jsonOutput bool) error {
	if len(documents) == 0 {
		return errors.ValidationError("no documents to search", nil).
			WithSuggestion("Pass --doc or --file")
	}

	idx, err := blugeplugin.NewIndex(removeGaps)
	if err != nil {
		return err
	}
	defer func() { _ = idx.Close() }()

	docs := make(map[string]string, len(documents))
	for _, d := range documents {
		docs[d.ID] = d.Content
	}
	if err := idx.Index(docs); err != nil {
		return err
	}

	var hits []blugeplugin.Hit
	if queryString {
		hits, err = idx.Query(cmd.Context(), query, limit)
	} else {
		hits, err = idx.SearchPhrase(cmd.Context(), query, limit)
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		if hits == nil {
			hits = []blugeplugin.Hit{}
		}
		return p.JSON(hits)
	}
	if len(hits) == 0 {
		p.Warn(fmt.Sprintf("no documents match %q", query))
		return nil
	}
	p.Header(fmt.Sprintf("%d match(es) for %q", len(hits), query))
	for _, h := range hits {
		p.Line("%s\t%.4f", h.ID, h.Score)
	}
	return nil
}
