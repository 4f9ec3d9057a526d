// Package bleveplugin exposes the tokengaps filters to bleve's analysis
// registry. Importing it registers the remove_token_gaps token filter and
// the gapless_en analyzer.
package bleveplugin

import (
	"fmt"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/registry"

	tganalysis "github.com/Aman-CERP/tokengaps/internal/analysis"
)

const (
	// FilterName is the bleve name of the gap removal filter.
	FilterName = tganalysis.RemoveGapsAliasName

	// AnalyzerName is an English analyzer that drops stop words and then
	// closes the gaps they leave.
	AnalyzerName = "gapless_en"

	// GappedAnalyzerName is AnalyzerName without gap removal.
	GappedAnalyzerName = "gapped_en"
)

func init() {
	registry.RegisterTokenFilter(FilterName, FilterConstructor)
	registry.RegisterAnalyzer(AnalyzerName, analyzerConstructor(true))
	registry.RegisterAnalyzer(GappedAnalyzerName, analyzerConstructor(false))
}

// FilterConstructor builds the gap removal filter for bleve. The only
// accepted config key is "type", which bleve sets for custom filters.
func FilterConstructor(config map[string]interface{}, cache *registry.Cache) (analysis.TokenFilter, error) {
	args := make(map[string]string, len(config))
	for k, v := range config {
		if k == "type" {
			continue
		}
		args[k] = fmt.Sprint(v)
	}
	factory, err := tganalysis.NewRemoveGapsFilterFactory(args)
	if err != nil {
		return nil, err
	}
	return NewFilter(factory), nil
}

// AnalyzerConfig returns the custom analyzer definition used by index
// mappings, matching the registered analyzers.
func AnalyzerConfig(removeGaps bool) map[string]interface{} {
	return map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": filterNames(removeGaps),
	}
}

func filterNames(removeGaps bool) []string {
	names := []string{lowercase.Name, en.StopName}
	if removeGaps {
		names = append(names, FilterName)
	}
	return names
}

func analyzerConstructor(removeGaps bool) registry.AnalyzerConstructor {
	return func(config map[string]interface{}, cache *registry.Cache) (analysis.Analyzer, error) {
		tokenizer, err := cache.TokenizerNamed(unicode.Name)
		if err != nil {
			return nil, err
		}
		var filters []analysis.TokenFilter
		for _, name := range filterNames(removeGaps) {
			f, err := cache.TokenFilterNamed(name)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		}
		return &analysis.DefaultAnalyzer{
			Tokenizer:    tokenizer,
			TokenFilters: filters,
		}, nil
	}
}

// Analyze runs the named registered analyzer over text and returns the
// result as tokengaps tokens, positions turned into increments.
func Analyze(analyzerName, text string) ([]tganalysis.Token, error) {
	analyzer, err := registry.NewCache().AnalyzerNamed(analyzerName)
	if err != nil {
		return nil, err
	}
	return FromBleve(analyzer.Analyze([]byte(text))), nil
}
