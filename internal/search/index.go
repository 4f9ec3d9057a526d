// Package search is a small bleve phrase index whose content field is
// analyzed with the tokengaps analyzers.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/Aman-CERP/tokengaps/internal/bleveplugin"
	"github.com/Aman-CERP/tokengaps/internal/errors"
)

const (
	// ContentField is the indexed document field.
	ContentField = "content"

	contentAnalyzer = "tokengaps_content"

	// removeGapsKey stores the analyzer choice an on-disk index was built with.
	removeGapsKey = "tokengaps.remove_gaps"
)

// Config controls index construction.
type Config struct {
	// Path is the on-disk index directory. Empty means in memory.
	Path string

	// RemoveGaps selects the gapless analyzer. When false stop words still
	// leave position gaps.
	RemoveGaps bool
}

// DefaultConfig returns an in-memory gapless index config.
func DefaultConfig() Config {
	return Config{RemoveGaps: true}
}

// Document is one indexed text.
type Document struct {
	ID      string
	Content string
}

// Result is a search hit.
type Result struct {
	ID           string   `json:"id"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

type bleveDocument struct {
	Content string `json:"content"`
}

// Index wraps a bleve index.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	config Config
	closed bool
}

// New creates or opens an index.
func New(cfg Config) (*Index, error) {
	indexMapping, err := newIndexMapping(cfg.RemoveGaps)
	if err != nil {
		return nil, errors.InternalError("failed to create index mapping", err)
	}

	var idx bleve.Index
	if cfg.Path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		idx, err = openOrCreate(cfg.Path, indexMapping)
		if err == nil {
			if err = checkAnalyzer(idx, cfg); err != nil {
				_ = idx.Close()
			}
		}
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("search index opened",
		slog.String("path", cfg.Path),
		slog.Bool("remove_gaps", cfg.RemoveGaps))

	return &Index{index: idx, config: cfg}, nil
}

func openOrCreate(path string, indexMapping mapping.IndexMapping) (bleve.Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.IOError("failed to create index directory", err).
			WithDetail("path", filepath.Dir(path))
	}

	if err := validateIndexIntegrity(path); err != nil {
		return nil, corruptIndex(path, err)
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, indexMapping)
	}
	if err != nil {
		if err == bleve.ErrorIndexMetaCorrupt {
			return nil, corruptIndex(path, err)
		}
		return nil, errors.Wrap(errors.ErrCodeIndexFailed, err).WithDetail("path", path)
	}
	return idx, nil
}

// checkAnalyzer records the analyzer choice in a new index and rejects
// reopening an index with the other one. bleve reuses the stored mapping on
// open, so the choice cannot be changed after the first write.
func checkAnalyzer(idx bleve.Index, cfg Config) error {
	want := []byte(strconv.FormatBool(cfg.RemoveGaps))
	got, err := idx.GetInternal([]byte(removeGapsKey))
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndexFailed, err).WithDetail("path", cfg.Path)
	}
	if got == nil {
		if err := idx.SetInternal([]byte(removeGapsKey), want); err != nil {
			return errors.Wrap(errors.ErrCodeIndexFailed, err).WithDetail("path", cfg.Path)
		}
		return nil
	}
	if !bytes.Equal(got, want) {
		return errors.ConfigError("search index was built with a different analyzer", nil).
			WithDetail("path", cfg.Path).
			WithDetail("index_remove_gaps", string(got)).
			WithDetail("requested_remove_gaps", string(want)).
			WithSuggestion("Use a separate search.index_path for --keep-gaps, or delete the index directory")
	}
	return nil
}

func corruptIndex(path string, cause error) *errors.TokenGapsError {
	return errors.New(errors.ErrCodeCorruptIndex, "search index is corrupted", cause).
		WithDetail("path", path).
		WithSuggestion("Delete the index directory and index the documents again")
}

// validateIndexIntegrity reports a half-written index: a directory without
// a readable index_meta.json.
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing")
	}
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("index_meta.json is empty")
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}

func newIndexMapping(removeGaps bool) (*mapping.IndexMappingImpl, error) {
	indexMapping := bleve.NewIndexMapping()
	if err := indexMapping.AddCustomAnalyzer(contentAnalyzer, bleveplugin.AnalyzerConfig(removeGaps)); err != nil {
		return nil, err
	}

	content := bleve.NewTextFieldMapping()
	content.Analyzer = contentAnalyzer
	content.IncludeTermVectors = true
	content.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(ContentField, content)

	indexMapping.DefaultMapping = doc
	indexMapping.DefaultAnalyzer = contentAnalyzer
	return indexMapping, nil
}

// Index adds or replaces documents in one batch.
func (x *Index) Index(ctx context.Context, docs []*Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errClosed()
	}

	batch := x.index.NewBatch()
	for _, doc := range docs {
		if doc.ID == "" {
			return errors.ValidationError("document ID is empty", nil)
		}
		if err := batch.Index(doc.ID, bleveDocument{Content: doc.Content}); err != nil {
			return errors.Wrap(errors.ErrCodeIndexFailed, err).WithDetail("id", doc.ID)
		}
	}
	if err := x.index.Batch(batch); err != nil {
		return errors.Wrap(errors.ErrCodeIndexFailed, err)
	}

	slog.Debug("documents indexed", slog.Int("count", len(docs)))
	return nil
}

// Search runs a match query: documents containing any analyzed term.
// An empty query returns no results.
func (x *Index) Search(ctx context.Context, text string, limit int) ([]*Result, error) {
	if strings.TrimSpace(text) == "" {
		return []*Result{}, nil
	}
	q := bleve.NewMatchQuery(text)
	q.SetField(ContentField)
	return x.run(ctx, q, limit)
}

// SearchPhrase runs a match phrase query. The phrase is analyzed with the
// content analyzer, so with gap removal a phrase matches across stop words
// dropped from either side.
func (x *Index) SearchPhrase(ctx context.Context, phrase string, limit int) ([]*Result, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, errors.New(errors.ErrCodeQueryEmpty, "phrase is empty", nil)
	}
	q := bleve.NewMatchPhraseQuery(phrase)
	q.SetField(ContentField)
	return x.run(ctx, q, limit)
}

func (x *Index) run(ctx context.Context, q query.Query, limit int) ([]*Result, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return nil, errClosed()
	}
	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.IncludeLocations = true

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		results = append(results, &Result{
			ID:           hit.ID,
			Score:        hit.Score,
			MatchedTerms: matchedTerms(hit),
		})
	}
	return results, nil
}

// Delete removes documents by ID.
func (x *Index) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errClosed()
	}

	batch := x.index.NewBatch()
	for _, id := range ids {
		batch.Delete(id)
	}
	if err := x.index.Batch(batch); err != nil {
		return errors.Wrap(errors.ErrCodeIndexFailed, err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (x *Index) Count() (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.closed {
		return 0, errClosed()
	}
	n, err := x.index.DocCount()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err)
	}
	return int(n), nil
}

// Close closes the index. Closing twice is a no-op.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.index.Close()
}

func errClosed() error {
	return errors.New(errors.ErrCodeInternal, "index is closed", nil)
}

func matchedTerms(hit *search.DocumentMatch) []string {
	locations := hit.Locations[ContentField]
	terms := make([]string, 0, len(locations))
	for term := range locations {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
