package blugeplugin

import (
	"context"
	"strings"
	"sync"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/analysis"
	querystr "github.com/blugelabs/query_string"

	"github.com/Aman-CERP/tokengaps/internal/errors"
)

// ContentField is the analyzed document field.
const ContentField = "content"

// Hit is a search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Index is an in-memory bluge index whose content field is analyzed by
// NewAnalyzer.
type Index struct {
	mu       sync.Mutex
	writer   *bluge.Writer
	analyzer *analysis.Analyzer
	closed   bool
}

// NewIndex opens an in-memory index. Queries without a field search
// ContentField with the same analyzer.
func NewIndex(removeGaps bool) (*Index, error) {
	a := NewAnalyzer(removeGaps)

	cfg := bluge.InMemoryOnlyConfig()
	cfg.DefaultSearchField = ContentField
	cfg.DefaultSearchAnalyzer = a

	w, err := bluge.OpenWriter(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexFailed, err)
	}
	return &Index{writer: w, analyzer: a}, nil
}

// Index adds or replaces documents keyed by id.
func (x *Index) Index(docs map[string]string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return errors.New(errors.ErrCodeInternal, "index is closed", nil)
	}

	batch := bluge.NewBatch()
	for id, content := range docs {
		doc := bluge.NewDocument(id).
			AddField(bluge.NewTextField(ContentField, content).
				WithAnalyzer(x.analyzer).
				SearchTermPositions())
		batch.Update(doc.ID(), doc)
	}
	if err := x.writer.Batch(batch); err != nil {
		return errors.Wrap(errors.ErrCodeIndexFailed, err)
	}
	return nil
}

// SearchPhrase finds documents containing phrase as consecutive positions
// after analysis.
func (x *Index) SearchPhrase(ctx context.Context, phrase string, limit int) ([]Hit, error) {
	if strings.TrimSpace(phrase) == "" {
		return nil, errors.New(errors.ErrCodeQueryEmpty, "phrase is empty", nil)
	}
	q := bluge.NewMatchPhraseQuery(phrase).
		SetField(ContentField).
		SetAnalyzer(x.analyzer)
	return x.search(ctx, q, limit)
}

// Query runs a query string such as `"quick fox" -dog`. Terms and phrases
// without a field search ContentField.
func (x *Index) Query(ctx context.Context, queryString string, limit int) ([]Hit, error) {
	q, err := querystr.ParseQueryString(queryString,
		querystr.DefaultOptions().WithDefaultAnalyzer(x.analyzer))
	if err != nil {
		return nil, errors.ValidationError("invalid query string", err).
			WithDetail("query", queryString)
	}
	return x.search(ctx, q, limit)
}

func (x *Index) search(ctx context.Context, q bluge.Query, limit int) ([]Hit, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil, errors.New(errors.ErrCodeInternal, "index is closed", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	reader, err := x.writer.Reader()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}
	defer func() { _ = reader.Close() }()

	dmi, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}

	var hits []Hit
	dm, err := dmi.Next()
	for dm != nil && err == nil {
		hit := Hit{Score: dm.Score}
		err = dm.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				hit.ID = string(value)
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		hits = append(hits, hit)
		dm, err = dmi.Next()
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSearchFailed, err)
	}
	return hits, nil
}

// Close releases the writer.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.closed {
		return nil
	}
	x.closed = true
	return x.writer.Close()
}
