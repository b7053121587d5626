package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/w-h-a/support/embedder"
	"github.com/w-h-a/support/retriever"
	"github.com/w-h-a/support/storer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// ContentBudget caps stored content, in characters.
	ContentBudget   = 1000
	DefaultCategory = "general"
	DefaultProduct  = "general"
)

var ErrInvalidDocument = errors.New("document needs a title and content")

var categories = []string{
	"shipping",
	"returns",
	"payment",
	"account",
	"orders",
	"products",
	"promo",
	"tech_support",
	"warranty",
	"subscription",
	"laptop",
	"phone",
	"headphones",
	"smartwatch",
	"tv",
	"gaming",
	"smart_home",
	"fitness",
	"camera",
	"tablet",
}

type Service struct {
	embedder      embedder.Embedder
	storer        storer.Storer
	retriever     *retriever.Retriever
	batchSize     int
	fanOut        int
	retries       uint
	retryInterval time.Duration
	logger        *zap.Logger
}

// Add embeds and stores one document, replacing any document with the
// same id. Missing ids are generated.
func (s *Service) Add(ctx context.Context, doc storer.Document) (storer.Document, error) {
	doc, text, err := prepare(doc)
	if err != nil {
		return storer.Document{}, err
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return storer.Document{}, err
	}

	if err := s.storer.Upsert(ctx, storer.Record{Id: doc.Id, Vector: vector, Metadata: doc.Metadata()}); err != nil {
		return storer.Document{}, err
	}

	s.logger.Info("document added", zap.String("id", doc.Id), zap.String("category", doc.Category))

	return doc, nil
}

// AddBatch embeds docs in batches of batchSize, at most fanOut batches in
// flight, retrying each batch with exponential backoff. Vectors are stored
// only after every batch has embedded.
func (s *Service) AddBatch(ctx context.Context, docs []storer.Document) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}

	prepared := make([]storer.Document, len(docs))
	texts := make([]string, len(docs))
	for i, doc := range docs {
		p, text, err := prepare(doc)
		if err != nil {
			return 0, err
		}
		prepared[i] = p
		texts[i] = text
	}

	vectors := make([][]float32, len(prepared))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)

	for start := 0; start < len(prepared); start += s.batchSize {
		end := min(start+s.batchSize, len(prepared))

		g.Go(func() error {
			batch, err := s.embedWithRetry(gctx, texts[start:end])
			if err != nil {
				return err
			}

			if len(batch) != end-start {
				return embedder.Unavailable(fmt.Errorf("got %d vectors for %d texts", len(batch), end-start))
			}

			copy(vectors[start:end], batch)

			s.logger.Debug("batch embedded", zap.Int("from", start), zap.Int("to", end))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	recs := make([]storer.Record, len(prepared))
	for i, doc := range prepared {
		recs[i] = storer.Record{
			Id:       doc.Id,
			Vector:   vectors[i],
			Metadata: doc.Metadata(),
		}
	}

	if err := s.storer.UpsertBatch(ctx, recs); err != nil {
		return 0, err
	}

	s.logger.Info("documents added", zap.Int("count", len(recs)))

	return len(recs), nil
}

func (s *Service) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInterval
	b.Reset()

	return backoff.Retry(
		ctx,
		func() ([][]float32, error) {
			vectors, err := s.embedder.EmbedMany(ctx, texts)
			if err != nil {
				s.logger.Warn("embedding batch failed", zap.Int("size", len(texts)), zap.Error(err))
				return nil, err
			}
			return vectors, nil
		},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.retries+1),
	)
}

func (s *Service) Search(ctx context.Context, query string, topK int, category string) ([]storer.Match, error) {
	return s.retriever.Retrieve(
		ctx,
		query,
		retriever.RetrieveWithTopK(topK),
		retriever.RetrieveWithCategory(category),
	)
}

// Count is informational and reports 0 when the store is unreachable.
func (s *Service) Count(ctx context.Context) int {
	return storer.CountOrZero(ctx, s.storer)
}

// Clear irreversibly removes every document.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.storer.DeleteAll(ctx); err != nil {
		return err
	}

	s.logger.Warn("knowledge base cleared")

	return nil
}

func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// prepare fills defaults and returns the text to embed alongside the
// document. The text carries the full content; the stored content is
// truncated to ContentBudget.
func prepare(doc storer.Document) (storer.Document, string, error) {
	doc.Title = strings.TrimSpace(doc.Title)
	doc.Content = strings.TrimSpace(doc.Content)

	if len(doc.Title) == 0 || len(doc.Content) == 0 {
		return storer.Document{}, "", ErrInvalidDocument
	}

	if len(strings.TrimSpace(doc.Id)) == 0 {
		doc.Id = uuid.NewString()
	}

	if len(strings.TrimSpace(doc.Category)) == 0 {
		doc.Category = DefaultCategory
	}

	if len(strings.TrimSpace(doc.Product)) == 0 {
		doc.Product = DefaultProduct
	}

	text := doc.Title + " " + doc.Content

	doc.Content = Truncate(doc.Content, ContentBudget)

	return doc, text, nil
}

// Truncate cuts s to at most limit runes, backing off to the last word
// boundary when the cut would split a word.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	cut := runes[:limit]

	if !unicode.IsSpace(runes[limit]) {
		for i := len(cut) - 1; i > limit/2; i-- {
			if unicode.IsSpace(cut[i]) {
				cut = cut[:i]
				break
			}
		}
	}

	return strings.TrimRightFunc(string(cut), unicode.IsSpace)
}

func New(
	embedder embedder.Embedder,
	storer storer.Storer,
	retriever *retriever.Retriever,
	batchSize int,
	fanOut int,
	retries uint,
	logger *zap.Logger,
) *Service {
	if batchSize <= 0 {
		batchSize = 32
	}

	if fanOut <= 0 {
		fanOut = 4
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		embedder:      embedder,
		storer:        storer,
		retriever:     retriever,
		batchSize:     batchSize,
		fanOut:        fanOut,
		retries:       retries,
		retryInterval: 500 * time.Millisecond,
		logger:        logger.Named("knowledge"),
	}
}
