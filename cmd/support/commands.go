package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/w-h-a/support"
	"github.com/w-h-a/support/internal/loader"
	"github.com/w-h-a/support/server"
	httpserver "github.com/w-h-a/support/server/http"
	"go.uber.org/zap"
)

// app is what every command runs against once globals are parsed.
type app struct {
	globals *Globals
	logger  *zap.Logger
}

func (a *app) support(ctx context.Context, opts ...support.Option) (*support.Support, error) {
	s := newSupport(a.globals, a.logger, opts...)
	if err := s.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare collection %q: %w", a.globals.Collection, err)
	}
	return s, nil
}

type ServeCmd struct {
	Address string   `help:"Listen address" default:":8000" env:"ADDRESS"`
	Origins []string `help:"Allowed CORS origins" default:"*" env:"CORS_ORIGINS"`
	Seed    string   `help:"CSV to load into an empty knowledge base at startup" env:"SEED_CSV" type:"existingfile"`
}

func (c *ServeCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := a.support(ctx)
	if err != nil {
		return err
	}

	if len(c.Seed) > 0 && s.CountKnowledge(ctx) == 0 {
		if err := ingest(ctx, a.logger, s, c.Seed); err != nil {
			a.logger.Warn("seeding skipped", zap.Error(err))
		}
	}

	srv := httpserver.NewServer(
		server.WithAddress(c.Address),
		httpserver.WithHandler(httpserver.NewHandler(s, a.logger)),
		httpserver.WithMiddleware(
			httpserver.Recover(a.logger),
			httpserver.Logging(a.logger),
			httpserver.CORS(c.Origins...),
		),
	)

	if err := srv.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}

type IngestCmd struct {
	Path      string `arg:"" help:"CSV with id, question, answer, category and product columns" type:"existingfile"`
	BatchSize int    `help:"Texts per embedding request" default:"32"`
	FanOut    int    `help:"Embedding requests in flight" default:"4"`
	Retries   uint   `help:"Retries per failed embedding batch" default:"3"`
}

func (c *IngestCmd) Run(a *app) error {
	ctx := context.Background()

	s, err := a.support(
		ctx,
		support.WithBatchSize(c.BatchSize),
		support.WithFanOut(c.FanOut),
		support.WithRetries(c.Retries),
	)
	if err != nil {
		return err
	}

	return ingest(ctx, a.logger, s, c.Path)
}

func ingest(ctx context.Context, logger *zap.Logger, s *support.Support, path string) error {
	docs, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	start := time.Now()

	n, err := s.AddKnowledgeBatch(ctx, docs)
	if err != nil {
		return err
	}

	logger.Info(
		"knowledge loaded",
		zap.String("path", path),
		zap.Int("documents", n),
		zap.Int("total", s.CountKnowledge(ctx)),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}

type SearchCmd struct {
	Query    string `arg:"" help:"Text to search for"`
	TopK     int    `help:"Results to return" default:"5"`
	Category string `help:"Only return this category"`
}

func (c *SearchCmd) Run(a *app) error {
	ctx := context.Background()

	s, err := a.support(ctx)
	if err != nil {
		return err
	}

	matches, err := s.SearchKnowledge(ctx, c.Query, c.TopK, c.Category)
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}

	for i, m := range matches {
		fmt.Printf("%d. [%.3f] %s (%s/%s)\n   %s\n", i+1, m.Score, m.Title, m.Category, m.Product, m.Content)
	}

	return nil
}

type StatsCmd struct{}

func (c *StatsCmd) Run(a *app) error {
	ctx := context.Background()

	s, err := a.support(ctx)
	if err != nil {
		return err
	}

	stats := s.Stats(ctx)

	fmt.Printf("knowledge items: %d\n", stats.KnowledgeItems)
	fmt.Printf("embedder:        %s\n", stats.Embedder)
	fmt.Printf("vector db:       %s\n", stats.VectorDB)
	fmt.Printf("llm:             %s\n", stats.LLM)

	return nil
}

type ClearCmd struct {
	Yes bool `help:"Confirm deleting every document"`
}

func (c *ClearCmd) Run(a *app) error {
	if !c.Yes {
		return errors.New("refusing to clear the knowledge base without --yes")
	}

	ctx := context.Background()

	s, err := a.support(ctx)
	if err != nil {
		return err
	}

	if err := s.ClearKnowledge(ctx); err != nil {
		return err
	}

	fmt.Println("all documents deleted")

	return nil
}

type AskCmd struct {
	Message  string `arg:"" help:"Question for the assistant"`
	Email    string `help:"Email for follow-up if the turn escalates"`
	Category string `help:"Restrict retrieval to this category"`
}

func (c *AskCmd) Run(a *app) error {
	ctx := context.Background()

	s, err := a.support(ctx)
	if err != nil {
		return err
	}

	reply, err := s.Chat(ctx, support.ChatRequest{
		Message:   c.Message,
		UserEmail: c.Email,
		Category:  c.Category,
	})
	if err != nil {
		return err
	}

	fmt.Println(reply.Response)
	fmt.Println()
	fmt.Printf("confidence: %.2f\n", reply.Confidence)

	if len(reply.Sources) > 0 {
		fmt.Printf("sources:    %s\n", strings.Join(reply.Sources, ", "))
	}

	if reply.NeedsEscalation {
		fmt.Printf("escalate:   %s\n", reply.EscalationReason)
	}

	return nil
}
