package internal

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Component builders shared by the services and the public client.

// BuildEmbedder constructs the configured embedder backend.
func BuildEmbedder(cfg *Config) (Embedder, error) {
	switch cfg.Embeddings.Backend {
	case "hash", "":
		return NewHashEmbedder(cfg.Embeddings.Dimension)
	default:
		return nil, fmt.Errorf("%w: unknown embeddings backend %q", ErrInvalidArgument, cfg.Embeddings.Backend)
	}
}

// BuildCorpus loads the JSONL corpus and indexes the adaptor's prompt
// column.
func BuildCorpus(ctx context.Context, cfg *Config, embedder Embedder, corpusPath string) (*Corpus, error) {
	storage, err := LoadJSONLStorage(corpusPath)
	if err != nil {
		return nil, err
	}

	backend, err := LookupBackend(cfg.Index.Backend)
	if err != nil {
		return nil, err
	}

	dist, err := LookupDistance(cfg.Index.Metric)
	if err != nil {
		return nil, err
	}

	opts := IndexOptions{
		Spec:        cfg.Index.Spec,
		Normalize:   cfg.Index.Normalize,
		BatchSize:   cfg.Index.BatchSize,
		Accelerator: cfg.Index.Accelerator,
	}

	return NewCorpus(ctx, backend, storage, embedder, cfg.Adaptor.PromptField, dist, opts)
}

// BuildAdaptor constructs the configured adaptor around the model.
func BuildAdaptor(cfg *Config, model Provider) (Adaptor, error) {
	switch cfg.Adaptor.Name {
	case "exact-match", "":
		return &ExactMatchAdaptor{
			Model:       model,
			PromptField: cfg.Adaptor.PromptField,
			AnswerField: cfg.Adaptor.AnswerField,
		}, nil
	case "overlap":
		return &OverlapAdaptor{
			Model:       model,
			PromptField: cfg.Adaptor.PromptField,
			AnswerField: cfg.Adaptor.AnswerField,
			MaxOrder:    cfg.Adaptor.MaxOrder,
		}, nil
	case "judge":
		return &JudgeAdaptor{
			Model:       model,
			PromptField: cfg.Adaptor.PromptField,
			AnswerField: cfg.Adaptor.AnswerField,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown adaptor %q", ErrInvalidArgument, cfg.Adaptor.Name)
	}
}

// BuildOptimizer constructs the configured optimizer over the corpus.
func BuildOptimizer(cfg *Config, corpus *Corpus, adaptor Adaptor) (Optimizer, error) {
	o := cfg.Optimizer
	switch o.Name {
	case "sweep", "":
		return NewSweepOptimizer(corpus, adaptor), nil
	case "random":
		return NewRandomOptimizer(corpus, adaptor, RandomOptimizerOptions{
			Seed:    o.Seed,
			Samples: o.Samples,
			K:       o.K,
			Steps:   o.Steps,
		})
	case "ascent":
		return NewAscentOptimizer(corpus, adaptor, AscentOptimizerOptions{
			Seed:      o.Seed,
			Proposals: o.Samples,
			K:         o.K,
			Patience:  o.Patience,
			Scale:     o.Scale,
		})
	default:
		return nil, fmt.Errorf("%w: unknown optimizer %q", ErrInvalidArgument, o.Name)
	}
}

// BuildModel constructs the named provider, or a static stand-in when the
// workspace has no providers configured.
func BuildModel(ctx context.Context, cfg *Config, name string) (Provider, error) {
	if name == "" {
		name = cfg.DefaultProvider
	}
	if name == "" || name == "static" {
		return &StaticModel{}, nil
	}

	providerCfg, ok := cfg.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not configured", ErrInvalidArgument, name)
	}

	return NewFantasyProvider(ctx, FantasyConfig{
		Provider: name,
		APIKey:   providerCfg.APIKey,
		BaseURL:  providerCfg.BaseURL,
		Model:    providerCfg.Model,
	})
}

// EvalService runs full evaluations: corpus in, deduplicated result file
// out.
type EvalService struct {
	ws  Workspace
	cfg *Config
}

func NewEvalService(ws Workspace, cfg *Config) *EvalService {
	return &EvalService{ws: ws, cfg: cfg}
}

type RunParams struct {
	CorpusPath string
	Provider   string
	Steps      int
	Save       bool
	Progress   func(step int)
}

type RunReport struct {
	Identity  string
	Evaluated int
	Table     *ResultTable
}

func (s *EvalService) Run(ctx context.Context, params RunParams) (*RunReport, error) {
	model, err := BuildModel(ctx, s.cfg, params.Provider)
	if err != nil {
		return nil, err
	}

	embedder, err := BuildEmbedder(s.cfg)
	if err != nil {
		return nil, err
	}
	defer embedder.Close()

	corpus, err := BuildCorpus(ctx, s.cfg, embedder, params.CorpusPath)
	if err != nil {
		return nil, err
	}

	adaptor, err := BuildAdaptor(s.cfg, model)
	if err != nil {
		return nil, err
	}

	optimizer, err := BuildOptimizer(s.cfg, corpus, adaptor)
	if err != nil {
		return nil, err
	}

	opts := []ManagerOption{}
	if params.Progress != nil {
		opts = append(opts, WithProgress(params.Progress))
	}
	if params.Save {
		history, err := EnsureRunHistory(s.ws.ResultsDir())
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithHistory(history))
	}

	manager, err := NewManager(s.ws.ResultsDir(), opts...)
	if err != nil {
		return nil, err
	}

	table, err := manager.Run(ctx, optimizer, corpus, params.Steps)
	if err != nil {
		return nil, err
	}

	report := &RunReport{Evaluated: table.Len(), Table: table}
	if params.Save {
		identity, err := manager.Save(table, optimizer, corpus, model, adaptor, embedder)
		if err != nil {
			return nil, err
		}
		report.Identity = identity
	} else {
		report.Identity, _ = manager.WithIdentifierCols(table, optimizer, corpus, model, adaptor, embedder)
	}

	return report, nil
}

// SearchService answers ad-hoc nearest-neighbor queries against a corpus.
type SearchService struct {
	cfg *Config
}

func NewSearchService(cfg *Config) *SearchService {
	return &SearchService{cfg: cfg}
}

func (s *SearchService) Search(ctx context.Context, corpusPath, query string, k int) ([]MatchedRecord, error) {
	embedder, err := BuildEmbedder(s.cfg)
	if err != nil {
		return nil, err
	}
	defer embedder.Close()

	corpus, err := BuildCorpus(ctx, s.cfg, embedder, corpusPath)
	if err != nil {
		return nil, err
	}

	matches, err := corpus.Search(ctx, []string{query}, k)
	if err != nil {
		return nil, err
	}
	return matches[0], nil
}

// ProviderService manages model provider configuration.
type ProviderService struct {
	ws Workspace
}

func NewProviderService(ws Workspace) *ProviderService {
	return &ProviderService{ws: ws}
}

func (s *ProviderService) List() ([]string, error) {
	cfg, err := LoadConfig(s.ws)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	return names, nil
}

func (s *ProviderService) Add(name string, providerCfg ProviderConfig) error {
	if !SupportedProvider(name) {
		return fmt.Errorf("%w: unsupported provider %q (known: %s)",
			ErrInvalidArgument, name, strings.Join(SupportedProviders(), ", "))
	}

	cfg, err := LoadConfig(s.ws)
	if err != nil {
		return err
	}

	cfg.Providers[name] = providerCfg
	return SaveConfig(s.ws, cfg)
}

func (s *ProviderService) Remove(name string) error {
	cfg, err := LoadConfig(s.ws)
	if err != nil {
		return err
	}

	delete(cfg.Providers, name)
	return SaveConfig(s.ws, cfg)
}

func (s *ProviderService) SetDefault(name string) error {
	cfg, err := LoadConfig(s.ws)
	if err != nil {
		return err
	}

	if _, exists := cfg.Providers[name]; !exists {
		return fmt.Errorf("%w: provider %q", ErrNotFound, name)
	}

	cfg.DefaultProvider = name
	return SaveConfig(s.ws, cfg)
}

// Test streams a trivial prompt through the named provider, writing
// chunks to out as they arrive.
func (s *ProviderService) Test(ctx context.Context, name string, out io.Writer) error {
	cfg, err := LoadConfig(s.ws)
	if err != nil {
		return err
	}

	model, err := BuildModel(ctx, cfg, name)
	if err != nil {
		return err
	}

	ch, err := model.Stream(ctx, "Say hello")
	if err != nil {
		return err
	}
	for chunk := range ch {
		if _, err := io.WriteString(out, chunk); err != nil {
			return err
		}
	}
	return nil
}
