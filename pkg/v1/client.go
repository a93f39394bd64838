// Package v1 is the programmatic interface to sonda: run evaluations,
// query corpora and read back saved results without going through the
// CLI.
package v1

import (
	"context"
	"fmt"

	"github.com/vetrovp/sonda/internal"
)

// Client provides programmatic access to a sonda workspace.
type Client struct {
	ws  internal.Workspace
	cfg *internal.Config

	provider string
	steps    int
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	var cc clientConfig
	for _, opt := range opts {
		opt(&cc)
	}

	ws := internal.NewWorkspaceResolver().Resolve(cc.workspace)
	cfg, err := internal.LoadConfig(ws)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &Client{
		ws:       ws,
		cfg:      cfg,
		provider: cc.provider,
		steps:    cc.steps,
	}, nil
}

// Run evaluates the corpus and saves the scored results under the run's
// identity.
func (c *Client) Run(ctx context.Context, corpusPath string) (*Report, error) {
	report, err := internal.NewEvalService(c.ws, c.cfg).Run(ctx, internal.RunParams{
		CorpusPath: corpusPath,
		Provider:   c.provider,
		Steps:      c.steps,
		Save:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	return &Report{
		RunID:     report.Identity,
		Evaluated: report.Evaluated,
	}, nil
}

// Search returns the k nearest corpus records for the query text.
func (c *Client) Search(ctx context.Context, corpusPath, query string, k int) ([]Match, error) {
	matches, err := internal.NewSearchService(c.cfg).Search(ctx, corpusPath, query, k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		out = append(out, Match{
			Row:    m.Row,
			Score:  m.Score,
			Record: m.Record,
		})
	}
	return out, nil
}

// Results returns the combined rows of every saved run in the workspace,
// one column-name -> value map per scored row.
func (c *Client) Results() ([]map[string]string, error) {
	table, err := internal.LoadResults(c.ws.ResultsDir())
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}

	columns := table.Columns()
	rows := make([]map[string]string, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		row := make(map[string]string, len(columns))
		for _, col := range columns {
			value, err := table.Cell(i, col)
			if err != nil {
				return nil, err
			}
			row[col] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
