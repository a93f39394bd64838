package internal

import (
	"context"
	"fmt"
)

// Provider is a generative language model used by adaptors to produce
// candidate answers for corpus records.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	GenerateObject(ctx context.Context, prompt string, target any) error
	Stream(ctx context.Context, prompt string) (<-chan string, error)

	// Describe returns the stable descriptor used in run identities.
	Describe() string
}

var _ Provider = (*StaticModel)(nil)

// StaticModel answers every prompt from a fixed lookup table, falling back
// to a constant. It stands in for a real model in tests and dry runs.
type StaticModel struct {
	Answers  map[string]string
	Fallback string
}

func (m *StaticModel) Complete(ctx context.Context, prompt string) (string, error) {
	if answer, ok := m.Answers[prompt]; ok {
		return answer, nil
	}
	return m.Fallback, nil
}

func (m *StaticModel) GenerateObject(ctx context.Context, prompt string, target any) error {
	return fmt.Errorf("%w: static model has no structured output", ErrInvalidState)
}

func (m *StaticModel) Stream(ctx context.Context, prompt string) (<-chan string, error) {
	answer, err := m.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ch := make(chan string, 1)
	ch <- answer
	close(ch)
	return ch, nil
}

func (m *StaticModel) Describe() string {
	return fmt.Sprintf("static(answers=%d)", len(m.Answers))
}
