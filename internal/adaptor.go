package internal

import (
	"context"
	"fmt"
	"strings"
)

// Adaptor scores corpus rows against an objective: it knows which storage
// fields form the prompt and the reference answer, asks the model, and
// reduces the comparison to a float. Higher is better.
type Adaptor interface {
	// Evaluate returns one score per row, in row order.
	Evaluate(ctx context.Context, storage Storage, rows []int) ([]float64, error)

	// Describe returns the stable descriptor used in run identities.
	Describe() string
}

var _ Adaptor = (*ExactMatchAdaptor)(nil)

// ExactMatchAdaptor scores 1 when the model's answer equals the reference
// field (case- and whitespace-insensitive), 0 otherwise.
type ExactMatchAdaptor struct {
	Model       Provider
	PromptField string
	AnswerField string
}

func (a *ExactMatchAdaptor) Evaluate(ctx context.Context, storage Storage, rows []int) ([]float64, error) {
	scores := make([]float64, len(rows))

	for i, row := range rows {
		rec, err := storage.Row(row)
		if err != nil {
			return nil, err
		}

		answer, err := a.Model.Complete(ctx, rec[a.PromptField])
		if err != nil {
			return nil, fmt.Errorf("model on row %d: %w", row, err)
		}

		if canonical(answer) == canonical(rec[a.AnswerField]) {
			scores[i] = 1
		}
	}

	return scores, nil
}

func (a *ExactMatchAdaptor) Describe() string {
	return fmt.Sprintf("exact-match(%s->%s model=%s)", a.PromptField, a.AnswerField, a.Model.Describe())
}

var _ Adaptor = (*OverlapAdaptor)(nil)

// OverlapAdaptor scores by word n-gram precision of the model's answer
// against the reference, averaged over orders 1..MaxOrder. A coarse
// BLEU-shaped objective; plug in a real scorer through the Adaptor
// contract when fidelity matters.
type OverlapAdaptor struct {
	Model       Provider
	PromptField string
	AnswerField string
	MaxOrder    int
}

func (a *OverlapAdaptor) Evaluate(ctx context.Context, storage Storage, rows []int) ([]float64, error) {
	order := a.MaxOrder
	if order < 1 {
		order = 2
	}

	scores := make([]float64, len(rows))
	for i, row := range rows {
		rec, err := storage.Row(row)
		if err != nil {
			return nil, err
		}

		answer, err := a.Model.Complete(ctx, rec[a.PromptField])
		if err != nil {
			return nil, fmt.Errorf("model on row %d: %w", row, err)
		}

		scores[i] = ngramOverlap(answer, rec[a.AnswerField], order)
	}

	return scores, nil
}

func (a *OverlapAdaptor) Describe() string {
	return fmt.Sprintf("overlap(%s->%s order=%d model=%s)", a.PromptField, a.AnswerField, a.MaxOrder, a.Model.Describe())
}

var _ Adaptor = (*JudgeAdaptor)(nil)

// JudgeAdaptor asks the model to grade its own answer against the
// reference through structured output, for objectives where token overlap
// misses paraphrases. Scores come back clamped to [0, 1].
type JudgeAdaptor struct {
	Model       Provider
	PromptField string
	AnswerField string
}

// verdict is the structured grade the judge model fills in.
type verdict struct {
	Score float64 `json:"score" description:"How well the candidate answer matches the reference, from 0 to 1."`
}

func (a *JudgeAdaptor) Evaluate(ctx context.Context, storage Storage, rows []int) ([]float64, error) {
	scores := make([]float64, len(rows))

	for i, row := range rows {
		rec, err := storage.Row(row)
		if err != nil {
			return nil, err
		}

		answer, err := a.Model.Complete(ctx, rec[a.PromptField])
		if err != nil {
			return nil, fmt.Errorf("model on row %d: %w", row, err)
		}

		prompt := fmt.Sprintf(
			"Grade the candidate answer against the reference.\nQuestion: %s\nReference: %s\nCandidate: %s",
			rec[a.PromptField], rec[a.AnswerField], answer,
		)

		var v verdict
		if err := a.Model.GenerateObject(ctx, prompt, &v); err != nil {
			return nil, fmt.Errorf("judge on row %d: %w", row, err)
		}

		scores[i] = clamp01(v.Score)
	}

	return scores, nil
}

func (a *JudgeAdaptor) Describe() string {
	return fmt.Sprintf("judge(%s->%s model=%s)", a.PromptField, a.AnswerField, a.Model.Describe())
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func ngramOverlap(candidate, reference string, maxOrder int) float64 {
	cand := strings.Fields(strings.ToLower(candidate))
	ref := strings.Fields(strings.ToLower(reference))
	if len(cand) == 0 || len(ref) == 0 {
		return 0
	}

	var total float64
	orders := 0
	for n := 1; n <= maxOrder; n++ {
		if n > len(cand) {
			break
		}
		orders++
		total += ngramPrecision(cand, ref, n)
	}
	if orders == 0 {
		return 0
	}
	return total / float64(orders)
}

// ngramPrecision is clipped precision: each reference n-gram can only be
// matched as often as it occurs.
func ngramPrecision(cand, ref []string, n int) float64 {
	refCounts := map[string]int{}
	for i := 0; i+n <= len(ref); i++ {
		refCounts[strings.Join(ref[i:i+n], " ")]++
	}

	matched := 0
	candTotal := 0
	for i := 0; i+n <= len(cand); i++ {
		candTotal++
		gram := strings.Join(cand[i:i+n], " ")
		if refCounts[gram] > 0 {
			refCounts[gram]--
			matched++
		}
	}
	if candTotal == 0 {
		return 0
	}
	return float64(matched) / float64(candTotal)
}
