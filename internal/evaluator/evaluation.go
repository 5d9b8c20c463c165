package evaluator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the evaluation input: the snippet text and its character count.
type Request struct {
	Text           string `json:"text"`
	CharacterCount int    `json:"characterCount"`
}

// Scores holds the four sub-scores, each bounded 0.0-1.0.
type Scores struct {
	LearningDepth  float64 `json:"learning_depth"`
	ExpertiseLevel float64 `json:"expertise_level"`
	Conciseness    float64 `json:"conciseness"`
	ClarityLogic   float64 `json:"clarity_logic"`
}

// FinalResults holds the averaged and size-weighted composite scores.
type FinalResults struct {
	AverageQualityScore float64 `json:"average_quality_score"`
	FinalWeightedScore  float64 `json:"final_weighted_score"`
}

// Justification holds one short explanation per sub-score.
type Justification struct {
	LearningDepth  string `json:"learning_depth"`
	ExpertiseLevel string `json:"expertise_level"`
	Conciseness    string `json:"conciseness"`
	ClarityLogic   string `json:"clarity_logic"`
}

// Evaluation is the structured result the model is instructed to emit.
type Evaluation struct {
	SnippetIndex   string        `json:"snippet_index"`
	CharacterCount int           `json:"character_count"`
	Scores         Scores        `json:"scores"`
	FinalResults   FinalResults  `json:"final_results"`
	Justification  Justification `json:"justification"`
}

// ParseEvaluation parses and validates the model's raw output. Models
// sometimes wrap JSON in a markdown code fence despite instructions, so
// fences are stripped before parsing. The raw text itself is what callers
// forward on success; the parsed form exists only to validate it.
func ParseEvaluation(raw string) (*Evaluation, error) {
	trimmed := stripCodeFence(raw)

	var eval Evaluation
	if err := json.Unmarshal([]byte(trimmed), &eval); err != nil {
		return nil, fmt.Errorf("model output is not valid evaluation JSON: %w", err)
	}

	if err := eval.Validate(); err != nil {
		return nil, err
	}
	return &eval, nil
}

// Validate checks the schema bounds: every sub-score within [0,1] and every
// justification present.
func (e *Evaluation) Validate() error {
	scores := map[string]float64{
		"learning_depth":  e.Scores.LearningDepth,
		"expertise_level": e.Scores.ExpertiseLevel,
		"conciseness":     e.Scores.Conciseness,
		"clarity_logic":   e.Scores.ClarityLogic,
	}
	for name, score := range scores {
		if score < 0 || score > 1 {
			return fmt.Errorf("score %s out of range [0,1]: %g", name, score)
		}
	}

	justifications := map[string]string{
		"learning_depth":  e.Justification.LearningDepth,
		"expertise_level": e.Justification.ExpertiseLevel,
		"conciseness":     e.Justification.Conciseness,
		"clarity_logic":   e.Justification.ClarityLogic,
	}
	for name, text := range justifications {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("justification %s is empty", name)
		}
	}

	return nil
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
