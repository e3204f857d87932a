package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"eduai/pkg/domain"
	"eduai/pkg/prompt"
)

// ConsultRequest asks the consultant for a personalized study plan.
type ConsultRequest struct {
	Objective     string `json:"objective"`
	CurrentLevel  string `json:"currentLevel"`
	TimeAvailable string `json:"timeAvailable"`
}

// StudyPlan is the structured consultant answer.
type StudyPlan struct {
	Summary            string            `json:"summary"`
	TimeEstimate       string            `json:"timeEstimate"`
	Difficulty         string            `json:"difficulty"`
	WeeklyPlan         []json.RawMessage `json:"weeklyPlan"`
	Recommendations    []string          `json:"recommendations"`
	AssessmentSchedule []json.RawMessage `json:"assessmentSchedule"`
	NextSteps          []string          `json:"nextSteps"`
}

// ConsultResult carries either the parsed plan or the raw model text when
// the output does not parse. Consultant answers are never persisted and
// never count against the materials quota.
type ConsultResult struct {
	Plan    *StudyPlan `json:"plan,omitempty"`
	RawText string     `json:"rawText,omitempty"`
}

// Consult generates a study plan for an authenticated user.
func (a *App) Consult(ctx context.Context, token string, req ConsultRequest) (ConsultResult, error) {
	if _, err := a.userFromToken(token); err != nil {
		return ConsultResult{}, err
	}
	if strings.TrimSpace(req.Objective) == "" {
		return ConsultResult{}, fmt.Errorf("%w: obiectivul de studiu", ErrValidation)
	}
	if strings.TrimSpace(req.CurrentLevel) == "" {
		req.CurrentLevel = "începător"
	}
	if strings.TrimSpace(req.TimeAvailable) == "" {
		req.TimeAvailable = "2-3 ore pe săptămână"
	}

	genCtx, cancel := context.WithTimeout(ctx, a.generationTimeout)
	defer cancel()
	text, err := a.generator.GenerateText(genCtx, prompt.StudyPlan(req.Objective, req.CurrentLevel, req.TimeAvailable))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ConsultResult{}, fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return ConsultResult{}, fmt.Errorf("%w: %v", ErrGenerationService, err)
	}
	if strings.TrimSpace(text) == "" {
		return ConsultResult{}, fmt.Errorf("%w: răspuns gol", ErrGenerationService)
	}

	var plan StudyPlan
	trimmed := domain.StripCodeFence(text)
	if err := json.Unmarshal([]byte(trimmed), &plan); err == nil && plan.Summary != "" {
		return ConsultResult{Plan: &plan}, nil
	}
	return ConsultResult{RawText: text}, nil
}
