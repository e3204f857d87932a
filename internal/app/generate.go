package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"eduai/internal/util"
	"eduai/pkg/domain"
	"eduai/pkg/prompt"
)

// GenerateRequest is the input tuple for one material generation. It lives
// only for the duration of the pipeline call and is never persisted.
type GenerateRequest struct {
	Kind           domain.MaterialKind `json:"materialType"`
	Subject        string              `json:"subject"`
	GradeLevel     string              `json:"gradeLevel"`
	Difficulty     string              `json:"difficulty"`
	AdditionalInfo string              `json:"additionalInfo,omitempty"`
	TestMode       bool                `json:"testMode,omitempty"`

	// SessionToken carries the bearer token in authenticated mode.
	SessionToken string `json:"-"`
}

// GenerateResult is the pipeline outcome. Material is set in authenticated
// mode; in test mode only Content and a transient identifier are returned.
type GenerateResult struct {
	Material    *domain.Material       `json:"material,omitempty"`
	Content     domain.MaterialContent `json:"content"`
	TransientID string                 `json:"transientId,omitempty"`
	Message     string                 `json:"message"`
}

const (
	msgGenerated      = "Material generat cu succes!"
	msgGeneratedAdmin = "Material generat cu succes! (cont administrator - fără limită)"
	msgGeneratedTest  = "Material generat în modul test - nu a fost salvat."
)

// GenerateMaterial runs one generation request end to end: validation,
// authorization, quota, prompt, model call, result shaping, persistence,
// usage accounting. The quota check happens before the model call so a
// request that cannot be fulfilled never incurs generation cost. Nothing
// in the pipeline is retried.
func (a *App) GenerateMaterial(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if err := validateGenerateRequest(req); err != nil {
		return GenerateResult{}, err
	}

	var user *domain.User
	if !req.TestMode {
		account, err := a.accountFromToken(req.SessionToken)
		if err != nil {
			return GenerateResult{}, err
		}
		profile, ok, err := a.store.GetProfile(account.ID)
		if err != nil {
			return GenerateResult{}, fmt.Errorf("fetch profile: %w", err)
		}
		if !ok {
			return GenerateResult{}, ErrProfileNotFound
		}
		role, ok, err := a.store.GetUserRole(account.ID)
		if err != nil || !ok {
			role = domain.RoleUser
		}
		u := domain.User{
			ID:             account.ID,
			Email:          account.Email,
			Name:           profile.Name,
			UserType:       profile.UserType,
			Subscription:   profile.Subscription,
			MaterialsCount: profile.MaterialsCount,
			MaterialsLimit: profile.MaterialsLimit,
			Role:           role,
		}
		if !u.IsAdmin() && u.MaterialsLimit >= 0 && u.MaterialsCount >= u.MaterialsLimit {
			return GenerateResult{}, ErrQuotaExceeded
		}
		user = &u
	}

	p := prompt.Build(req.Kind, req.Subject, req.GradeLevel, req.Difficulty, req.AdditionalInfo)

	genCtx, cancel := context.WithTimeout(ctx, a.generationTimeout)
	defer cancel()
	text, err := a.generator.GenerateText(genCtx, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return GenerateResult{}, fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
		}
		return GenerateResult{}, fmt.Errorf("%w: %v", ErrGenerationService, err)
	}
	if strings.TrimSpace(text) == "" {
		return GenerateResult{}, fmt.Errorf("%w: răspuns gol", ErrGenerationService)
	}

	content := domain.ParseGenerated(req.Kind, text)
	content.AdditionalInfo = strings.TrimSpace(req.AdditionalInfo)

	if req.TestMode {
		return GenerateResult{
			Content:     content,
			TransientID: "test-" + util.NewID(),
			Message:     msgGeneratedTest,
		}, nil
	}

	title := content.Title()
	if title == "" {
		title = fallbackTitle(req.Kind, req.Subject, req.GradeLevel)
	}
	material := domain.Material{
		ID:         util.NewID(),
		UserID:     user.ID,
		Title:      title,
		Kind:       req.Kind,
		Subject:    req.Subject,
		GradeLevel: req.GradeLevel,
		Difficulty: req.Difficulty,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
	if err := a.store.SaveMaterial(material); err != nil {
		return GenerateResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if !user.IsAdmin() {
		if err := a.store.IncrementMaterialsCount(user.ID); err != nil {
			slog.Error("materials count increment failed", "user_id", user.ID, "material_id", material.ID, "err", err)
		}
	}

	message := msgGenerated
	if user.IsAdmin() {
		message = msgGeneratedAdmin
	}
	return GenerateResult{
		Material: &material,
		Content:  content,
		Message:  message,
	}, nil
}

func validateGenerateRequest(req GenerateRequest) error {
	if strings.TrimSpace(string(req.Kind)) == "" ||
		strings.TrimSpace(req.Subject) == "" ||
		strings.TrimSpace(req.GradeLevel) == "" ||
		strings.TrimSpace(req.Difficulty) == "" {
		return fmt.Errorf("%w: materialType, subject, gradeLevel și difficulty", ErrValidation)
	}
	if !domain.ValidKind(req.Kind) {
		return fmt.Errorf("%w: tip de material necunoscut %q", ErrValidation, req.Kind)
	}
	return nil
}

func fallbackTitle(kind domain.MaterialKind, subject, gradeLevel string) string {
	return fmt.Sprintf("%s - %s (Clasa %s)", capitalize(string(kind)), subject, gradeLevel)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
