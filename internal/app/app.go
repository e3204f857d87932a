package app

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"eduai/internal/util"
	"eduai/pkg/ai"
	"eduai/pkg/auth"
	"eduai/pkg/domain"
	"eduai/pkg/mailer"
	"eduai/pkg/storage"
	"eduai/pkg/store"
)

const defaultGenerationTimeout = 60 * time.Second

const defaultProfileRetryDelay = 150 * time.Millisecond

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL       string
	RedisAddr         string
	RedisPassword     string
	SessionTTL        time.Duration
	JWTSecret         string
	GeminiAPIKey      string
	GenerationModel   string
	GenerationTimeout time.Duration
	ConfirmBaseURL    string

	// Injectable dependencies; filled from the settings above when nil.
	Store     store.Store
	Sessions  store.SessionStore
	Generator ai.TextGenerator
	Objects   storage.ObjectStore
	Mailer    mailer.Mailer

	// ProfileRetryDelay overrides the adapter backoff base (tests).
	ProfileRetryDelay time.Duration
}

// App is the core application service wiring storage, sessions, generation,
// export storage, and mail delivery together.
type App struct {
	store             store.Store
	sessions          store.SessionStore
	generator         ai.TextGenerator
	objects           storage.ObjectStore
	mailer            mailer.Mailer
	generationTimeout time.Duration
	profileRetryDelay time.Duration
	confirmBaseURL    string
}

// New constructs the application.
func New(cfg Config) (*App, error) {
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.GenerationTimeout == 0 {
		cfg.GenerationTimeout = defaultGenerationTimeout
	}
	if cfg.ProfileRetryDelay == 0 {
		cfg.ProfileRetryDelay = defaultProfileRetryDelay
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (jwtSecret or redisAddr)")
		}
	}

	generator := cfg.Generator
	if generator == nil {
		var err error
		generator, err = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GenerationModel)
		if err != nil {
			return nil, err
		}
	}

	mailSender := cfg.Mailer
	if mailSender == nil {
		mailSender = mailer.Noop{}
	}

	return &App{
		store:             dataStore,
		sessions:          sessionStore,
		generator:         generator,
		objects:           cfg.Objects,
		mailer:            mailSender,
		generationTimeout: cfg.GenerationTimeout,
		profileRetryDelay: cfg.ProfileRetryDelay,
		confirmBaseURL:    strings.TrimRight(cfg.ConfirmBaseURL, "/"),
	}, nil
}

// Register creates an account with its profile row and issues a session.
// The first registered account gets the admin role. The confirmation email
// is best-effort and never fails the registration.
func (a *App) Register(email, password, name string, userType domain.UserType) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return domain.User{}, "", fmt.Errorf("%w: email, parolă și nume", ErrValidation)
	}
	if !domain.ValidUserType(userType) {
		return domain.User{}, "", fmt.Errorf("%w: tipul de utilizator nu este valid", ErrValidation)
	}
	exists, err := a.store.HasAccountEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		Provider:     "password",
		CreatedAt:    now,
	}

	count, err := a.store.AccountCount()
	if err != nil {
		return domain.User{}, "", fmt.Errorf("count accounts: %w", err)
	}
	if err := a.store.SaveAccount(account); err != nil {
		return domain.User{}, "", fmt.Errorf("save account: %w", err)
	}
	if count == 0 {
		if err := a.store.SetUserRole(account.ID, domain.RoleAdmin); err != nil {
			return domain.User{}, "", fmt.Errorf("bootstrap admin role: %w", err)
		}
	}

	profile := domain.Profile{
		UserID:         account.ID,
		Name:           name,
		UserType:       userType,
		Subscription:   domain.TierFree,
		MaterialsCount: 0,
		MaterialsLimit: domain.FreeTierMaterialsLimit,
		Provider:       account.Provider,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.store.SaveProfile(profile); err != nil {
		return domain.User{}, "", fmt.Errorf("save profile: %w", err)
	}

	token, err := a.sessions.NewSession(account.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}

	if err := a.mailer.SendConfirmation(email, name, a.confirmationURL(account.ID)); err != nil {
		slog.Warn("confirmation email failed", "user_id", account.ID, "err", err)
	}

	user := a.ResolveUser(account)
	if user == nil {
		return domain.User{}, "", ErrAuthentication
	}
	return *user, token, nil
}

// Login validates credentials and issues a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	account, ok, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch account: %w", err)
	}
	if !ok || !auth.CheckPassword(password, account.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(account.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue session: %w", err)
	}
	user := a.ResolveUser(account)
	if user == nil {
		return domain.User{}, "", ErrAuthentication
	}
	return *user, token, nil
}

// Logout removes a session token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// CurrentUser resolves a session token to the application-facing user.
func (a *App) CurrentUser(token string) (domain.User, error) {
	account, err := a.accountFromToken(token)
	if err != nil {
		return domain.User{}, err
	}
	user := a.ResolveUser(account)
	if user == nil {
		return domain.User{}, ErrAuthentication
	}
	return *user, nil
}

// ListMaterials returns the caller's materials, newest first.
func (a *App) ListMaterials(token string) ([]domain.Material, error) {
	account, err := a.accountFromToken(token)
	if err != nil {
		return nil, err
	}
	materials, err := a.store.ListMaterialsByUser(account.ID)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// GetMaterial returns one material, enforcing ownership (admins see all).
func (a *App) GetMaterial(token, id string) (domain.Material, error) {
	user, err := a.userFromToken(token)
	if err != nil {
		return domain.Material{}, err
	}
	material, ok, err := a.store.GetMaterial(id)
	if err != nil {
		return domain.Material{}, fmt.Errorf("get material: %w", err)
	}
	if !ok {
		return domain.Material{}, ErrMaterialNotFound
	}
	if material.UserID != user.ID && !user.IsAdmin() {
		return domain.Material{}, ErrForbidden
	}
	return material, nil
}

// ListProfiles returns every profile, newest first (admin use only).
func (a *App) ListProfiles(token string) ([]domain.Profile, error) {
	if _, err := a.requireAdmin(token); err != nil {
		return nil, err
	}
	profiles, err := a.store.ListProfiles()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// PromoteUser grants the admin role to an account.
func (a *App) PromoteUser(token, userID string) error {
	if _, err := a.requireAdmin(token); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: id utilizator invalid", ErrValidation)
	}
	role, ok, err := a.store.GetUserRole(userID)
	if err != nil {
		return fmt.Errorf("get role: %w", err)
	}
	if ok && role == domain.RoleAdmin {
		return ErrAlreadyAdmin
	}
	if err := a.store.SetUserRole(userID, domain.RoleAdmin); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

// DemoteUser removes the admin role from an account.
func (a *App) DemoteUser(token, userID string) error {
	if _, err := a.requireAdmin(token); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: id utilizator invalid", ErrValidation)
	}
	if err := a.store.DeleteUserRole(userID); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
}

func (a *App) accountFromToken(token string) (domain.Account, error) {
	if strings.TrimSpace(token) == "" {
		return domain.Account{}, ErrAuthentication
	}
	uid, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.Account{}, ErrAuthentication
	}
	account, found, err := a.store.GetAccountByID(uid)
	if err != nil || !found {
		return domain.Account{}, ErrAuthentication
	}
	return account, nil
}

func (a *App) userFromToken(token string) (domain.User, error) {
	account, err := a.accountFromToken(token)
	if err != nil {
		return domain.User{}, err
	}
	user := a.ResolveUser(account)
	if user == nil {
		return domain.User{}, ErrAuthentication
	}
	return *user, nil
}

func (a *App) requireAdmin(token string) (domain.User, error) {
	user, err := a.userFromToken(token)
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsAdmin() {
		return domain.User{}, ErrForbidden
	}
	return user, nil
}

func (a *App) confirmationURL(accountID string) string {
	base := a.confirmBaseURL
	if base == "" {
		base = "https://eduai.ro"
	}
	return base + "/confirm-email?uid=" + url.QueryEscape(accountID)
}
