package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"eduai/internal/app"
	"eduai/internal/ratelimit"
	"eduai/internal/util"
	"eduai/pkg/domain"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App

	RegisterLimiter *ratelimit.FixedWindowLimiter
	LoginLimiter    *ratelimit.FixedWindowLimiter
	GenerateLimiter *ratelimit.FixedWindowLimiter
}

// Server exposes the HTTP API.
type Server struct {
	app *app.App
	mux *http.ServeMux

	registerLimiter *ratelimit.FixedWindowLimiter
	loginLimiter    *ratelimit.FixedWindowLimiter
	generateLimiter *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) *Server {
	s := &Server{
		app:             cfg.App,
		mux:             http.NewServeMux(),
		registerLimiter: cfg.RegisterLimiter,
		loginLimiter:    cfg.LoginLimiter,
		generateLimiter: cfg.GenerateLimiter,
	}
	s.routes()
	return s
}

// Router returns the configured handler wrapped with the shared middlewares.
func (s *Server) Router() http.Handler {
	return util.WithRequestLog(util.WithSecurityHeaders(util.WithCORS(s.mux)))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/register", s.handleRegister)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// generation and export
	s.mux.HandleFunc("/api/generate-material", s.handleGenerate)
	s.mux.Handle("/api/convert-to-office", s.authenticated(s.handleExport))
	s.mux.Handle("/api/consultant", s.authenticated(s.handleConsultant))

	// materials
	s.mux.Handle("/api/materials", s.authenticated(s.handleMaterials))
	s.mux.Handle("/api/materials/", s.authenticated(s.handleMaterialByID))

	// admin
	s.mux.Handle("/api/admin/users", s.adminOnly(s.handleAdminUsers))
	s.mux.Handle("/api/admin/users/", s.adminOnly(s.handleAdminUserByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, domain.User)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeAppError(w, app.ErrAuthentication)
			return
		}
		user, err := s.app.CurrentUser(token)
		if err != nil {
			s.audit(r, "eduai.authorize", "fail")
			writeAppError(w, err)
			return
		}
		next(w, r, user)
	})
}

func (s *Server) adminOnly(next authHandler) http.Handler {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request, user domain.User) {
		if !user.IsAdmin() {
			s.audit(r, "eduai.admin.authorize", "fail", "user_id", user.ID)
			writeAppError(w, app.ErrForbidden)
			return
		}
		next(w, r, user)
	})
}

// auth handlers
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.registerLimiter, "prea multe înregistrări, încearcă mai târziu") {
		s.audit(r, "eduai.register", "rate_limited")
		return
	}
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corp JSON invalid")
		return
	}
	user, token, err := s.app.Register(req.Email, req.Password, req.Name, domain.UserType(req.UserType))
	if err != nil {
		s.audit(r, "eduai.register", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "eduai.register", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Success: true, Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "prea multe încercări de autentificare") {
		s.audit(r, "eduai.login", "rate_limited")
		return
	}
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corp JSON invalid")
		return
	}
	user, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "eduai.login", "fail")
		writeAppError(w, err)
		return
	}
	s.audit(r, "eduai.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Success: true, Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeAppError(w, app.ErrAuthentication)
		return
	}
	if err := s.app.Logout(token); err != nil {
		writeError(w, http.StatusInternalServerError, "eroare internă")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

// generation handlers
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.generateLimiter, "prea multe generări, încearcă mai târziu") {
		s.audit(r, "eduai.generate", "rate_limited")
		return
	}
	var req app.GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corp JSON invalid")
		return
	}
	if !req.TestMode {
		token, ok := bearerToken(r)
		if !ok {
			writeAppError(w, app.ErrAuthentication)
			return
		}
		req.SessionToken = token
	}
	res, err := s.app.GenerateMaterial(r.Context(), req)
	if err != nil {
		s.audit(r, "eduai.generate", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		Material:    res.Material,
		Content:     &res.Content,
		TransientID: res.TransientID,
		Message:     res.Message,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req exportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corp JSON invalid")
		return
	}
	if strings.TrimSpace(req.MaterialID) == "" {
		writeError(w, http.StatusBadRequest, "materialId este obligatoriu")
		return
	}
	token, _ := bearerToken(r)
	res, err := s.app.ExportMaterial(r.Context(), token, req.MaterialID)
	if err != nil {
		s.audit(r, "eduai.export", "fail", "user_id", user.ID, "material_id", req.MaterialID, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Success:     true,
		DownloadURL: res.DownloadURL,
		FileName:    res.FileName,
		Message:     res.Message,
	})
}

func (s *Server) handleConsultant(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req app.ConsultRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "corp JSON invalid")
		return
	}
	token, _ := bearerToken(r)
	res, err := s.app.Consult(r.Context(), token, req)
	if err != nil {
		s.audit(r, "eduai.consultant", "fail", "user_id", user.ID, "reason", err.Error())
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "plan": res.Plan, "rawText": res.RawText})
}

// material handlers
func (s *Server) handleMaterials(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	materials, err := s.app.ListMaterials(token)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   materials,
		"count":   len(materials),
	})
}

func (s *Server) handleMaterialByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	id := strings.TrimPrefix(r.URL.Path, "/api/materials/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	material, err := s.app.GetMaterial(token, id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "material": material})
}

// admin handlers
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request, user domain.User) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	profiles, err := s.app.ListProfiles(token)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"items":   profiles,
		"count":   len(profiles),
	})
}

func (s *Server) handleAdminUserByID(w http.ResponseWriter, r *http.Request, user domain.User) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	token, _ := bearerToken(r)
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(rest, "/promote"):
		id := strings.TrimSuffix(rest, "/promote")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if err := s.app.PromoteUser(token, id); err != nil {
			s.audit(r, "eduai.admin.promote", "fail", "target", id, "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "eduai.admin.promote", "success", "user_id", user.ID, "target", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case r.Method == http.MethodDelete && strings.HasSuffix(rest, "/admin"):
		id := strings.TrimSuffix(rest, "/admin")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		if err := s.app.DemoteUser(token, id); err != nil {
			s.audit(r, "eduai.admin.demote", "fail", "target", id, "reason", err.Error())
			writeAppError(w, err)
			return
		}
		s.audit(r, "eduai.admin.demote", "success", "user_id", user.ID, "target", id)
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "metoda nu este permisă")
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(out)
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    domain.User `json:"user"`
}

type generateResponse struct {
	Success     bool                    `json:"success"`
	Material    *domain.Material        `json:"material,omitempty"`
	Content     *domain.MaterialContent `json:"content,omitempty"`
	TransientID string                  `json:"transientId,omitempty"`
	Message     string                  `json:"message"`
}

type exportRequest struct {
	MaterialID string `json:"materialId"`
}

type exportResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	Message     string `json:"message"`
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// statusForError maps the application error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, app.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, app.ErrInvalidCredentials), errors.Is(err, app.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, app.ErrQuotaExceeded), errors.Is(err, app.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, app.ErrProfileNotFound), errors.Is(err, app.ErrMaterialNotFound):
		return http.StatusNotFound
	case errors.Is(err, app.ErrEmailTaken), errors.Is(err, app.ErrAlreadyAdmin):
		return http.StatusConflict
	case errors.Is(err, app.ErrGenerationService):
		return http.StatusBadGateway
	case errors.Is(err, app.ErrGenerationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// friendlyMessages maps raw upstream error fragments to localized messages.
// Raw driver or provider text is never safe to show as-is.
var friendlyMessages = []struct {
	fragment string
	message  string
}{
	{"already registered", "există deja un cont cu acest email"},
	{"duplicate key", "există deja un cont cu acest email"},
	{"connection refused", "serviciul nu este disponibil momentan"},
	{"context deadline exceeded", "serviciul de generare nu a răspuns la timp"},
}

func userMessage(err error) string {
	var sentinel error
	for _, candidate := range []error{
		app.ErrValidation, app.ErrInvalidCredentials, app.ErrEmailTaken,
		app.ErrAuthentication, app.ErrProfileNotFound, app.ErrQuotaExceeded,
		app.ErrMaterialNotFound, app.ErrForbidden, app.ErrAlreadyAdmin,
		app.ErrGenerationService, app.ErrGenerationTimeout, app.ErrPersistence,
		app.ErrExportStorage, app.ErrExportMetadata,
	} {
		if errors.Is(err, candidate) {
			sentinel = candidate
			break
		}
	}
	if sentinel != nil {
		return sentinel.Error()
	}
	raw := strings.ToLower(err.Error())
	for _, fm := range friendlyMessages {
		if strings.Contains(raw, fm.fragment) {
			return fm.message
		}
	}
	return "a apărut o eroare neașteptată"
}

func writeAppError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), userMessage(err))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
