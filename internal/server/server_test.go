package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"eduai/internal/app"
	"eduai/internal/ratelimit"
	"eduai/pkg/domain"
	"eduai/pkg/store"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

const stubQuizJSON = `{"title":"Quiz Matematică","questions":[{"question":"Q1","options":["A","B","C","D"],"correct":0,"explanation":"E"}]}`

func newTestServer(t *testing.T, cfg Config) (*Server, store.Store) {
	t.Helper()
	ms := store.NewMemoryStore()
	appCore, err := app.New(app.Config{
		Store:             ms,
		Sessions:          store.NewJWTSessionStore("test-secret", time.Hour),
		Generator:         &stubGenerator{reply: stubQuizJSON},
		ProfileRetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	cfg.App = appCore
	return New(cfg), ms
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func registerUser(t *testing.T, s *Server, email string) string {
	t.Helper()
	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "parola123", "name": "Test", "userType": "profesor",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	return decodeResponse(t, rec)["token"].(string)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	rec := doJSON(t, s, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	registerUser(t, s, "maria@scoala.ro")

	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "maria@scoala.ro", "password": "x", "name": "M", "userType": "profesor",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
	if body := decodeResponse(t, rec); body["success"] != false {
		t.Fatalf("duplicate register body = %v", body)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maria@scoala.ro", "password": "gresit",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "maria@scoala.ro", "password": "parola123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d body %s", rec.Code, rec.Body.String())
	}
	if token, _ := decodeResponse(t, rec)["token"].(string); token == "" {
		t.Fatal("login returned no token")
	}
}

func TestMeRequiresAuth(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	if rec := doJSON(t, s, http.MethodGet, "/api/users/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	token := registerUser(t, s, "maria@scoala.ro")
	rec := doJSON(t, s, http.MethodGet, "/api/users/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	user := body["user"].(map[string]any)
	if user["email"] != "maria@scoala.ro" {
		t.Fatalf("me = %v", user)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	token := registerUser(t, s, "maria@scoala.ro")

	rec := doJSON(t, s, http.MethodPost, "/api/generate-material", token, map[string]any{
		"materialType": "quiz", "subject": "Matematică", "gradeLevel": "8", "difficulty": "intermediar",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	if body["success"] != true || body["material"] == nil {
		t.Fatalf("body = %v", body)
	}

	// missing fields
	rec = doJSON(t, s, http.MethodPost, "/api/generate-material", token, map[string]any{
		"materialType": "quiz",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("validation status = %d", rec.Code)
	}

	// no session, no test mode
	rec = doJSON(t, s, http.MethodPost, "/api/generate-material", "", map[string]any{
		"materialType": "quiz", "subject": "Matematică", "gradeLevel": "8", "difficulty": "intermediar",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}
}

func TestGenerateTestModeWithoutAuth(t *testing.T) {
	s, ms := newTestServer(t, Config{})
	rec := doJSON(t, s, http.MethodPost, "/api/generate-material", "", map[string]any{
		"materialType": "quiz", "subject": "Matematică", "gradeLevel": "8",
		"difficulty": "intermediar", "testMode": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	if body["material"] != nil {
		t.Fatal("test mode persisted a material")
	}
	if tid, _ := body["transientId"].(string); tid == "" {
		t.Fatal("test mode returned no transient id")
	}
	materials, err := ms.ListMaterialsByUser("")
	if err != nil || len(materials) != 0 {
		t.Fatalf("materials in store after test mode: %d, %v", len(materials), err)
	}
}

func TestGenerateQuotaExceeded(t *testing.T) {
	s, ms := newTestServer(t, Config{})
	registerUser(t, s, "admin@scoala.ro") // first account is admin
	token := registerUser(t, s, "plin@scoala.ro")

	me := doJSON(t, s, http.MethodGet, "/api/users/me", token, nil)
	userID := decodeResponse(t, me)["user"].(map[string]any)["id"].(string)
	for i := 0; i < domain.FreeTierMaterialsLimit; i++ {
		if err := ms.IncrementMaterialsCount(userID); err != nil {
			t.Fatalf("seed count: %v", err)
		}
	}

	rec := doJSON(t, s, http.MethodPost, "/api/generate-material", token, map[string]any{
		"materialType": "quiz", "subject": "Matematică", "gradeLevel": "8", "difficulty": "intermediar",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	adminToken := registerUser(t, s, "admin@scoala.ro")
	userToken := registerUser(t, s, "ion@scoala.ro")

	if rec := doJSON(t, s, http.MethodGet, "/api/admin/users", userToken, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin list status = %d", rec.Code)
	}
	rec := doJSON(t, s, http.MethodGet, "/api/admin/users", adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list status = %d", rec.Code)
	}
	body := decodeResponse(t, rec)
	if body["count"].(float64) != 2 {
		t.Fatalf("count = %v", body["count"])
	}

	me := doJSON(t, s, http.MethodGet, "/api/users/me", userToken, nil)
	userID := decodeResponse(t, me)["user"].(map[string]any)["id"].(string)

	if rec := doJSON(t, s, http.MethodPost, "/api/admin/users/"+userID+"/promote", adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("promote status = %d body %s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, s, http.MethodPost, "/api/admin/users/"+userID+"/promote", adminToken, nil); rec.Code != http.StatusConflict {
		t.Fatalf("second promote status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodDelete, "/api/admin/users/"+userID+"/admin", adminToken, nil); rec.Code != http.StatusOK {
		t.Fatalf("demote status = %d", rec.Code)
	}
}

func TestMaterialRoutes(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	token := registerUser(t, s, "maria@scoala.ro")

	rec := doJSON(t, s, http.MethodPost, "/api/generate-material", token, map[string]any{
		"materialType": "quiz", "subject": "Matematică", "gradeLevel": "8", "difficulty": "intermediar",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}
	materialID := decodeResponse(t, rec)["material"].(map[string]any)["id"].(string)

	rec = doJSON(t, s, http.MethodGet, "/api/materials", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if count := decodeResponse(t, rec)["count"].(float64); count != 1 {
		t.Fatalf("count = %v", count)
	}

	if rec := doJSON(t, s, http.MethodGet, "/api/materials/"+materialID, token, nil); rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if rec := doJSON(t, s, http.MethodGet, "/api/materials/nu-exista", token, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown material status = %d", rec.Code)
	}
}

func TestRegisterRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter, err := ratelimit.New(client, "register", 1, time.Minute)
	if err != nil {
		t.Fatalf("ratelimit.New: %v", err)
	}
	s, _ := newTestServer(t, Config{RegisterLimiter: limiter})

	registerUser(t, s, "prima@scoala.ro")
	rec := doJSON(t, s, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "adoua@scoala.ro", "password": "parola123", "name": "T", "userType": "profesor",
	})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatal("missing CORS headers")
	}
}
