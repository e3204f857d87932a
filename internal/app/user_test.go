package app

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"eduai/pkg/domain"
	"eduai/pkg/store"
)

// lateProfileStore hides the profile for the first misses lookups,
// simulating the profile row lagging account creation.
type lateProfileStore struct {
	store.Store
	misses  int
	lookups atomic.Int64
	err     error
}

func (s *lateProfileStore) GetProfile(userID string) (domain.Profile, bool, error) {
	n := s.lookups.Add(1)
	if s.err != nil {
		return domain.Profile{}, false, s.err
	}
	if int(n) <= s.misses {
		return domain.Profile{}, false, nil
	}
	return s.Store.GetProfile(userID)
}

func newAdapterApp(t *testing.T, st store.Store) *App {
	t.Helper()
	a, err := New(Config{
		Store:             st,
		Sessions:          store.NewJWTSessionStore("test-secret", time.Hour),
		Generator:         &stubGenerator{},
		ProfileRetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a
}

func TestResolveUserRetriesLaggingProfile(t *testing.T) {
	ms := store.NewMemoryStore()
	if err := ms.SaveProfile(domain.Profile{
		UserID:         "u1",
		Name:           "Maria",
		UserType:       domain.TypeTeacher,
		Subscription:   domain.TierPremium,
		MaterialsCount: 3,
		MaterialsLimit: domain.UnlimitedMaterials,
	}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	late := &lateProfileStore{Store: ms, misses: 2}
	a := newAdapterApp(t, late)

	user := a.ResolveUser(domain.Account{ID: "u1", Email: "maria@scoala.ro"})
	if user == nil {
		t.Fatal("user = nil, want resolved user")
	}
	if got := late.lookups.Load(); got != 3 {
		t.Fatalf("profile lookups = %d, want 3", got)
	}
	if user.Name != "Maria" || user.Subscription != domain.TierPremium {
		t.Fatalf("resolved user = %+v, profile fields not applied", user)
	}
}

func TestResolveUserSynthesizesDefaults(t *testing.T) {
	late := &lateProfileStore{Store: store.NewMemoryStore(), misses: 100}
	a := newAdapterApp(t, late)

	user := a.ResolveUser(domain.Account{ID: "u2", Email: "ion.popescu@scoala.ro"})
	if user == nil {
		t.Fatal("user = nil, want synthesized defaults")
	}
	if got := late.lookups.Load(); got != 3 {
		t.Fatalf("profile lookups = %d, want exactly 3 attempts", got)
	}
	if user.Name != "ion.popescu" {
		t.Fatalf("name = %q, want email local part", user.Name)
	}
	if user.Subscription != domain.TierFree || user.MaterialsCount != 0 || user.MaterialsLimit != domain.FreeTierMaterialsLimit {
		t.Fatalf("defaults = %+v", user)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("role = %q, want user", user.Role)
	}
}

func TestResolveUserStoreErrorYieldsNil(t *testing.T) {
	late := &lateProfileStore{Store: store.NewMemoryStore(), err: errors.New("connection refused")}
	a := newAdapterApp(t, late)

	if user := a.ResolveUser(domain.Account{ID: "u3", Email: "x@scoala.ro"}); user != nil {
		t.Fatalf("user = %+v, want nil on store error", user)
	}
}

func TestResolveUserPicksUpAdminRole(t *testing.T) {
	ms := store.NewMemoryStore()
	if err := ms.SaveProfile(domain.Profile{UserID: "u4", Name: "Admin", UserType: domain.TypeTeacher, Subscription: domain.TierFree, MaterialsLimit: 5}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	if err := ms.SetUserRole("u4", domain.RoleAdmin); err != nil {
		t.Fatalf("seed role: %v", err)
	}
	a := newAdapterApp(t, ms)

	user := a.ResolveUser(domain.Account{ID: "u4", Email: "admin@scoala.ro"})
	if user == nil || !user.IsAdmin() {
		t.Fatalf("user = %+v, want admin", user)
	}
}
