package app

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"eduai/pkg/domain"
	"eduai/pkg/store"
)

// countingMailer records confirmation sends.
type countingMailer struct {
	sends atomic.Int64
	err   error
}

func (m *countingMailer) SendConfirmation(toEmail, toName, confirmationURL string) error {
	m.sends.Add(1)
	return m.err
}

func newAuthEnv(t *testing.T) (*App, *countingMailer) {
	t.Helper()
	mail := &countingMailer{}
	a, err := New(Config{
		Store:             store.NewMemoryStore(),
		Sessions:          store.NewJWTSessionStore("test-secret", time.Hour),
		Generator:         &stubGenerator{},
		Mailer:            mail,
		ProfileRetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, mail
}

func TestRegisterFirstAccountBecomesAdmin(t *testing.T) {
	a, mail := newAuthEnv(t)

	first, token, err := a.Register("Maria@Scoala.ro", "parola123", "Maria", domain.TypeTeacher)
	if err != nil {
		t.Fatalf("register first: %v", err)
	}
	if first.Email != "maria@scoala.ro" {
		t.Fatalf("email not normalized: %q", first.Email)
	}
	if !first.IsAdmin() {
		t.Fatal("first account did not get the admin role")
	}
	if token == "" {
		t.Fatal("no session token issued")
	}
	if first.Subscription != domain.TierFree || first.MaterialsLimit != domain.FreeTierMaterialsLimit {
		t.Fatalf("profile defaults = %+v", first)
	}
	if got := mail.sends.Load(); got != 1 {
		t.Fatalf("confirmation emails sent = %d", got)
	}

	second, _, err := a.Register("ion@scoala.ro", "parola123", "Ion", domain.TypeStudent)
	if err != nil {
		t.Fatalf("register second: %v", err)
	}
	if second.IsAdmin() {
		t.Fatal("second account got the admin role")
	}
}

func TestRegisterValidation(t *testing.T) {
	a, _ := newAuthEnv(t)
	if _, _, err := a.Register("", "parola123", "Maria", domain.TypeTeacher); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for empty email", err)
	}
	if _, _, err := a.Register("maria@scoala.ro", "parola123", "Maria", "director"); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for unknown user type", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	a, _ := newAuthEnv(t)
	if _, _, err := a.Register("maria@scoala.ro", "parola123", "Maria", domain.TypeTeacher); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := a.Register("maria@scoala.ro", "alta-parola", "Maria", domain.TypeTeacher); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterSurvivesMailerFailure(t *testing.T) {
	a, mail := newAuthEnv(t)
	mail.err = errors.New("smtp down")
	if _, _, err := a.Register("maria@scoala.ro", "parola123", "Maria", domain.TypeTeacher); err != nil {
		t.Fatalf("register failed on mailer error: %v", err)
	}
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	a, _ := newAuthEnv(t)
	if _, _, err := a.Register("maria@scoala.ro", "parola123", "Maria", domain.TypeTeacher); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, errUnknown := a.Login("nimeni@scoala.ro", "parola123")
	_, _, errWrongPass := a.Login("maria@scoala.ro", "gresit")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPass, ErrInvalidCredentials) {
		t.Fatalf("errs = %v / %v, want ErrInvalidCredentials for both", errUnknown, errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Fatalf("failure modes distinguishable: %q vs %q", errUnknown, errWrongPass)
	}
}

func TestLoginAndCurrentUser(t *testing.T) {
	a, _ := newAuthEnv(t)
	if _, _, err := a.Register("maria@scoala.ro", "parola123", "Maria", domain.TypeTeacher); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, token, err := a.Login("maria@scoala.ro", "parola123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	got, err := a.CurrentUser(token)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.ID != user.ID || got.Name != "Maria" {
		t.Fatalf("current user = %+v", got)
	}
	if _, err := a.CurrentUser("invalid"); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestAdminOperations(t *testing.T) {
	a, _ := newAuthEnv(t)
	_, adminToken, err := a.Register("admin@scoala.ro", "parola123", "Admin", domain.TypeTeacher)
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	user, userToken, err := a.Register("ion@scoala.ro", "parola123", "Ion", domain.TypeStudent)
	if err != nil {
		t.Fatalf("register user: %v", err)
	}

	if _, err := a.ListProfiles(userToken); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-admin ListProfiles err = %v, want ErrForbidden", err)
	}
	profiles, err := a.ListProfiles(adminToken)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}

	if err := a.PromoteUser(adminToken, user.ID); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := a.PromoteUser(adminToken, user.ID); !errors.Is(err, ErrAlreadyAdmin) {
		t.Fatalf("second promote err = %v, want ErrAlreadyAdmin", err)
	}
	promoted, err := a.CurrentUser(userToken)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if !promoted.IsAdmin() {
		t.Fatal("promotion did not take effect")
	}

	if err := a.DemoteUser(adminToken, user.ID); err != nil {
		t.Fatalf("demote: %v", err)
	}
	demoted, _ := a.CurrentUser(userToken)
	if demoted.IsAdmin() {
		t.Fatal("demotion did not take effect")
	}
}

func TestMaterialOwnership(t *testing.T) {
	a, _ := newAuthEnv(t)
	_, ownerToken, err := a.Register("owner@scoala.ro", "parola123", "Owner", domain.TypeTeacher)
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	_, otherToken, err := a.Register("other@scoala.ro", "parola123", "Other", domain.TypeTeacher)
	if err != nil {
		t.Fatalf("register other: %v", err)
	}
	owner, err := a.CurrentUser(ownerToken)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	m := domain.Material{ID: "m1", UserID: owner.ID, Title: "T", Kind: domain.KindQuiz, CreatedAt: time.Now()}
	if err := a.store.SaveMaterial(m); err != nil {
		t.Fatalf("seed material: %v", err)
	}

	if _, err := a.GetMaterial(otherToken, "m1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	got, err := a.GetMaterial(ownerToken, "m1")
	if err != nil || got.ID != "m1" {
		t.Fatalf("owner GetMaterial = %+v, %v", got, err)
	}

	list, err := a.ListMaterials(otherToken)
	if err != nil {
		t.Fatalf("ListMaterials: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("other user sees %d materials, want 0", len(list))
	}
}
