package app

import (
	"log/slog"
	"strings"
	"time"

	"eduai/pkg/domain"
)

const profileLookupAttempts = 3

// ResolveUser merges an account with its profile and role into the
// application-facing user. The profile lookup retries with a short backoff
// because the profile row is written separately from the account and may
// lag right after registration. When the profile never shows up the user is
// synthesized with free-tier defaults so a missing row cannot lock anyone
// out; the degraded resolution is logged.
func (a *App) ResolveUser(account domain.Account) *domain.User {
	var (
		profile domain.Profile
		found   bool
	)
	for attempt := 0; attempt < profileLookupAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * a.profileRetryDelay)
		}
		p, ok, err := a.store.GetProfile(account.ID)
		if err != nil {
			slog.Warn("profile lookup failed", "user_id", account.ID, "attempt", attempt+1, "err", err)
			return nil
		}
		if ok {
			profile, found = p, true
			break
		}
	}

	role, ok, err := a.store.GetUserRole(account.ID)
	if err != nil || !ok {
		role = domain.RoleUser
	}

	user := domain.User{
		ID:           account.ID,
		Email:        account.Email,
		Role:         role,
		Provider:     account.Provider,
		Subscription: domain.TierFree,
	}
	if found {
		user.Name = profile.Name
		user.UserType = profile.UserType
		user.Subscription = profile.Subscription
		user.MaterialsCount = profile.MaterialsCount
		user.MaterialsLimit = profile.MaterialsLimit
		user.Avatar = profile.AvatarURL
		return &user
	}

	slog.Warn("profile missing, using defaults", "user_id", account.ID)
	user.Name = nameFromEmail(account.Email)
	user.UserType = domain.TypeTeacher
	user.MaterialsCount = 0
	user.MaterialsLimit = domain.FreeTierMaterialsLimit
	return &user
}

func nameFromEmail(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return "Utilizator"
}
