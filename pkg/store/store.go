package store

import "eduai/pkg/domain"

// Store defines persistence operations for accounts, profiles, roles, and materials.
type Store interface {
	// accounts
	SaveAccount(domain.Account) error
	HasAccountEmail(email string) (bool, error)
	GetAccountByEmail(email string) (domain.Account, bool, error)
	GetAccountByID(id string) (domain.Account, bool, error)
	AccountCount() (int, error)

	// profiles
	SaveProfile(domain.Profile) error
	GetProfile(userID string) (domain.Profile, bool, error)
	ListProfiles() ([]domain.Profile, error)
	// IncrementMaterialsCount adds 1 to the profile's usage counter atomically
	// at the store level; callers never read-modify-write the counter.
	IncrementMaterialsCount(userID string) error

	// roles (separate record, absent means "user")
	GetUserRole(userID string) (domain.UserRole, bool, error)
	SetUserRole(userID string, role domain.UserRole) error
	DeleteUserRole(userID string) error

	// materials
	SaveMaterial(domain.Material) error
	GetMaterial(id string) (domain.Material, bool, error)
	ListMaterialsByUser(userID string) ([]domain.Material, error)
	SetDownloadURL(materialID, url string) error
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(userID string) (string, error)
	GetUserIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
