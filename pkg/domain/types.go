package domain

import "time"

type MaterialKind string

const (
	KindQuiz         MaterialKind = "quiz"
	KindLessonPlan   MaterialKind = "plan_lectie"
	KindPresentation MaterialKind = "prezentare"
	KindAnalogy      MaterialKind = "analogie"
	KindAssessment   MaterialKind = "evaluare"
)

// Kinds lists every supported material kind.
var Kinds = []MaterialKind{KindQuiz, KindLessonPlan, KindPresentation, KindAnalogy, KindAssessment}

// ValidKind reports whether kind is one of the supported material kinds.
func ValidKind(kind MaterialKind) bool {
	switch kind {
	case KindQuiz, KindLessonPlan, KindPresentation, KindAnalogy, KindAssessment:
		return true
	}
	return false
}

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

type UserType string

const (
	TypeTeacher UserType = "profesor"
	TypeStudent UserType = "elev"
	TypeParent  UserType = "parinte"
)

// ValidUserType reports whether t is one of the supported account categories.
func ValidUserType(t UserType) bool {
	switch t {
	case TypeTeacher, TypeStudent, TypeParent:
		return true
	}
	return false
}

type Subscription string

const (
	TierFree    Subscription = "gratuit"
	TierPremium Subscription = "premium"
)

// UnlimitedMaterials is the materials_limit sentinel meaning "no quota".
const UnlimitedMaterials = -1

// FreeTierMaterialsLimit is the default quota for new free-tier profiles.
const FreeTierMaterialsLimit = 5

// Account is the identity record held by the account store.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile carries per-account application settings and usage counters.
// It is one-to-one with Account and may lag account creation (see app.ResolveUser).
type Profile struct {
	UserID         string       `json:"userId"`
	Name           string       `json:"name"`
	UserType       UserType     `json:"userType"`
	Subscription   Subscription `json:"subscription"`
	MaterialsCount int          `json:"materialsCount"`
	MaterialsLimit int          `json:"materialsLimit"`
	AvatarURL      string       `json:"avatarUrl,omitempty"`
	Provider       string       `json:"provider,omitempty"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// User is the application-facing shape merged from Account + Profile + role record.
type User struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Name           string       `json:"name"`
	UserType       UserType     `json:"userType"`
	Subscription   Subscription `json:"subscription"`
	MaterialsCount int          `json:"materialsCount"`
	MaterialsLimit int          `json:"materialsLimit"`
	Avatar         string       `json:"avatar,omitempty"`
	Provider       string       `json:"provider,omitempty"`
	Role           UserRole     `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Material is a persisted generated educational artifact.
// Immutable after creation except for DownloadURL, attached post-export.
type Material struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Kind        MaterialKind    `json:"materialType"`
	Subject     string          `json:"subject"`
	GradeLevel  string          `json:"gradeLevel"`
	Difficulty  string          `json:"difficulty"`
	Content     MaterialContent `json:"content"`
	DownloadURL string          `json:"downloadUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}
