package store

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eduai/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AccountModel{}, &ProfileModel{}, &UserRoleModel{}, &MaterialModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveAccount registers or updates an account.
func (s *GormStore) SaveAccount(a domain.Account) error {
	model := accountToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "provider"}),
	}).Create(&model).Error
}

// HasAccountEmail checks if an email is already registered.
func (s *GormStore) HasAccountEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&AccountModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAccountByEmail looks up an account by email.
func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// GetAccountByID returns an account by ID.
func (s *GormStore) GetAccountByID(id string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// AccountCount returns the number of registered accounts.
func (s *GormStore) AccountCount() (int, error) {
	var count int64
	if err := s.db.Model(&AccountModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// SaveProfile stores or updates a profile row.
func (s *GormStore) SaveProfile(p domain.Profile) error {
	model := profileToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "user_type", "subscription", "materials_count", "materials_limit", "avatar_url", "provider", "updated_at"}),
	}).Create(&model).Error
}

// GetProfile fetches a profile by account ID.
func (s *GormStore) GetProfile(userID string) (domain.Profile, bool, error) {
	var model ProfileModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// ListProfiles returns all profiles, newest first.
func (s *GormStore) ListProfiles() ([]domain.Profile, error) {
	var models []ProfileModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Profile, 0, len(models))
	for _, m := range models {
		res = append(res, profileFromModel(m))
	}
	return res, nil
}

// IncrementMaterialsCount bumps the usage counter with a single UPDATE so
// concurrent generations never under-count.
func (s *GormStore) IncrementMaterialsCount(userID string) error {
	return s.db.Model(&ProfileModel{}).
		Where("user_id = ?", userID).
		UpdateColumn("materials_count", gorm.Expr("materials_count + 1")).Error
}

// GetUserRole returns the role record for the account, if any.
func (s *GormStore) GetUserRole(userID string) (domain.UserRole, bool, error) {
	var model UserRoleModel
	if err := s.db.First(&model, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return domain.UserRole(model.Role), true, nil
}

// SetUserRole creates or replaces the role record.
func (s *GormStore) SetUserRole(userID string, role domain.UserRole) error {
	model := UserRoleModel{UserID: userID, Role: string(role)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&model).Error
}

// DeleteUserRole removes the role record; the account falls back to "user".
func (s *GormStore) DeleteUserRole(userID string) error {
	return s.db.Delete(&UserRoleModel{}, "user_id = ?", userID).Error
}

// SaveMaterial inserts a material record.
func (s *GormStore) SaveMaterial(m domain.Material) error {
	model, err := materialToModel(m)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// GetMaterial retrieves a material by ID.
func (s *GormStore) GetMaterial(id string) (domain.Material, bool, error) {
	var model MaterialModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Material{}, false, nil
		}
		return domain.Material{}, false, err
	}
	material, err := materialFromModel(model)
	if err != nil {
		return domain.Material{}, false, err
	}
	return material, true, nil
}

// ListMaterialsByUser returns the account's materials, newest first.
func (s *GormStore) ListMaterialsByUser(userID string) ([]domain.Material, error) {
	var models []MaterialModel
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Material, 0, len(models))
	for _, m := range models {
		material, err := materialFromModel(m)
		if err != nil {
			return nil, err
		}
		res = append(res, material)
	}
	return res, nil
}

// SetDownloadURL attaches the export download URL to a material.
func (s *GormStore) SetDownloadURL(materialID, url string) error {
	return s.db.Model(&MaterialModel{}).
		Where("id = ?", materialID).
		UpdateColumn("download_url", url).Error
}

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Provider:     a.Provider,
		CreatedAt:    a.CreatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Provider:     m.Provider,
		CreatedAt:    m.CreatedAt,
	}
}

func profileToModel(p domain.Profile) ProfileModel {
	return ProfileModel{
		UserID:         p.UserID,
		Name:           p.Name,
		UserType:       string(p.UserType),
		Subscription:   string(p.Subscription),
		MaterialsCount: p.MaterialsCount,
		MaterialsLimit: p.MaterialsLimit,
		AvatarURL:      p.AvatarURL,
		Provider:       p.Provider,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func profileFromModel(m ProfileModel) domain.Profile {
	return domain.Profile{
		UserID:         m.UserID,
		Name:           m.Name,
		UserType:       domain.UserType(m.UserType),
		Subscription:   domain.Subscription(m.Subscription),
		MaterialsCount: m.MaterialsCount,
		MaterialsLimit: m.MaterialsLimit,
		AvatarURL:      m.AvatarURL,
		Provider:       m.Provider,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func materialToModel(m domain.Material) (MaterialModel, error) {
	content, err := json.Marshal(m.Content)
	if err != nil {
		return MaterialModel{}, fmt.Errorf("encode content: %w", err)
	}
	return MaterialModel{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Kind:        string(m.Kind),
		Subject:     m.Subject,
		GradeLevel:  m.GradeLevel,
		Difficulty:  m.Difficulty,
		Content:     datatypes.JSON(content),
		DownloadURL: m.DownloadURL,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func materialFromModel(m MaterialModel) (domain.Material, error) {
	var content domain.MaterialContent
	if len(m.Content) > 0 {
		if err := json.Unmarshal(m.Content, &content); err != nil {
			return domain.Material{}, fmt.Errorf("decode content: %w", err)
		}
	}
	return domain.Material{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		Kind:        domain.MaterialKind(m.Kind),
		Subject:     m.Subject,
		GradeLevel:  m.GradeLevel,
		Difficulty:  m.Difficulty,
		Content:     content,
		DownloadURL: m.DownloadURL,
		CreatedAt:   m.CreatedAt,
	}, nil
}
