package store

import (
	"sort"
	"sync"
	"time"

	"eduai/pkg/domain"
)

// MemoryStore keeps all records in-process. Used by tests and local runs
// without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	accounts  map[string]domain.Account
	email     map[string]string // email -> account ID
	profiles  map[string]domain.Profile
	roles     map[string]domain.UserRole
	materials map[string]domain.Material
	order     []string // material insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:  make(map[string]domain.Account),
		email:     make(map[string]string),
		profiles:  make(map[string]domain.Profile),
		roles:     make(map[string]domain.UserRole),
		materials: make(map[string]domain.Material),
	}
}

func (m *MemoryStore) SaveAccount(a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	m.email[a.Email] = a.ID
	return nil
}

func (m *MemoryStore) HasAccountEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.email[email]
	return ok, nil
}

func (m *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.Account{}, false, nil
	}
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryStore) GetAccountByID(id string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	return a, ok, nil
}

func (m *MemoryStore) AccountCount() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.accounts), nil
}

func (m *MemoryStore) SaveProfile(p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	return nil
}

func (m *MemoryStore) GetProfile(userID string) (domain.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	return p, ok, nil
}

func (m *MemoryStore) ListProfiles() ([]domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		res = append(res, p)
	}
	sortProfilesNewestFirst(res)
	return res, nil
}

func (m *MemoryStore) IncrementMaterialsCount(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil
	}
	p.MaterialsCount++
	p.UpdatedAt = time.Now().UTC()
	m.profiles[userID] = p
	return nil
}

func (m *MemoryStore) GetUserRole(userID string) (domain.UserRole, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[userID]
	return role, ok, nil
}

func (m *MemoryStore) SetUserRole(userID string, role domain.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
	return nil
}

func (m *MemoryStore) DeleteUserRole(userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.roles, userID)
	return nil
}

func (m *MemoryStore) SaveMaterial(mat domain.Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.materials[mat.ID]; !exists {
		m.order = append(m.order, mat.ID)
	}
	m.materials[mat.ID] = mat
	return nil
}

func (m *MemoryStore) GetMaterial(id string) (domain.Material, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[id]
	return mat, ok, nil
}

func (m *MemoryStore) ListMaterialsByUser(userID string) ([]domain.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Material, 0)
	// newest first: walk insertion order backwards
	for i := len(m.order) - 1; i >= 0; i-- {
		if mat, ok := m.materials[m.order[i]]; ok && mat.UserID == userID {
			res = append(res, mat)
		}
	}
	return res, nil
}

func (m *MemoryStore) SetDownloadURL(materialID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat, ok := m.materials[materialID]
	if !ok {
		return nil
	}
	mat.DownloadURL = url
	m.materials[materialID] = mat
	return nil
}

func sortProfilesNewestFirst(profiles []domain.Profile) {
	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].CreatedAt.After(profiles[j].CreatedAt)
	})
}
