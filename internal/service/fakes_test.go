package service

import (
	"context"
	"sync"
	"time"

	"github.com/teamforge/backend/internal/model"
	"gorm.io/gorm"
)

// In-memory store fakes backing the service tests. They mirror the
// repository contracts, including gorm.ErrRecordNotFound on misses.

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, users: make(map[uint]*model.User)}
}

func (s *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	s.nextID++
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Password = hashedPassword
	return nil
}

func (s *fakeUserStore) UpdateLastLogin(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	user.LastLoginAt = &now
	return nil
}

type fakeRefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken
}

func newFakeRefreshTokenStore() *fakeRefreshTokenStore {
	return &fakeRefreshTokenStore{tokens: make(map[string]*model.RefreshToken)}
}

func (s *fakeRefreshTokenStore) Create(ctx context.Context, token *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *token
	s.tokens[token.ID] = &copied
	return nil
}

func (s *fakeRefreshTokenStore) GetByToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.tokens {
		if row.Token == token {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeRefreshTokenStore) DeleteByID(ctx context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[id]; !ok {
		return 0, nil
	}
	delete(s.tokens, id)
	return 1, nil
}

func (s *fakeRefreshTokenStore) DeleteByUserAndToken(ctx context.Context, userID uint, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, row := range s.tokens {
		if row.UserID == userID && row.Token == token {
			delete(s.tokens, id)
			return nil
		}
	}
	return nil
}

func (s *fakeRefreshTokenStore) DeleteAllForUser(ctx context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, row := range s.tokens {
		if row.UserID == userID {
			delete(s.tokens, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakeRefreshTokenStore) countForUser(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.tokens {
		if row.UserID == userID {
			count++
		}
	}
	return count
}

type fakePasswordResetStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*model.PasswordResetToken
}

func newFakePasswordResetStore() *fakePasswordResetStore {
	return &fakePasswordResetStore{nextID: 1, rows: make(map[uint]*model.PasswordResetToken)}
}

func (s *fakePasswordResetStore) Create(ctx context.Context, token *model.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token.ID = s.nextID
	s.nextID++
	copied := *token
	s.rows[token.ID] = &copied
	return nil
}

func (s *fakePasswordResetStore) GetByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.TokenHash == tokenHash {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakePasswordResetStore) MarkUsed(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Used = true
	return nil
}

func (s *fakePasswordResetStore) DeleteUnusedForUser(ctx context.Context, userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, row := range s.rows {
		if row.UserID == userID && !row.Used {
			delete(s.rows, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *fakePasswordResetStore) liveCountForUser(userID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, row := range s.rows {
		if row.UserID == userID && !row.Used && row.ExpiresAt.After(time.Now()) {
			count++
		}
	}
	return count
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *fakeMailer) SendPasswordResetEmail(ctx context.Context, toEmail, rawToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, rawToken)
	return nil
}

type fakeOrganizationStore struct {
	mu          sync.Mutex
	nextID      uint
	failCreate  bool
	orgs        map[uint]*model.Organization
	memberships []*model.OrganizationMember
}

func newFakeOrganizationStore() *fakeOrganizationStore {
	return &fakeOrganizationStore{nextID: 1, orgs: make(map[uint]*model.Organization)}
}

func (s *fakeOrganizationStore) CreateWithOwner(ctx context.Context, org *model.Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return gorm.ErrInvalidTransaction
	}
	for _, existing := range s.orgs {
		if existing.Slug == org.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	org.ID = s.nextID
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()
	s.nextID++
	copied := *org
	s.orgs[org.ID] = &copied
	s.memberships = append(s.memberships, &model.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         org.OwnerID,
		Role:           model.RoleOwner,
		Status:         model.MemberStatusActive,
	})
	return nil
}

func (s *fakeOrganizationStore) GetByID(ctx context.Context, id uint) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *org
	return &copied, nil
}

func (s *fakeOrganizationStore) GetBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.orgs {
		if org.Slug == slug {
			copied := *org
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeOrganizationStore) ListByMember(ctx context.Context, userID uint, limit, offset int) ([]model.Organization, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Organization
	for _, member := range s.memberships {
		if member.UserID != userID || member.Status != model.MemberStatusActive {
			continue
		}
		if org, ok := s.orgs[member.OrganizationID]; ok {
			matched = append(matched, *org)
		}
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *fakeOrganizationStore) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := fields["name"].(string); ok {
		org.Name = name
	}
	if logo, ok := fields["logo"].(string); ok {
		org.Logo = logo
	}
	if plan, ok := fields["plan"].(string); ok {
		org.Plan = plan
	}
	if slug, ok := fields["slug"].(string); ok {
		org.Slug = slug
	}
	return nil
}

func (s *fakeOrganizationStore) UpdateStatus(ctx context.Context, id uint, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	org, ok := s.orgs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	org.Status = status
	return nil
}

func (s *fakeOrganizationStore) GetMembership(ctx context.Context, userID, organizationID uint) (*model.OrganizationMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, member := range s.memberships {
		if member.UserID == userID && member.OrganizationID == organizationID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeOrganizationStore) addMembership(userID, organizationID uint, role, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberships = append(s.memberships, &model.OrganizationMember{
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
		Status:         status,
	})
}
