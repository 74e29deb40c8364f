package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/repository"
)

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	nextID  int64

	listEntries []domain.AuditEntry
	listTotal   int64
	listErr     error

	createdAt time.Time
}

func (m *mockAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry.ID = m.nextID
	entry.CreatedAt = m.createdAt
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) List(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return m.listEntries, m.listTotal, m.listErr
}

func (m *mockAuditRepo) ListAll(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, error) {
	return m.listEntries, m.listErr
}

func (m *mockAuditRepo) recorded() []domain.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User

	getErrs    map[int64]error
	markedWith [][]int64
	markErr    error

	passwordUpdates map[int64]string
	clearedPending  []int64
}

func newMockUserRepo(users ...*domain.User) *mockUserRepo {
	repo := &mockUserRepo{
		users:           make(map[int64]*domain.User),
		passwordUpdates: make(map[int64]string),
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.getErrs[id]; ok {
		return nil, err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make(map[int64]string)
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			names[id] = user.Name
		}
	}
	return names, nil
}

func (m *mockUserRepo) MarkResetPasswordPending(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.markedWith = append(m.markedWith, append([]int64(nil), ids...))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			user.IsResetPasswordPending = true
		}
	}
	return nil
}

func (m *mockUserRepo) ClearResetPasswordPending(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsResetPasswordPending = false
	m.clearedPending = append(m.clearedPending, id)
	return nil
}

func (m *mockUserRepo) IsResetPasswordPending(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	return user.IsResetPasswordPending, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id int64, hash string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	m.passwordUpdates[id] = hash
	return nil
}

type mockTokenRepo struct {
	mu     sync.Mutex
	byHash map[string]*domain.PasswordResetToken
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{byHash: make(map[string]*domain.PasswordResetToken)}
}

func (m *mockTokenRepo) CreatePasswordReset(_ context.Context, token domain.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := token
	m.byHash[token.TokenHash] = &copied
	return nil
}

func (m *mockTokenRepo) GetPasswordResetByHash(_ context.Context, hash string) (*domain.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *token
	return &copied, nil
}

func (m *mockTokenRepo) ConsumePasswordReset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.byHash {
		if token.ID == id {
			if token.UsedAt != nil {
				return repository.ErrNotFound
			}
			used := time.Now()
			token.UsedAt = &used
			return nil
		}
	}
	return repository.ErrNotFound
}

type mockMailer struct {
	mu     sync.Mutex
	sent   []port.PasswordResetEmail
	failTo map[string]error
}

func (m *mockMailer) SendPasswordReset(_ context.Context, msg port.PasswordResetEmail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failTo[msg.To]; ok {
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}

type mockEventPublisher struct {
	mu         sync.Mutex
	recorded   []domain.AuditRecordedEvent
	dispatched []domain.PasswordResetDispatchedEvent
	changed    []domain.PasswordChangedEvent
}

func (m *mockEventPublisher) PublishAuditRecorded(_ context.Context, event domain.AuditRecordedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, event)
	return nil
}

func (m *mockEventPublisher) PublishPasswordResetDispatched(_ context.Context, event domain.PasswordResetDispatchedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched = append(m.dispatched, event)
	return nil
}

func (m *mockEventPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, event)
	return nil
}

type mockPendingCache struct {
	mu          sync.Mutex
	values      map[int64]bool
	invalidated []int64
}

func newMockPendingCache() *mockPendingCache {
	return &mockPendingCache{values: make(map[int64]bool)}
}

func (m *mockPendingCache) Get(_ context.Context, userID int64) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pending, found := m.values[userID]
	return pending, found, nil
}

func (m *mockPendingCache) Set(_ context.Context, userID int64, pending bool, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[userID] = pending
	return nil
}

func (m *mockPendingCache) Invalidate(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, userID)
	m.invalidated = append(m.invalidated, userID)
	return nil
}

type mockResetQueue struct {
	mu   sync.Mutex
	jobs []domain.BulkPasswordResetJob
}

func (m *mockResetQueue) Enqueue(_ context.Context, job domain.BulkPasswordResetJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
	return nil
}
