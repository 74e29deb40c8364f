package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/nenecchuu/kaef-hris-sub002/internal/core/domain"
	"github.com/nenecchuu/kaef-hris-sub002/internal/core/port"
	"github.com/nenecchuu/kaef-hris-sub002/internal/infra/telemetry"
	"github.com/nenecchuu/kaef-hris-sub002/internal/repository"
	"github.com/nenecchuu/kaef-hris-sub002/internal/usecase"
)

type stubAuditRepo struct {
	entries []domain.AuditEntry
	total   int64
}

func (s *stubAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	entry.ID = int64(len(s.entries) + 1)
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) List(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	return s.entries, s.total, nil
}

func (s *stubAuditRepo) ListAll(_ context.Context, _ domain.AuditFilter) ([]domain.AuditEntry, error) {
	return s.entries, nil
}

type stubUserRepo struct {
	mu    sync.Mutex
	users map[int64]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	repo := &stubUserRepo{users: make(map[int64]*domain.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *stubUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) DisplayNames(_ context.Context, ids []int64) (map[int64]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make(map[int64]string)
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			names[id] = user.Name
		}
	}
	return names, nil
}

func (s *stubUserRepo) MarkResetPasswordPending(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			user.IsResetPasswordPending = true
		}
	}
	return nil
}

func (s *stubUserRepo) ClearResetPasswordPending(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.IsResetPasswordPending = false
		return nil
	}
	return repository.ErrNotFound
}

func (s *stubUserRepo) IsResetPasswordPending(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		return user.IsResetPasswordPending, nil
	}
	return false, repository.ErrNotFound
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id int64, hash string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		user.PasswordHash = hash
		return nil
	}
	return repository.ErrNotFound
}

type stubTokenRepo struct {
	mu     sync.Mutex
	byHash map[string]*domain.PasswordResetToken
}

func newStubTokenRepo() *stubTokenRepo {
	return &stubTokenRepo{byHash: make(map[string]*domain.PasswordResetToken)}
}

func (s *stubTokenRepo) CreatePasswordReset(_ context.Context, token domain.PasswordResetToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := token
	s.byHash[token.TokenHash] = &copied
	return nil
}

func (s *stubTokenRepo) GetPasswordResetByHash(_ context.Context, hash string) (*domain.PasswordResetToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byHash[hash]; ok {
		copied := *token
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubTokenRepo) ConsumePasswordReset(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, token := range s.byHash {
		if token.ID == id && token.UsedAt == nil {
			used := time.Now()
			token.UsedAt = &used
			return nil
		}
	}
	return repository.ErrNotFound
}

type stubMailer struct {
	mu   sync.Mutex
	sent []port.PasswordResetEmail
}

func (s *stubMailer) SendPasswordReset(_ context.Context, msg port.PasswordResetEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

type stubEvents struct{}

func (stubEvents) PublishAuditRecorded(context.Context, domain.AuditRecordedEvent) error { return nil }
func (stubEvents) PublishPasswordResetDispatched(context.Context, domain.PasswordResetDispatchedEvent) error {
	return nil
}
func (stubEvents) PublishPasswordChanged(context.Context, domain.PasswordChangedEvent) error {
	return nil
}

type stubPendingCache struct {
	mu     sync.Mutex
	values map[int64]bool
}

func newStubPendingCache() *stubPendingCache {
	return &stubPendingCache{values: make(map[int64]bool)}
}

func (s *stubPendingCache) Get(_ context.Context, userID int64) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, found := s.values[userID]
	return pending, found, nil
}

func (s *stubPendingCache) Set(_ context.Context, userID int64, pending bool, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[userID] = pending
	return nil
}

func (s *stubPendingCache) Invalidate(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, userID)
	return nil
}

type stubQueue struct {
	mu   sync.Mutex
	jobs []domain.BulkPasswordResetJob
}

func (s *stubQueue) Enqueue(_ context.Context, job domain.BulkPasswordResetJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
	return nil
}

func newAuditService(t *testing.T, audits *stubAuditRepo, users *stubUserRepo) *usecase.AuditService {
	t.Helper()
	return usecase.NewAuditService(
		audits, users, stubEvents{},
		telemetry.NewProvider("handlers_"+sanitizeMetricName(t.Name())),
		zaptest.NewLogger(t),
		time.UTC,
	)
}

func sanitizeMetricName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
