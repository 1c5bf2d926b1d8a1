package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"rezeptapp/internal/ai"
	"rezeptapp/internal/auth"
	"rezeptapp/internal/model"
	"rezeptapp/internal/repository"
)

func testLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func adminSession(id uint) *auth.Session {
	return &auth.Session{UserID: id, Username: "admin", Role: model.RoleAdmin, IsLoggedIn: true}
}

func userSession(id uint) *auth.Session {
	return &auth.Session{UserID: id, Username: "user", Role: model.RoleUser, IsLoggedIn: true}
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) RegistrationCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) NextRegistrationNumber(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uint, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfileImage(ctx context.Context, id uint, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// WithTransaction runs fn against the mock itself.
func (m *MockUserRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.UserRepository) error) error {
	return fn(ctx, m)
}

// MockFavoriteRepository is a mock implementation of FavoriteRepository.
type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Find(ctx context.Context, userID, recipeID uint) (*model.Favorite, error) {
	args := m.Called(ctx, userID, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	args := m.Called(ctx, favorite)
	return args.Error(0)
}

func (m *MockFavoriteRepository) Delete(ctx context.Context, userID, recipeID uint) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Favorite), args.Error(1)
}

func (m *MockFavoriteRepository) FavoriteRecipeIDs(ctx context.Context, userID uint, recipeIDs []uint) ([]uint, error) {
	args := m.Called(ctx, userID, recipeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockRecipeRepository is a mock implementation of RecipeRepository.
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) Update(ctx context.Context, recipe *model.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) FindByID(ctx context.Context, id uint) (*model.Recipe, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, filter repository.RecipeFilter) ([]model.Recipe, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRevocationStore is a mock implementation of auth.RevocationStore.
type MockRevocationStore struct {
	mock.Mock
}

func (m *MockRevocationStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockRevocationStore) RevokeUserSessions(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRevocationStore) IsRevoked(ctx context.Context, s *auth.Session) (bool, error) {
	args := m.Called(ctx, s)
	return args.Bool(0), args.Error(1)
}

// memoryKV is an in-process auth.KeyValue.
type memoryKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string][]byte{}}
}

func (m *memoryKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryKV) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type countingObserver struct {
	mu            sync.Mutex
	registrations map[string]int
	moderation    map[string]int
	toggles       map[bool]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		registrations: map[string]int{},
		moderation:    map[string]int{},
		toggles:       map[bool]int{},
	}
}

func (o *countingObserver) ObserveRegistration(role string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registrations[role]++
}

func (o *countingObserver) ObserveModeration(action, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.moderation[action+"/"+outcome]++
}

func (o *countingObserver) ObserveFavoriteToggle(isFavorite bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.toggles[isFavorite]++
}

// fakeProvider answers every call with canned content.
type fakeProvider struct {
	content   string
	imageURL  string
	err       error
	completes []ai.CompletionRequest
	images    []ai.ImageRequest
	keys      []string
}

func (p *fakeProvider) Complete(_ context.Context, apiKey string, req ai.CompletionRequest) (string, error) {
	p.keys = append(p.keys, apiKey)
	p.completes = append(p.completes, req)
	return p.content, p.err
}

func (p *fakeProvider) GenerateImage(_ context.Context, apiKey string, req ai.ImageRequest) (string, error) {
	p.keys = append(p.keys, apiKey)
	p.images = append(p.images, req)
	return p.imageURL, p.err
}
