package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"fashionai/internal/auth"
	"fashionai/internal/config"
	"fashionai/internal/models"
	"fashionai/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
	}
}

// memUserRepo is an in-memory UserRepository keyed by email.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*models.User)}
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("User", id)
}
func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}
func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Email]; ok {
		return models.NewConflictError("Email already registered")
	}
	r.nextID++
	user.ID = r.nextID
	cp := *user
	r.users[user.Email] = &cp
	return nil
}
func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.Email] = &cp
	return nil
}

// productRepoStub is a stub for repository.ProductRepository.
type productRepoStub struct {
	createFn          func(context.Context, *models.Product) error
	getByIDFn         func(context.Context, uint) (*models.Product, error)
	listFn            func(context.Context, repository.ProductFilter) ([]models.Product, error)
	listByUserFn      func(context.Context, uint, int, int) ([]models.Product, error)
	listFavoritesFn   func(context.Context, uint, int, int) ([]models.Product, error)
	likedProductIDsFn func(context.Context, uint, []uint) (map[uint]bool, error)
}

func (s *productRepoStub) Create(ctx context.Context, product *models.Product) error {
	return s.createFn(ctx, product)
}
func (s *productRepoStub) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.getByIDFn(ctx, id)
}
func (s *productRepoStub) List(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	return s.listFn(ctx, filter)
}
func (s *productRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Product, error) {
	return s.listByUserFn(ctx, userID, limit, offset)
}
func (s *productRepoStub) ListFavorites(ctx context.Context, userID uint, limit, offset int) ([]models.Product, error) {
	return s.listFavoritesFn(ctx, userID, limit, offset)
}
func (s *productRepoStub) LikedProductIDs(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error) {
	return s.likedProductIDsFn(ctx, userID, productIDs)
}

func noopProductRepo() *productRepoStub {
	return &productRepoStub{
		createFn:          func(_ context.Context, _ *models.Product) error { return nil },
		getByIDFn:         func(_ context.Context, id uint) (*models.Product, error) { return &models.Product{ID: id}, nil },
		listFn:            func(_ context.Context, _ repository.ProductFilter) ([]models.Product, error) { return nil, nil },
		listByUserFn:      func(_ context.Context, _ uint, _, _ int) ([]models.Product, error) { return nil, nil },
		listFavoritesFn:   func(_ context.Context, _ uint, _, _ int) ([]models.Product, error) { return nil, nil },
		likedProductIDsFn: func(_ context.Context, _ uint, _ []uint) (map[uint]bool, error) { return map[uint]bool{}, nil },
	}
}

// favoriteRepoStub is a stub for repository.FavoriteRepository.
type favoriteRepoStub struct {
	createFn func(context.Context, uint, uint) error
	deleteFn func(context.Context, uint, uint) error
}

func (s *favoriteRepoStub) Create(ctx context.Context, userID, productID uint) error {
	return s.createFn(ctx, userID, productID)
}
func (s *favoriteRepoStub) Delete(ctx context.Context, userID, productID uint) error {
	return s.deleteFn(ctx, userID, productID)
}

func noopFavoriteRepo() *favoriteRepoStub {
	return &favoriteRepoStub{
		createFn: func(_ context.Context, _, _ uint) error { return nil },
		deleteFn: func(_ context.Context, _, _ uint) error { return nil },
	}
}

// memCodeStore is an in-memory repository.VerificationStore.
type memCodeStore struct {
	mu    sync.Mutex
	codes map[string]string
	ttls  map[string]time.Duration
}

func newMemCodeStore() *memCodeStore {
	return &memCodeStore{codes: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memCodeStore) Save(_ context.Context, email, code string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[strings.ToLower(email)] = code
	s.ttls[strings.ToLower(email)] = ttl
	return nil
}
func (s *memCodeStore) Get(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[strings.ToLower(email)], nil
}
func (s *memCodeStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, strings.ToLower(email))
	return nil
}

// mailerStub records sent codes.
type mailerStub struct {
	mu   sync.Mutex
	sent map[string]string
	err  error
}

func (m *mailerStub) SendVerificationCode(_ context.Context, to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = code
	return nil
}

func newTestTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	tokens, err := auth.NewTokenManager(&config.Config{
		JWTSecret:                "service-test-secret-0123456789abcdef",
		JWTAlgorithm:             "HS256",
		AccessTokenExpireMinutes: 30,
	})
	require.NoError(t, err)
	return tokens
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
