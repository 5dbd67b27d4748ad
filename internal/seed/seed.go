// Package seed populates the database with demo users, products and likes.
// It is intended for development and testing only.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"fashionai/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

var productTypes = []string{"t-shirt", "hoodie", "dress", "jacket", "sneakers", "tote bag", "cap", "scarf"}

// Options configures a seeding run.
type Options struct {
	NumUsers       int
	NumProducts    int
	MaxLikesPerUsr int
	Clean          bool
	Seed           int64
}

// Seeder writes demo data through GORM.
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	rng      *rand.Rand
	hashCost int
}

func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeder{
		db:       db,
		faker:    gofakeit.New(seed),
		rng:      rand.New(rand.NewSource(seed)),
		hashCost: bcrypt.DefaultCost,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users     int
	Products  int
	Favorites int
}

// Run seeds users, then products spread over them, then random likes.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return sum, err
		}
	}

	users, err := s.createUsers(ctx, opts.NumUsers)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	products, err := s.createProducts(ctx, users, opts.NumProducts)
	if err != nil {
		return sum, err
	}
	sum.Products = len(products)

	sum.Favorites, err = s.createFavorites(ctx, users, products, opts.MaxLikesPerUsr)
	return sum, err
}

// ClearAll removes favorites, products and users, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	db := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.Favorite{}, &models.Product{}, &models.VerificationCode{}, &models.User{}} {
		if err := db.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

func (s *Seeder) createUsers(ctx context.Context, count int) ([]models.User, error) {
	if count <= 0 {
		return nil, nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		first, last := s.faker.FirstName(), s.faker.LastName()
		username := strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, i))
		users = append(users, models.User{
			Email:        fmt.Sprintf("%s@example.com", username),
			Password:     string(hashed),
			Username:     truncate(username, 50),
			Bio:          s.faker.Sentence(10),
			PersonalLink: s.faker.URL(),
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

func (s *Seeder) createProducts(ctx context.Context, users []models.User, count int) ([]models.Product, error) {
	if count <= 0 {
		return nil, nil
	}
	products := make([]models.Product, 0, count)
	for i := 0; i < count; i++ {
		owner := users[s.rng.Intn(len(users))]
		productType := productTypes[s.rng.Intn(len(productTypes))]
		color := s.faker.Color()
		products = append(products, models.Product{
			UserID:            owner.ID,
			Prompt:            fmt.Sprintf("%s %s %s with %s details", s.faker.Adjective(), strings.ToLower(color), productType, s.faker.Noun()),
			ProductType:       productType,
			GeneratedImageURL: fmt.Sprintf("https://picsum.photos/seed/gen-%s/800/800", s.faker.UUID()),
			ProductImageURL:   fmt.Sprintf("https://picsum.photos/seed/prod-%s/800/800", s.faker.UUID()),
			CreatedAt:         time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour),
		})
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&products, 100).Error; err != nil {
		return nil, fmt.Errorf("create products: %w", err)
	}
	return products, nil
}

func (s *Seeder) createFavorites(ctx context.Context, users []models.User, products []models.Product, maxPerUser int) (int, error) {
	if maxPerUser <= 0 || len(products) == 0 {
		return 0, nil
	}
	var favorites []models.Favorite
	for _, u := range users {
		n := s.rng.Intn(maxPerUser + 1)
		for _, idx := range s.rng.Perm(len(products))[:min(n, len(products))] {
			favorites = append(favorites, models.Favorite{UserID: u.ID, ProductID: products[idx].ID})
		}
	}
	if len(favorites) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&favorites, 200).Error
	if err != nil {
		return 0, fmt.Errorf("create favorites: %w", err)
	}
	return len(favorites), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
