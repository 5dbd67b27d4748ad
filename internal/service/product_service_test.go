package service

import (
	"context"
	"testing"
	"time"

	"fashionai/internal/models"
	"fashionai/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_Normalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   Page
		want Page
	}{
		{"zero values use defaults", Page{}, Page{Skip: 0, Limit: DefaultPageLimit}},
		{"negative skip becomes zero", Page{Skip: -5, Limit: 10}, Page{Skip: 0, Limit: 10}},
		{"negative limit uses default", Page{Limit: -1}, Page{Limit: DefaultPageLimit}},
		{"limit is capped", Page{Skip: 3, Limit: 1000}, Page{Skip: 3, Limit: MaxPageLimit}},
		{"in range is kept", Page{Skip: 1, Limit: 1}, Page{Skip: 1, Limit: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestProductService_ListProducts(t *testing.T) {
	t.Parallel()

	owner := &models.User{ID: 2, Email: "bea@example.com"}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo := noopProductRepo()
	var gotFilter repository.ProductFilter
	repo.listFn = func(_ context.Context, f repository.ProductFilter) ([]models.Product, error) {
		gotFilter = f
		return []models.Product{
			{ID: 10, UserID: 2, User: owner, Prompt: "red dress", CreatedAt: now},
			{ID: 11, UserID: 2, User: owner, Prompt: "blue dress", CreatedAt: now.Add(-time.Hour)},
		}, nil
	}
	repo.likedProductIDsFn = func(_ context.Context, userID uint, ids []uint) (map[uint]bool, error) {
		assert.Equal(t, uint(1), userID)
		assert.ElementsMatch(t, []uint{10, 11}, ids)
		return map[uint]bool{11: true}, nil
	}

	svc := NewProductService(repo, noopFavoriteRepo())
	out, err := svc.ListProducts(context.Background(), ListProductsInput{
		UserID:      1,
		ProductType: " dress ",
		Search:      "Red",
		Page:        Page{Skip: -1, Limit: 500},
	})
	require.NoError(t, err)

	assert.Equal(t, repository.ProductFilter{ProductType: "dress", Search: "Red", Limit: MaxPageLimit, Offset: 0}, gotFilter)
	require.Len(t, out, 2)
	assert.Equal(t, "bea", out[0].CreatorName)
	assert.False(t, out[0].Liked)
	assert.True(t, out[1].Liked)
}

func TestProductService_ListUserProducts_Empty(t *testing.T) {
	t.Parallel()

	svc := NewProductService(noopProductRepo(), noopFavoriteRepo())
	out, err := svc.ListUserProducts(context.Background(), 1, Page{})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestProductService_ListFavorites_AlwaysLiked(t *testing.T) {
	t.Parallel()

	repo := noopProductRepo()
	repo.listFavoritesFn = func(_ context.Context, userID uint, limit, offset int) ([]models.Product, error) {
		assert.Equal(t, uint(3), userID)
		assert.Equal(t, 5, limit)
		assert.Equal(t, 2, offset)
		return []models.Product{{ID: 1, User: &models.User{Username: "bob"}}}, nil
	}
	svc := NewProductService(repo, noopFavoriteRepo())

	out, err := svc.ListFavorites(context.Background(), 3, Page{Skip: 2, Limit: 5})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Liked)
	assert.Equal(t, "bob", out[0].CreatorName)
}

func TestProductService_LikeProduct(t *testing.T) {
	t.Parallel()

	t.Run("missing product is not found", func(t *testing.T) {
		t.Parallel()
		repo := noopProductRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Product, error) {
			return nil, models.NewNotFoundError("Product", id)
		}
		favs := noopFavoriteRepo()
		favs.createFn = func(_ context.Context, _, _ uint) error {
			t.Fatal("favorite must not be created for a missing product")
			return nil
		}
		err := NewProductService(repo, favs).LikeProduct(context.Background(), 1, 42)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("duplicate like surfaces already favorited", func(t *testing.T) {
		t.Parallel()
		favs := noopFavoriteRepo()
		favs.createFn = func(_ context.Context, _, _ uint) error {
			return models.NewAlreadyFavoritedError(nil)
		}
		err := NewProductService(noopProductRepo(), favs).LikeProduct(context.Background(), 1, 2)
		assertAppErrorCode(t, err, models.CodeAlreadyFavorited)
	})

	t.Run("unlike without like is not found", func(t *testing.T) {
		t.Parallel()
		favs := noopFavoriteRepo()
		favs.deleteFn = func(_ context.Context, _, productID uint) error {
			return models.NewNotFoundError("Favorite for product", productID)
		}
		err := NewProductService(noopProductRepo(), favs).UnlikeProduct(context.Background(), 1, 2)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestProductService_CreateProduct(t *testing.T) {
	t.Parallel()

	repo := noopProductRepo()
	repo.createFn = func(_ context.Context, p *models.Product) error {
		p.ID = 5
		return nil
	}
	p, err := NewProductService(repo, noopFavoriteRepo()).CreateProduct(context.Background(), 9, models.ProductCreate{
		Prompt:            "linen shirt",
		ProductType:       "shirt",
		GeneratedImageURL: "https://img/gen.png",
		ProductImageURL:   "https://img/prod.png",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(5), p.ID)
	assert.Equal(t, uint(9), p.UserID)
	assert.Equal(t, "shirt", p.ProductType)
}
