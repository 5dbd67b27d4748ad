package repository

import (
	"context"
	"testing"
	"time"

	"fashionai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTime(minutes int) time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes) * time.Minute)
}

func productIDs(products []models.Product) []uint {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestProductRepository_List(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com", "alice")
	abcMaker := seedUser(t, db, "maker@example.com", "xABCx")

	p1 := seedProduct(t, db, alice, "Blue shirt with ABC logo", "shirt", testTime(0))
	p2 := seedProduct(t, db, abcMaker, "plain mug", "mug", testTime(1))
	p3 := seedProduct(t, db, alice, "striped hoodie", "shirt", testTime(2))
	p4 := seedProduct(t, db, alice, "100% cotton_tee", "shirt", testTime(3))

	t.Run("newest first with owner preloaded", func(t *testing.T) {
		got, err := repo.List(ctx, ProductFilter{Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []uint{p4.ID, p3.ID, p2.ID, p1.ID}, productIDs(got))
		require.NotNil(t, got[0].User)
		assert.Equal(t, "alice", got[0].User.Username)
	})

	t.Run("search matches prompt or username case-insensitively", func(t *testing.T) {
		got, err := repo.List(ctx, ProductFilter{Search: "abc", Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []uint{p2.ID, p1.ID}, productIDs(got))
	})

	t.Run("search escapes wildcards", func(t *testing.T) {
		got, err := repo.List(ctx, ProductFilter{Search: "0%", Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []uint{p4.ID}, productIDs(got))

		got, err = repo.List(ctx, ProductFilter{Search: "n_t", Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []uint{p4.ID}, productIDs(got))
	})

	t.Run("product type filter", func(t *testing.T) {
		got, err := repo.List(ctx, ProductFilter{ProductType: "mug", Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, []uint{p2.ID}, productIDs(got))
	})

	t.Run("skip and limit", func(t *testing.T) {
		got, err := repo.List(ctx, ProductFilter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []uint{p3.ID}, productIDs(got))
	})
}

func TestProductRepository_ListByUserAndFavorites(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewProductRepository(db)
	favs := NewFavoriteRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "a@example.com", "a")
	b := seedUser(t, db, "b@example.com", "")
	pb1 := seedProduct(t, db, b, "first", "shirt", testTime(0))
	pb2 := seedProduct(t, db, b, "second", "shirt", testTime(1))

	mine, err := repo.ListByUser(ctx, b.ID, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{pb2.ID, pb1.ID}, productIDs(mine))

	none, err := repo.ListByUser(ctx, a.ID, 100, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, favs.Create(ctx, a.ID, pb2.ID))
	require.NoError(t, favs.Create(ctx, a.ID, pb1.ID))
	// Make liking order explicit.
	require.NoError(t, db.Model(&models.Favorite{}).Where("product_id = ?", pb2.ID).Update("created_at", testTime(10)).Error)
	require.NoError(t, db.Model(&models.Favorite{}).Where("product_id = ?", pb1.ID).Update("created_at", testTime(20)).Error)

	liked, err := repo.ListFavorites(ctx, a.ID, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{pb1.ID, pb2.ID}, productIDs(liked))
	require.NotNil(t, liked[0].User)
	assert.Equal(t, "b", models.NewProductOut(liked[0], true).CreatorName)

	ids, err := repo.LikedProductIDs(ctx, a.ID, []uint{pb1.ID, pb2.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{pb1.ID: true, pb2.ID: true}, ids)
}

func TestProductRepository_GetByIDNotFound(t *testing.T) {
	db := setupSQLiteDB(t)
	_, err := NewProductRepository(db).GetByID(context.Background(), 42)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
