package repository

import (
	"context"

	"fashionai/internal/models"

	"gorm.io/gorm"
)

// FavoriteRepository creates and removes like records.
type FavoriteRepository interface {
	Create(ctx context.Context, userID, productID uint) error
	Delete(ctx context.Context, userID, productID uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Create inserts the pair in its own transaction. The unique index on
// (user_id, product_id) is the only duplicate check.
func (r *favoriteRepository) Create(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&models.Favorite{UserID: userID, ProductID: productID}).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewAlreadyFavoritedError(err)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *favoriteRepository) Delete(ctx context.Context, userID, productID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Favorite for product", productID)
	}
	return nil
}
