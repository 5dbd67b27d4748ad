package repository

import (
	"context"
	"errors"

	"fashionai/internal/models"

	"gorm.io/gorm"
)

// ProductFilter narrows a catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	ProductType string
	Search      string
	Limit       int
	Offset      int
}

// ProductRepository defines the interface for product and favorite listing.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Product, error)
	ListFavorites(ctx context.Context, userID uint, limit, offset int) ([]models.Product, error)
	LikedProductIDs(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("User").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Product", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &product, nil
}

// List returns catalog products newest first, with the owner preloaded.
// Search matches the prompt or the owner's username, case-insensitively.
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*").
		Preload("User")

	if filter.ProductType != "" {
		query = query.Where("products.product_type = ?", filter.ProductType)
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query = query.
			Joins("JOIN users ON users.id = products.user_id").
			Where("LOWER(products.prompt) LIKE ? ESCAPE '\\' OR LOWER(users.username) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var products []models.Product
	err := query.
		Order("products.created_at DESC, products.id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&products).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

func (r *productRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

// ListFavorites returns the products userID liked, most recently liked first.
func (r *productRepository) ListFavorites(ctx context.Context, userID uint, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("products.*").
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ?", userID).
		Preload("User").
		Order("favorites.created_at DESC, favorites.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return products, nil
}

func (r *productRepository) LikedProductIDs(ctx context.Context, userID uint, productIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(productIDs))
	if userID == 0 || len(productIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ? AND product_id IN ?", userID, productIDs).
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
