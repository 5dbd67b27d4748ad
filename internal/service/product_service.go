package service

import (
	"context"
	"strings"

	"fashionai/internal/models"
	"fashionai/internal/observability"
	"fashionai/internal/repository"
)

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 100
)

// Page is a skip/limit window over a listing.
type Page struct {
	Skip  int
	Limit int
}

// Normalize clamps the window: negative skip becomes 0, a non-positive limit
// becomes the default, and limits above the maximum are capped.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

type ListProductsInput struct {
	UserID      uint
	ProductType string
	Search      string
	Page        Page
}

type ProductService struct {
	productRepo  repository.ProductRepository
	favoriteRepo repository.FavoriteRepository
}

func NewProductService(productRepo repository.ProductRepository, favoriteRepo repository.FavoriteRepository) *ProductService {
	return &ProductService{productRepo: productRepo, favoriteRepo: favoriteRepo}
}

func (s *ProductService) CreateProduct(ctx context.Context, userID uint, in models.ProductCreate) (*models.Product, error) {
	product := &models.Product{
		UserID:            userID,
		Prompt:            in.Prompt,
		ProductType:       strings.TrimSpace(in.ProductType),
		GeneratedImageURL: strings.TrimSpace(in.GeneratedImageURL),
		ProductImageURL:   strings.TrimSpace(in.ProductImageURL),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// ListProducts returns the catalog newest first, each product marked with
// whether in.UserID has liked it.
func (s *ProductService) ListProducts(ctx context.Context, in ListProductsInput) ([]models.ProductOut, error) {
	page := in.Page.Normalize()
	products, err := s.productRepo.List(ctx, repository.ProductFilter{
		ProductType: strings.TrimSpace(in.ProductType),
		Search:      strings.TrimSpace(in.Search),
		Limit:       page.Limit,
		Offset:      page.Skip,
	})
	if err != nil {
		return nil, err
	}
	return s.withLikes(ctx, in.UserID, products)
}

func (s *ProductService) ListUserProducts(ctx context.Context, userID uint, page Page) ([]models.Product, error) {
	page = page.Normalize()
	products, err := s.productRepo.ListByUser(ctx, userID, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (s *ProductService) ListCreatedProducts(ctx context.Context, userID uint, page Page) ([]models.ProductOut, error) {
	products, err := s.ListUserProducts(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withLikes(ctx, userID, products)
}

// ListFavorites returns the products userID liked, most recently liked first.
func (s *ProductService) ListFavorites(ctx context.Context, userID uint, page Page) ([]models.ProductOut, error) {
	page = page.Normalize()
	products, err := s.productRepo.ListFavorites(ctx, userID, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProductOut, 0, len(products))
	for _, p := range products {
		out = append(out, models.NewProductOut(p, true))
	}
	return out, nil
}

func (s *ProductService) LikeProduct(ctx context.Context, userID, productID uint) (err error) {
	defer func() { observability.RecordFavorite("like", err) }()

	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.favoriteRepo.Create(ctx, userID, productID)
}

func (s *ProductService) UnlikeProduct(ctx context.Context, userID, productID uint) (err error) {
	defer func() { observability.RecordFavorite("unlike", err) }()
	return s.favoriteRepo.Delete(ctx, userID, productID)
}

func (s *ProductService) withLikes(ctx context.Context, userID uint, products []models.Product) ([]models.ProductOut, error) {
	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	liked, err := s.productRepo.LikedProductIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProductOut, 0, len(products))
	for _, p := range products {
		out = append(out, models.NewProductOut(p, liked[p.ID]))
	}
	return out, nil
}
