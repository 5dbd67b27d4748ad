package models

import "time"

// Product is an AI-generated artifact owned by a user. Products are never updated or deleted.
type Product struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index" json:"user_id"`
	User              *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Prompt            string    `gorm:"type:text;not null" json:"prompt"`
	ProductType       string    `gorm:"size:50;not null" json:"product_type"`
	GeneratedImageURL string    `gorm:"type:text;not null" json:"generated_image_url"`
	ProductImageURL   string    `gorm:"type:text;not null" json:"product_image_url"`
	CreatedAt         time.Time `gorm:"index" json:"created_at"`
}

// ProductOut is a product enriched with its creator's display name and the
// requesting user's like state.
type ProductOut struct {
	Product
	CreatorName string `json:"creator_name"`
	Liked       bool   `json:"liked"`
}

// NewProductOut builds the response shape. The owner must be preloaded.
func NewProductOut(p Product, liked bool) ProductOut {
	out := ProductOut{Product: p, Liked: liked}
	if p.User != nil {
		out.CreatorName = p.User.DisplayName()
	}
	return out
}
