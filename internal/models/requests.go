package models

// UserCreate is the registration payload.
type UserCreate struct {
	Email        string `json:"email" form:"email" validate:"required,email,max=255"`
	Password     string `json:"password" form:"password" validate:"required,password"`
	Username     string `json:"username" form:"username" validate:"omitempty,username"`
	Bio          string `json:"bio" form:"bio" validate:"max=2000"`
	PersonalLink string `json:"personal_link" form:"personal_link" validate:"omitempty,max=255"`
}

// VerifyAndRegisterRequest is a registration payload gated by an emailed code.
type VerifyAndRegisterRequest struct {
	UserCreate
	VerificationCode string `json:"verification_code" form:"verification_code" validate:"required,len=6,numeric"`
}

// UserUpdate is a partial profile update. Nil fields are left unchanged.
type UserUpdate struct {
	Email        *string `json:"email" validate:"omitempty,email,max=255"`
	Password     *string `json:"password" validate:"omitempty,password"`
	Username     *string `json:"username" validate:"omitempty,username"`
	Bio          *string `json:"bio" validate:"omitempty,max=2000"`
	PersonalLink *string `json:"personal_link" validate:"omitempty,max=255"`
}

// LoginRequest mirrors the OAuth2 password form: username carries the email.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// VerificationCodeRequest asks for a code to be emailed.
type VerificationCodeRequest struct {
	Email string `json:"email" query:"email" form:"email" validate:"required,email,max=255"`
}

// ProductCreate is the product creation payload.
type ProductCreate struct {
	Prompt            string `json:"prompt" validate:"required"`
	ProductType       string `json:"product_type" validate:"required,max=50"`
	GeneratedImageURL string `json:"generated_image_url" validate:"required"`
	ProductImageURL   string `json:"product_image_url" validate:"required"`
}

// LikeRequest identifies the product to like or unlike.
type LikeRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

// Token is the bearer token response.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Msg is a plain acknowledgement.
type Msg struct {
	Msg string `json:"msg"`
}

// ImageUploadResponse carries the public delivery URL of an uploaded image.
type ImageUploadResponse struct {
	ImageURL string `json:"imageUrl"`
}
