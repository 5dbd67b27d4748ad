package service

import (
	"context"
	"strings"

	"fashionai/internal/models"
	"fashionai/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	hashCost int
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo, hashCost: bcrypt.DefaultCost}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// UpdateMe applies a partial update. Nil fields are left unchanged; a new
// password is re-hashed and a new email must not belong to another user.
func (s *UserService) UpdateMe(ctx context.Context, userID uint, in models.UserUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		if email == "" {
			return nil, models.NewValidationError("email must not be empty")
		}
		if email != user.Email {
			other, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != user.ID {
				return nil, models.NewConflictError("Email already registered")
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, models.NewValidationError("password must not be empty")
		}
		hashed, err := hashPassword(*in.Password, s.hashCost)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}
	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.PersonalLink != nil {
		user.PersonalLink = strings.TrimSpace(*in.PersonalLink)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
