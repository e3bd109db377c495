package services

import (
	"errors"

	"gorm.io/gorm"

	"taskplanner/internal/apperr"
	"taskplanner/internal/auth"
	"taskplanner/internal/models"
)

type RegistrationRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterService interface {
	Register(db *gorm.DB, req RegistrationRequest) (*models.User, error)
}

type RegisterServiceImpl struct {
	bcryptCost int
}

func NewRegisterService(bcryptCost int) *RegisterServiceImpl {
	return &RegisterServiceImpl{bcryptCost: bcryptCost}
}

// Register stores a new user. The email uniqueness check runs before
// the username check, so a request that collides on both reports the
// email conflict.
func (s *RegisterServiceImpl) Register(db *gorm.DB, req RegistrationRequest) (*models.User, error) {
	var existing models.User
	if err := db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	if err := db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, apperr.Conflict("username already used")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	hashed, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hashed,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	return &user, nil
}
