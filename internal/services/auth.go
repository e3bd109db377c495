package services

import (
	"errors"

	"gorm.io/gorm"

	"taskplanner/internal/apperr"
	"taskplanner/internal/auth"
	"taskplanner/internal/models"
)

// loginFailedMessage is deliberately identical for unknown accounts
// and wrong passwords, so login cannot be used to enumerate emails.
const loginFailedMessage = "invalid email or password"

type AuthService interface {
	Login(db *gorm.DB, email, password string) (string, error)
	Whoami(db *gorm.DB, token string) (*models.User, error)
}

type AuthServiceImpl struct {
	issuer *auth.TokenIssuer
}

func NewAuthService(issuer *auth.TokenIssuer) *AuthServiceImpl {
	return &AuthServiceImpl{issuer: issuer}
}

func (s *AuthServiceImpl) Login(db *gorm.DB, email, password string) (string, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.Unauthorized(loginFailedMessage)
		}
		return "", apperr.Internal(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperr.Unauthorized(loginFailedMessage)
	}

	token, err := s.issuer.Issue(user.Email)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// Whoami resolves a token to the user it was issued for. A valid
// token whose account has disappeared is Unauthorized, not NotFound,
// so account lifecycle does not leak through this path.
func (s *AuthServiceImpl) Whoami(db *gorm.DB, token string) (*models.User, error) {
	subject, err := s.issuer.Verify(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.Where("email = ?", subject).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthorized("invalid or expired token")
		}
		return nil, apperr.Internal(err)
	}
	return &user, nil
}
