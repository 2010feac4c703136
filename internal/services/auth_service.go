package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/nyinsen/internal/models"
	"github.com/terraincognita07/nyinsen/internal/security"
	"gorm.io/gorm"
)

const temporaryPasswordLength = 12

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserNotFound           = errors.New("user not found")
)

type AuthUserRepository interface {
	ExistsByNormalizedEmail(email string) (bool, error)
	FindByNormalizedEmail(email string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	CreateWithProfile(user *models.User) error
	UpdatePassword(userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
	now   func() time.Time
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users, now: time.Now}
}

func (service *AuthService) Register(input RegistrationInput) (models.User, error) {
	email, password, err := NormalizeRegistrationInput(input)
	if err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailAlreadyRegistered
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		CycleLength:  models.DefaultCycleLength,
		PeriodLength: models.DefaultPeriodLength,
		CreatedAt:    service.now().UTC(),
	}
	if err := service.users.CreateWithProfile(&user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate never tells apart an unknown email from a wrong password.
func (service *AuthService) Authenticate(emailRaw string, passwordRaw string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, passwordRaw)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !security.PasswordMatches(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func (service *AuthService) ChangePassword(userID uint, input PasswordChangeInput) error {
	user, err := service.FindByID(userID)
	if err != nil {
		return err
	}
	newPassword, err := ValidatePasswordChange(user.PasswordHash, input)
	if err != nil {
		return err
	}
	return service.storePassword(userID, newPassword, false)
}

// ResetPassword replaces the password with a temporary one and forces a change
// on the next sign in.
func (service *AuthService) ResetPassword(emailRaw string) (string, error) {
	user, err := service.findForReset(emailRaw)
	if err != nil {
		return "", err
	}

	temporary, err := security.TemporaryPassword(temporaryPasswordLength)
	if err != nil {
		return "", fmt.Errorf("generate temporary password: %w", err)
	}
	if err := service.storePassword(user.ID, temporary, true); err != nil {
		return "", err
	}
	return temporary, nil
}

// SetPassword stores an operator-chosen password that already meets the
// password policy. The account is not forced through a change.
func (service *AuthService) SetPassword(emailRaw string, password string) error {
	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}
	user, err := service.findForReset(emailRaw)
	if err != nil {
		return err
	}
	return service.storePassword(user.ID, password, false)
}

func (service *AuthService) findForReset(emailRaw string) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrAuthEmailInvalid
	}

	user, err := service.users.FindByNormalizedEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

func (service *AuthService) storePassword(userID uint, password string, mustChange bool) error {
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(userID, hash, mustChange); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
