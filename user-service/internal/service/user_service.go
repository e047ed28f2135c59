package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Walid-hh/PFA/user-service/internal/dto"
	"github.com/Walid-hh/PFA/user-service/internal/models"
	"github.com/Walid-hh/PFA/user-service/internal/repository"
	"github.com/Walid-hh/PFA/user-service/pkg/rabbitmq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrValidation       = errors.New("invalid input")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("an account with this email already exists")
	ErrDuplicatePhone   = errors.New("this phone number is already in use")
	ErrDuplicateLicense = errors.New("this driver license is already in use")
	ErrAccountInactive  = errors.New("account is deactivated")
	ErrWrongPassword    = errors.New("current password is incorrect")
	ErrWeakPassword     = errors.New("new password must be at least 6 characters")
	ErrAlreadyDriver    = errors.New("account is already a driver")
	ErrInvalidDate      = errors.New("invalid date format, expected YYYY-MM-DD")
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// ProfilePatch carries partial updates: nil fields are left untouched.
type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	Phone       *string
	Bio         *string
	DateOfBirth *string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, email string, patch ProfilePatch) (*models.User, error)
	ChangePassword(ctx context.Context, email, current, newPassword string) error
	BecomeDriver(ctx context.Context, email, license string) (*models.User, error)
	Deactivate(ctx context.Context, email string) error
}

type userService struct {
	repo      repository.UserRepository
	publisher *rabbitmq.Publisher
}

func NewUserService(repo repository.UserRepository, publisher *rabbitmq.Publisher) UserService {
	return &userService{repo: repo, publisher: publisher}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if strings.TrimSpace(in.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, fmt.Errorf("%w: first and last name are required", ErrValidation)
	}

	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email uniqueness: %w", err)
	}

	if in.Phone != nil && *in.Phone != "" {
		if _, err := s.repo.FindByPhone(ctx, *in.Phone); err == nil {
			return nil, ErrDuplicatePhone
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check phone uniqueness: %w", err)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Status:    models.StatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish("user.registered", user)
	return user, nil
}

// Authenticate fails closed: a deactivated account is rejected even when
// the password matches. Callers must collapse every failure into a single
// credentials-invalid response.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrWrongPassword
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, email string, patch ProfilePatch) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		newPhone := *patch.Phone
		if newPhone != "" && (user.Phone == nil || newPhone != *user.Phone) {
			if other, err := s.repo.FindByPhone(ctx, newPhone); err == nil && other.ID != user.ID {
				return nil, ErrDuplicatePhone
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check phone uniqueness: %w", err)
			}
		}
		if newPhone == "" {
			user.Phone = nil
		} else {
			user.Phone = &newPhone
		}
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.DateOfBirth != nil && *patch.DateOfBirth != "" {
		dob, err := time.ParseInLocation(dto.DateLayout, *patch.DateOfBirth, time.Local)
		if err != nil {
			return nil, ErrInvalidDate
		}
		user.DateOfBirth = &dob
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.publish("user.updated", user)
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, email, current, newPassword string) error {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if len(newPassword) < 6 {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)

	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *userService) BecomeDriver(ctx context.Context, email, license string) (*models.User, error) {
	if strings.TrimSpace(license) == "" {
		return nil, fmt.Errorf("%w: driver license is required", ErrValidation)
	}

	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsDriver {
		return nil, ErrAlreadyDriver
	}

	if other, err := s.repo.FindByDriverLicense(ctx, license); err == nil && other.ID != user.ID {
		return nil, ErrDuplicateLicense
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check license uniqueness: %w", err)
	}

	user.IsDriver = true
	user.DriverLicense = &license
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.publish("user.became_driver", user)
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, email string) error {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	user.Status = models.StatusInactive
	if err := s.repo.Save(ctx, user); err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	s.publish("user.deactivated", user)
	return nil
}

func (s *userService) publish(routingKey string, user *models.User) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(routingKey, dto.ToUserEvent(user))
}
