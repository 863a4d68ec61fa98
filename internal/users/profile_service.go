package users

import (
	"context"
	"errors"
	"net/mail"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidEmail    = errors.New("invalid email address")
)

type RegisterProfileOptions struct {
	UserID      string
	DisplayName string
	Email       string
}

type UpdateProfileOptions struct {
	DisplayName *string
	CompanyID   *uint
	ClientID    *uint
	Role        *string
}

type ProfileService struct {
	profileRepo ProfileRepository
}

func NewProfileService(profileRepo ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// GetByUserID resolves an authenticated identity to its persisted profile.
func (s *ProfileService) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profileRepo.FirstByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

func (s *ProfileService) GetByID(ctx context.Context, id uint) (*model.Profile, error) {
	profile, err := s.profileRepo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}

func (s *ProfileService) List(ctx context.Context, filter ProfileFilter) ([]*model.Profile, error) {
	return s.profileRepo.Find(ctx, filter)
}

// Register creates the profile for a newly registered identity. The external
// auth service fires this once per registration; a replayed event for an
// existing subject just returns the stored profile.
func (s *ProfileService) Register(ctx context.Context, opts RegisterProfileOptions) (*model.Profile, error) {
	if _, err := mail.ParseAddress(opts.Email); err != nil {
		return nil, ErrInvalidEmail
	}

	existing, err := s.profileRepo.FirstByUserID(ctx, opts.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile := &model.Profile{
		UserID:      opts.UserID,
		DisplayName: opts.DisplayName,
		Email:       opts.Email,
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, id uint, opts UpdateProfileOptions) (*model.Profile, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	if opts.DisplayName != nil {
		columns["display_name"] = *opts.DisplayName
	}
	if opts.CompanyID != nil {
		columns["company_id"] = *opts.CompanyID
	}
	if opts.ClientID != nil {
		columns["client_id"] = *opts.ClientID
	}
	if opts.Role != nil {
		columns["role"] = *opts.Role
	}
	if len(columns) > 0 {
		if err := s.profileRepo.Updates(ctx, id, columns); err != nil {
			return nil, err
		}
	}
	return s.GetByID(ctx, id)
}

func (s *ProfileService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.profileRepo.Delete(ctx, id)
}
