package users

import (
	"context"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type ProfileFilter struct {
	CompanyID *uint
	ClientID  *uint
}

type ProfileRepository interface {
	Find(ctx context.Context, filter ProfileFilter) ([]*model.Profile, error)
	FirstByUserID(ctx context.Context, userID string) (*model.Profile, error)
	FirstByID(ctx context.Context, id uint) (*model.Profile, error)
	Create(ctx context.Context, profile *model.Profile) error
	Updates(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

type profileRepository struct {
	db *gorm.DB
}

func (r *profileRepository) Find(ctx context.Context, filter ProfileFilter) ([]*model.Profile, error) {
	query := r.db.WithContext(ctx)
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	var profiles []*model.Profile
	err := query.Order("display_name").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepository) FirstByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FirstByID(ctx context.Context, id uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepository) Updates(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Profile{}).Where("id = ?", id).Updates(columns).Error
}

func (r *profileRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Profile{}, "id = ?", id).Error
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db}
}
