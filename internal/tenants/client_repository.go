package tenants

import (
	"context"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type ClientFilter struct {
	CompanyID *uint
}

type ClientRepository interface {
	Find(ctx context.Context, filter ClientFilter) ([]*model.Client, error)
	FirstByID(ctx context.Context, id uint) (*model.Client, error)
	Create(ctx context.Context, client *model.Client) error
	Save(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uint) error
}

type clientRepository struct {
	db *gorm.DB
}

func (r *clientRepository) Find(ctx context.Context, filter ClientFilter) ([]*model.Client, error) {
	query := r.db.WithContext(ctx)
	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	var clients []*model.Client
	err := query.Order("name").Find(&clients).Error
	return clients, err
}

func (r *clientRepository) FirstByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepository) Save(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *clientRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Client{}, "id = ?", id).Error
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db}
}
