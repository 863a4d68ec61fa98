package assets

import (
	"context"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type AssetFilter struct {
	ClientID *uint
	Status   string
}

type AssetRepository interface {
	Find(ctx context.Context, filter AssetFilter) ([]*model.Asset, error)
	FirstByID(ctx context.Context, id uint) (*model.Asset, error)
	Create(ctx context.Context, asset *model.Asset) error
	Save(ctx context.Context, asset *model.Asset) error
	Delete(ctx context.Context, id uint) error
}

type assetRepository struct {
	db *gorm.DB
}

func (r *assetRepository) Find(ctx context.Context, filter AssetFilter) ([]*model.Asset, error) {
	query := r.db.WithContext(ctx)
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	var assets []*model.Asset
	err := query.Order("name").Find(&assets).Error
	return assets, err
}

func (r *assetRepository) FirstByID(ctx context.Context, id uint) (*model.Asset, error) {
	var asset model.Asset
	if err := r.db.WithContext(ctx).First(&asset, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) Create(ctx context.Context, asset *model.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *assetRepository) Save(ctx context.Context, asset *model.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

func (r *assetRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Asset{}, "id = ?", id).Error
}

func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db}
}
