package tenants

import (
	"context"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Find(ctx context.Context) ([]*model.Company, error)
	FirstByID(ctx context.Context, id uint) (*model.Company, error)
	Create(ctx context.Context, company *model.Company) error
	Updates(ctx context.Context, id uint, columns map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	CountClients(ctx context.Context, id uint) (int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

func (r *companyRepository) Find(ctx context.Context) ([]*model.Company, error) {
	var companies []*model.Company
	err := r.db.WithContext(ctx).Order("name").Find(&companies).Error
	return companies, err
}

func (r *companyRepository) FirstByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) Updates(ctx context.Context, id uint, columns map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Company{}).Where("id = ?", id).Updates(columns).Error
}

func (r *companyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Company{}, "id = ?", id).Error
}

func (r *companyRepository) CountClients(ctx context.Context, id uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Client{}).Where("company_id = ?", id).Count(&count).Error
	return count, err
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db}
}
