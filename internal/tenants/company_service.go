package tenants

import (
	"context"
	"errors"
	"net/mail"

	"github.com/sentrasec/sentra/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateCompanyOptions struct {
	Name     string
	Email    string
	Settings map[string]any
}

type UpdateCompanyOptions struct {
	Name     *string
	Email    *string
	Settings map[string]any
}

type CompanyService struct {
	companyRepo CompanyRepository
}

func NewCompanyService(companyRepo CompanyRepository) *CompanyService {
	return &CompanyService{companyRepo: companyRepo}
}

func (s *CompanyService) List(ctx context.Context) ([]*model.Company, error) {
	return s.companyRepo.Find(ctx)
}

func (s *CompanyService) Get(ctx context.Context, id uint) (*model.Company, error) {
	company, err := s.companyRepo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	return company, err
}

func (s *CompanyService) Create(ctx context.Context, opts CreateCompanyOptions) (*model.Company, error) {
	if opts.Name == "" {
		return nil, ErrCompanyNameEmpty
	}
	if _, err := mail.ParseAddress(opts.Email); err != nil {
		return nil, ErrInvalidEmail
	}

	company := &model.Company{
		Name:     opts.Name,
		Email:    opts.Email,
		Settings: datatypes.JSONMap(opts.Settings),
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) Update(ctx context.Context, id uint, opts UpdateCompanyOptions) (*model.Company, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	if opts.Name != nil {
		if *opts.Name == "" {
			return nil, ErrCompanyNameEmpty
		}
		columns["name"] = *opts.Name
	}
	if opts.Email != nil {
		if _, err := mail.ParseAddress(*opts.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		columns["email"] = *opts.Email
	}
	if opts.Settings != nil {
		columns["settings"] = datatypes.JSONMap(opts.Settings)
	}
	if len(columns) > 0 {
		if err := s.companyRepo.Updates(ctx, id, columns); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a company. Companies that still own clients are rejected so
// tenant data never becomes unreachable.
func (s *CompanyService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.companyRepo.CountClients(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCompanyHasClients
	}
	return s.companyRepo.Delete(ctx, id)
}
