package tenants

import (
	"context"
	"errors"
	"net/mail"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

type CreateClientOptions struct {
	Name        string
	Email       string
	CompanyID   uint
	EDREndpoint string
}

type UpdateClientOptions struct {
	Name        *string
	Email       *string
	Status      *string
	EDREndpoint *string
}

type ClientService struct {
	clientRepo  ClientRepository
	companyRepo CompanyRepository
}

func NewClientService(clientRepo ClientRepository, companyRepo CompanyRepository) *ClientService {
	return &ClientService{
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
	}
}

func (s *ClientService) List(ctx context.Context, filter ClientFilter) ([]*model.Client, error) {
	return s.clientRepo.Find(ctx, filter)
}

func (s *ClientService) Get(ctx context.Context, id uint) (*model.Client, error) {
	client, err := s.clientRepo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	return client, err
}

// Create provisions a tenant under a company and generates its API key. The
// clear key is returned exactly once; only the bcrypt hash is stored in the
// settings map.
func (s *ClientService) Create(ctx context.Context, opts CreateClientOptions) (*model.Client, string, error) {
	if opts.Name == "" {
		return nil, "", ErrClientNameEmpty
	}
	if _, err := mail.ParseAddress(opts.Email); err != nil {
		return nil, "", ErrInvalidEmail
	}
	if _, err := s.companyRepo.FirstByID(ctx, opts.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCompanyNotFound
		}
		return nil, "", err
	}

	apiKey := generateAPIKey()
	keyHash, err := hashAPIKey(apiKey)
	if err != nil {
		return nil, "", err
	}

	client := &model.Client{
		Name:      opts.Name,
		Email:     opts.Email,
		CompanyID: opts.CompanyID,
	}
	client.SetSetting(model.ClientSettingStatus, model.ClientStatusActive)
	client.SetSetting(model.ClientSettingAPIKeyHash, keyHash)
	if opts.EDREndpoint != "" {
		client.SetSetting(model.ClientSettingEDREndpoint, opts.EDREndpoint)
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, "", err
	}
	return client, apiKey, nil
}

func (s *ClientService) Update(ctx context.Context, id uint, opts UpdateClientOptions) (*model.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.Name != nil {
		if *opts.Name == "" {
			return nil, ErrClientNameEmpty
		}
		client.Name = *opts.Name
	}
	if opts.Email != nil {
		if _, err := mail.ParseAddress(*opts.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		client.Email = *opts.Email
	}
	if opts.Status != nil {
		client.SetSetting(model.ClientSettingStatus, *opts.Status)
	}
	if opts.EDREndpoint != nil {
		client.SetSetting(model.ClientSettingEDREndpoint, *opts.EDREndpoint)
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// RotateAPIKey replaces the tenant API key and returns the new clear key.
func (s *ClientService) RotateAPIKey(ctx context.Context, id uint) (string, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	apiKey := generateAPIKey()
	keyHash, err := hashAPIKey(apiKey)
	if err != nil {
		return "", err
	}
	client.SetSetting(model.ClientSettingAPIKeyHash, keyHash)
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return "", err
	}
	return apiKey, nil
}

// AuthenticateAPIKey resolves a client by id and checks the presented key.
// Used by machine integrations (EDR forwarders) hitting the ingest API.
func (s *ClientService) AuthenticateAPIKey(ctx context.Context, id uint, key string) (*model.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := VerifyAPIKey(client.APIKeyHash(), key); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, id)
}
