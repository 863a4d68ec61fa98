package assets

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"github.com/sentrasec/sentra/model"
	"gorm.io/gorm"
)

var (
	ErrAssetNotFound  = errors.New("asset not found")
	ErrAssetNameEmpty = errors.New("asset name cannot be empty")
	ErrInvalidIP      = errors.New("invalid ip address")
)

type CreateAssetOptions struct {
	ClientID        uint
	Name            string
	IPAddress       string
	Status          string
	Vulnerabilities []model.Vulnerability
}

type UpdateAssetOptions struct {
	Name            *string
	IPAddress       *string
	Status          *string
	Vulnerabilities []model.Vulnerability
}

type AssetService struct {
	assetRepo AssetRepository
}

func NewAssetService(assetRepo AssetRepository) *AssetService {
	return &AssetService{assetRepo: assetRepo}
}

func (s *AssetService) List(ctx context.Context, filter AssetFilter) ([]*model.Asset, error) {
	return s.assetRepo.Find(ctx, filter)
}

func (s *AssetService) Get(ctx context.Context, id uint) (*model.Asset, error) {
	asset, err := s.assetRepo.FirstByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAssetNotFound
	}
	return asset, err
}

func (s *AssetService) Create(ctx context.Context, opts CreateAssetOptions) (*model.Asset, error) {
	if opts.Name == "" {
		return nil, ErrAssetNameEmpty
	}
	if opts.IPAddress != "" && net.ParseIP(opts.IPAddress) == nil {
		return nil, ErrInvalidIP
	}

	vulns, err := json.Marshal(opts.Vulnerabilities)
	if err != nil {
		return nil, err
	}
	asset := &model.Asset{
		ClientID:        opts.ClientID,
		Name:            opts.Name,
		IPAddress:       opts.IPAddress,
		Status:          opts.Status,
		Vulnerabilities: vulns,
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) Update(ctx context.Context, id uint, opts UpdateAssetOptions) (*model.Asset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if opts.Name != nil {
		if *opts.Name == "" {
			return nil, ErrAssetNameEmpty
		}
		asset.Name = *opts.Name
	}
	if opts.IPAddress != nil {
		if *opts.IPAddress != "" && net.ParseIP(*opts.IPAddress) == nil {
			return nil, ErrInvalidIP
		}
		asset.IPAddress = *opts.IPAddress
	}
	if opts.Status != nil {
		asset.Status = *opts.Status
	}
	if opts.Vulnerabilities != nil {
		vulns, err := json.Marshal(opts.Vulnerabilities)
		if err != nil {
			return nil, err
		}
		asset.Vulnerabilities = vulns
	}

	if err := s.assetRepo.Save(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

func (s *AssetService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.assetRepo.Delete(ctx, id)
}

// Vulnerabilities decodes the jsonb findings list of an asset.
func Vulnerabilities(asset *model.Asset) ([]model.Vulnerability, error) {
	var vulns []model.Vulnerability
	if len(asset.Vulnerabilities) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(asset.Vulnerabilities, &vulns); err != nil {
		return nil, err
	}
	return vulns, nil
}
