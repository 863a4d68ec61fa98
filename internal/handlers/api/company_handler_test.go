package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/tenants"
	"github.com/sentrasec/sentra/model"
)

type stubCompanyService struct {
	companies []*model.Company
	err       error
	created   *tenants.CreateCompanyOptions
}

func (s *stubCompanyService) List(ctx context.Context) ([]*model.Company, error) {
	return s.companies, s.err
}

func (s *stubCompanyService) Get(ctx context.Context, id uint) (*model.Company, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, company := range s.companies {
		if company.ID == id {
			return company, nil
		}
	}
	return nil, tenants.ErrCompanyNotFound
}

func (s *stubCompanyService) Create(ctx context.Context, opts tenants.CreateCompanyOptions) (*model.Company, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = &opts
	return &model.Company{ID: 42, Name: opts.Name, Email: opts.Email}, nil
}

func (s *stubCompanyService) Update(ctx context.Context, id uint, opts tenants.UpdateCompanyOptions) (*model.Company, error) {
	return nil, s.err
}

func (s *stubCompanyService) Delete(ctx context.Context, id uint) error {
	return s.err
}

func companyApp(svc CompanyService) *fiber.App {
	handler := NewCompanyHandler(svc)
	app := fiber.New()
	app.Get("/api/companies", handler.GetCompanies)
	app.Get("/api/companies/:id", handler.GetCompany)
	app.Post("/api/companies", handler.PostCompany)
	app.Delete("/api/companies/:id", handler.DeleteCompany)
	return app
}

func TestGetCompanies(t *testing.T) {
	svc := &stubCompanyService{companies: []*model.Company{{ID: 1, Name: "Acme"}}}
	app := companyApp(svc)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/companies", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status code: %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	var body APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.APIVersion != "1.0" {
		t.Errorf("apiVersion: %q", body.APIVersion)
	}
	if body.Data == nil || body.Error != nil {
		t.Errorf("unexpected envelope: %+v", body)
	}
}

func TestGetCompanyNotFound(t *testing.T) {
	app := companyApp(&stubCompanyService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/companies/99", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status code: %d, want %d", resp.StatusCode, fiber.StatusNotFound)
	}
	var body APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error == nil || body.Error.Code != fiber.StatusNotFound {
		t.Errorf("error envelope: %+v", body.Error)
	}
}

func TestPostCompany(t *testing.T) {
	svc := &stubCompanyService{}
	app := companyApp(svc)

	payload, _ := json.Marshal(fiber.Map{"name": "Acme", "email": "ops@acme.test"})
	req := httptest.NewRequest("POST", "/api/companies", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status code: %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}
	if svc.created == nil || svc.created.Name != "Acme" {
		t.Errorf("create options not forwarded: %+v", svc.created)
	}
}

func TestPostCompanyValidationError(t *testing.T) {
	app := companyApp(&stubCompanyService{err: tenants.ErrCompanyNameEmpty})

	payload, _ := json.Marshal(fiber.Map{"email": "ops@acme.test"})
	req := httptest.NewRequest("POST", "/api/companies", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("status code: %d, want %d", resp.StatusCode, fiber.StatusBadRequest)
	}
}

func TestDeleteCompanyWithClients(t *testing.T) {
	app := companyApp(&stubCompanyService{err: tenants.ErrCompanyHasClients})

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/companies/1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("status code: %d, want %d", resp.StatusCode, fiber.StatusConflict)
	}
}
