package assets

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/model"
)

type stubAssetRepo struct {
	assets []*model.Asset
}

func (r *stubAssetRepo) Find(ctx context.Context, filter AssetFilter) ([]*model.Asset, error) {
	var out []*model.Asset
	for _, a := range r.assets {
		if filter.ClientID != nil && a.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *stubAssetRepo) FirstByID(ctx context.Context, id uint) (*model.Asset, error) {
	for _, a := range r.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, ErrAssetNotFound
}

func (r *stubAssetRepo) Create(ctx context.Context, asset *model.Asset) error { return nil }
func (r *stubAssetRepo) Save(ctx context.Context, asset *model.Asset) error   { return nil }
func (r *stubAssetRepo) Delete(ctx context.Context, id uint) error            { return nil }

type stubIngestor struct {
	docs     []knowledge.DocumentInput
	clientID *uint
}

func (s *stubIngestor) IngestDocuments(ctx context.Context, docs []knowledge.DocumentInput, clientID *uint) (knowledge.IngestResult, error) {
	s.docs = docs
	s.clientID = clientID
	return knowledge.IngestResult{DocumentsProcessed: len(docs), ChunksProcessed: len(docs)}, nil
}

func mustVulns(t *testing.T, vulns []model.Vulnerability) []byte {
	t.Helper()
	data, err := json.Marshal(vulns)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestSyncClient(t *testing.T) {
	repo := &stubAssetRepo{assets: []*model.Asset{
		{
			ID: 1, ClientID: 7, Name: "web-01", IPAddress: "10.0.0.5",
			Vulnerabilities: mustVulns(t, []model.Vulnerability{
				{CVE: "CVE-2024-1234", Title: "nginx overflow", Severity: "critical", CVSS: 9.8},
				{CVE: "CVE-2024-9999", Severity: "low"},
			}),
		},
		{ID: 2, ClientID: 8, Name: "other-tenant"},
	}}
	ingestor := &stubIngestor{}
	sync := NewVulnSync(repo, ingestor)

	result, err := sync.SyncClient(context.Background(), 7)
	if err != nil {
		t.Fatalf("SyncClient failed: %v", err)
	}
	if result.DocumentsProcessed != 2 {
		t.Errorf("got %d documents, want 2", result.DocumentsProcessed)
	}
	if ingestor.clientID == nil || *ingestor.clientID != 7 {
		t.Error("ingest not scoped to the requested tenant")
	}

	doc := ingestor.docs[0]
	if !strings.Contains(doc.Content, "CVE-2024-1234") || !strings.Contains(doc.Content, "web-01") {
		t.Errorf("rendered document missing identifiers: %q", doc.Content)
	}
	if doc.Metadata["source"] != "vulnerability_sync" || doc.Metadata["cve"] != "CVE-2024-1234" {
		t.Errorf("unexpected metadata: %v", doc.Metadata)
	}
}

func TestSyncClientMalformedDataSkipped(t *testing.T) {
	repo := &stubAssetRepo{assets: []*model.Asset{
		{ID: 1, ClientID: 7, Name: "broken", Vulnerabilities: []byte(`{not json`)},
		{
			ID: 2, ClientID: 7, Name: "ok",
			Vulnerabilities: mustVulns(t, []model.Vulnerability{{CVE: "CVE-2024-1", Severity: "high"}}),
		},
	}}
	ingestor := &stubIngestor{}
	sync := NewVulnSync(repo, ingestor)

	result, err := sync.SyncClient(context.Background(), 7)
	if err != nil {
		t.Fatalf("SyncClient failed: %v", err)
	}
	if result.DocumentsProcessed != 1 {
		t.Errorf("got %d documents, want 1 (broken asset skipped)", result.DocumentsProcessed)
	}
}

func TestSyncClientNoFindings(t *testing.T) {
	sync := NewVulnSync(&stubAssetRepo{}, &stubIngestor{})
	result, err := sync.SyncClient(context.Background(), 7)
	if err != nil || result.ChunksProcessed != 0 {
		t.Errorf("empty tenant: got %+v, %v", result, err)
	}
}
