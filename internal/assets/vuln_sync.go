package assets

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sentrasec/sentra/internal/knowledge"
	"github.com/sentrasec/sentra/model"
)

// Ingestor is the slice of the knowledge ingest pipeline the sync needs.
type Ingestor interface {
	IngestDocuments(ctx context.Context, docs []knowledge.DocumentInput, clientID *uint) (knowledge.IngestResult, error)
}

// VulnSync pushes asset vulnerability findings into the tenant knowledge
// base so the RAG assistant can answer questions about them.
type VulnSync struct {
	assetRepo AssetRepository
	ingestor  Ingestor
}

func NewVulnSync(assetRepo AssetRepository, ingestor Ingestor) *VulnSync {
	return &VulnSync{
		assetRepo: assetRepo,
		ingestor:  ingestor,
	}
}

// SyncClient renders every vulnerability of every asset of the tenant into a
// knowledge document and ingests the batch. Assets with malformed
// vulnerability data are logged and skipped.
func (v *VulnSync) SyncClient(ctx context.Context, clientID uint) (knowledge.IngestResult, error) {
	assets, err := v.assetRepo.Find(ctx, AssetFilter{ClientID: &clientID})
	if err != nil {
		return knowledge.IngestResult{}, err
	}

	var docs []knowledge.DocumentInput
	for _, asset := range assets {
		vulns, err := Vulnerabilities(asset)
		if err != nil {
			slog.Warn("Skipping asset with malformed vulnerability data", "asset", asset.ID, "error", err)
			continue
		}
		for _, vuln := range vulns {
			docs = append(docs, knowledge.DocumentInput{
				Content: renderVulnerability(asset, vuln),
				Metadata: map[string]any{
					"source":   "vulnerability_sync",
					"asset_id": asset.ID,
					"asset":    asset.Name,
					"cve":      vuln.CVE,
					"severity": vuln.Severity,
				},
			})
		}
	}

	if len(docs) == 0 {
		return knowledge.IngestResult{}, nil
	}
	return v.ingestor.IngestDocuments(ctx, docs, &clientID)
}

func renderVulnerability(asset *model.Asset, vuln model.Vulnerability) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Vulnerability %s on asset %s", vuln.CVE, asset.Name)
	if asset.IPAddress != "" {
		fmt.Fprintf(&sb, " (%s)", asset.IPAddress)
	}
	sb.WriteString(".")
	if vuln.Title != "" {
		fmt.Fprintf(&sb, " %s.", vuln.Title)
	}
	if vuln.Severity != "" {
		fmt.Fprintf(&sb, " Severity: %s.", vuln.Severity)
	}
	if vuln.CVSS > 0 {
		fmt.Fprintf(&sb, " CVSS score: %.1f.", vuln.CVSS)
	}
	if vuln.Description != "" {
		fmt.Fprintf(&sb, " %s", vuln.Description)
	}
	return sb.String()
}
