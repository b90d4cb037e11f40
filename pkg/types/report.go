package types

import (
	"encoding/json"
	"fmt"
)

// Severity levels reported for a CVE by the console.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// ScanDocument is the payload returned by the console's /api/v1/images
// endpoint: one scan report per image, in the order the console returned
// them. The document is read-only for the lifetime of an invocation.
type ScanDocument struct {
	Images []ImageReport `json:"images"`
}

// ImageReport is the scan result for a single container image.
type ImageReport struct {
	ID       string         `json:"id"`
	RepoTag  string         `json:"repoTag"`
	Packages []PackageGroup `json:"packages"`
	Binaries []Binary       `json:"binaries"`
	CVEs     []CVE          `json:"cveVulnerabilities"`
}

// PackageGroup holds the packages of one ecosystem type (e.g. "package",
// "python", "nodejs", "jar", "gem", "windows"). The console emits at most
// one group per type.
type PackageGroup struct {
	Type     string    `json:"pkgsType"`
	Packages []Package `json:"pkgs"`
}

// Package is a single installed package.
type Package struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	License string `json:"license"`
}

// Binary is an executable discovered in the image filesystem.
type Binary struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	MD5      string `json:"md5"`
	CVECount int    `json:"cveCount"`
}

// CVE is one vulnerability affecting a package in the image.
type CVE struct {
	CVE            string `json:"cve"`
	PackageName    string `json:"packageName"`
	PackageVersion string `json:"packageVersion"`
	Severity       string `json:"severity"`
	Status         string `json:"status"`
	Link           string `json:"link"`
}

// ParseDocument decodes a scan document from its JSON form. Shape problems
// are rejected here so the query layer only ever sees well-formed records.
func ParseDocument(data []byte) (*ScanDocument, error) {
	var doc ScanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing scan document: %w", err)
	}
	for i := range doc.Images {
		if doc.Images[i].ID == "" {
			return nil, fmt.Errorf("scan document image %d has no id", i)
		}
	}
	return &doc, nil
}
