package cmd

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/twistlock-tools/twistq/pkg/query"
	"github.com/twistlock-tools/twistq/pkg/render"
	"github.com/twistlock-tools/twistq/pkg/types"
)

// displayMode is the closed set of report facets the CLI can print.
type displayMode int

const (
	modePackages displayMode = iota
	modeBinaries
	modeCVEs
	modeListTypes
	modeListImages
)

// display is one selected facet; pkgType is set only for modePackages.
type display struct {
	pkgType string
	mode    displayMode
}

// supportedPackageTypes are the ecosystem types the console reports.
var supportedPackageTypes = []string{"binary", "gem", "jar", "nodejs", "package", "python", "windows"}

var errUnknownSearchType = errors.New("is not a valid search type")

var errInvalidColumnSpec = errors.New("columns must be a comma-separated list of field=HEADING pairs")

// parseDisplay maps the searchtype argument onto a display variant.
func parseDisplay(arg string) (display, error) {
	switch arg {
	case "binaries":
		return display{mode: modeBinaries}, nil
	case "cves":
		return display{mode: modeCVEs}, nil
	case "list":
		return display{mode: modeListTypes}, nil
	case "images":
		return display{mode: modeListImages}, nil
	}
	for _, pkgType := range supportedPackageTypes {
		if arg == pkgType {
			return display{mode: modePackages, pkgType: arg}, nil
		}
	}
	return display{}, fmt.Errorf("%s %w (use one of %s, binaries, cves, list, images)",
		arg, errUnknownSearchType, strings.Join(supportedPackageTypes, ", "))
}

// parseLocator turns an image spec into a locator: a sha256: prefix selects
// lookup by digest, anything else is a tag reference.
func parseLocator(imageSpec string) query.Locator {
	if sha, ok := strings.CutPrefix(imageSpec, "sha256:"); ok {
		return query.Locator{SHA: sha}
	}
	return query.Locator{Tag: imageSpec}
}

// parseColumns parses a --columns override like "name=NAME,license=LICENSE".
// Order is significant and the parsed set replaces the mode's default set
// entirely.
func parseColumns(spec string) ([]render.Column, error) {
	if spec == "" {
		return nil, nil
	}
	parts := strings.Split(spec, ",")
	columns := make([]render.Column, 0, len(parts))
	for _, part := range parts {
		field, heading, ok := strings.Cut(part, "=")
		if !ok || field == "" {
			return nil, fmt.Errorf("%q: %w", part, errInvalidColumnSpec)
		}
		columns = append(columns, render.Column{Field: field, Heading: heading})
	}
	return columns, nil
}

// defaultColumns returns the column set and sort key a display mode renders
// with when the user supplies no override.
func defaultColumns(d display) ([]render.Column, string) {
	switch d.mode {
	case modeBinaries:
		return []render.Column{
			{Field: "path", Heading: "PATH"},
			{Field: "cveCount", Heading: "CVE COUNT"},
		}, "path"
	case modeCVEs:
		return []render.Column{
			{Field: "packageName", Heading: "PACKAGE"},
			{Field: "packageVersion", Heading: "VERSION"},
			{Field: "cve", Heading: "CVE"},
			{Field: "severity", Heading: "SEVERITY"},
			{Field: "status", Heading: "STATUS"},
			{Field: "link", Heading: "LINK"},
		}, "packageName"
	default:
		return []render.Column{
			{Field: "name", Heading: "NAME"},
			{Field: "version", Heading: "VERSION"},
			{Field: "license", Heading: "LICENSE"},
		}, "name"
	}
}

// runDisplay extracts the selected facet of the image named by imageSpec
// and writes it to w. columns and sortKey may be zero-valued to use the
// mode's defaults.
func runDisplay(w io.Writer, doc *types.ScanDocument, imageSpec string, d display, columns []render.Column, sortKey string) error {
	defCols, defSort := defaultColumns(d)
	if columns == nil {
		columns = defCols
	}
	if sortKey == "" {
		sortKey = defSort
	}
	loc := parseLocator(imageSpec)

	switch d.mode {
	case modeListImages:
		writeImageList(w, query.ListImageIdentifiers(doc))
		return nil
	case modeListTypes:
		pkgTypes, err := query.AvailablePackageTypes(doc, loc)
		if err != nil {
			return err
		}
		if len(pkgTypes) > 0 {
			fmt.Fprintln(w, strings.Join(pkgTypes, " "))
		}
		return nil
	case modeBinaries:
		binaries, err := query.BinariesOfImage(doc, loc)
		if err != nil {
			return err
		}
		return render.Table(w, binaryRows(binaries), columns, sortKey)
	case modeCVEs:
		cves, err := query.CVEsOfImage(doc, loc)
		if err != nil {
			return err
		}
		return render.Table(w, cveRows(cves), columns, sortKey)
	default:
		packages, err := query.PackagesOfType(doc, loc, d.pkgType)
		if err != nil {
			return err
		}
		return render.Table(w, packageRows(packages), columns, sortKey)
	}
}

// writeImageList prints one "id tag" line per image, sorted by id so the
// output is deterministic.
func writeImageList(w io.Writer, ids map[string]string) {
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	for _, id := range sorted {
		fmt.Fprintf(w, "%s %s\n", id, ids[id])
	}
}

func packageRows(packages []types.Package) []render.Row {
	rows := make([]render.Row, 0, len(packages))
	for _, pkg := range packages {
		rows = append(rows, render.Row{
			"name":    pkg.Name,
			"version": pkg.Version,
			"license": pkg.License,
		})
	}
	return rows
}

func binaryRows(binaries []types.Binary) []render.Row {
	rows := make([]render.Row, 0, len(binaries))
	for _, bin := range binaries {
		rows = append(rows, render.Row{
			"name":     bin.Name,
			"path":     bin.Path,
			"md5":      bin.MD5,
			"cveCount": bin.CVECount,
		})
	}
	return rows
}

func cveRows(cves []types.CVE) []render.Row {
	rows := make([]render.Row, 0, len(cves))
	for _, cve := range cves {
		rows = append(rows, render.Row{
			"cve":            cve.CVE,
			"packageName":    cve.PackageName,
			"packageVersion": cve.PackageVersion,
			"severity":       cve.Severity,
			"status":         cve.Status,
			"link":           cve.Link,
		})
	}
	return rows
}
