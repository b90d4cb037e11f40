// Package query locates image records inside a scan document and projects
// out their sub-collections. Every function is a pure projection over an
// already-parsed document: no I/O, no logging, no state.
package query

import (
	"errors"

	"github.com/twistlock-tools/twistq/pkg/types"
)

const shaPrefix = "sha256:"

var (
	// ErrInvalidLocator is returned when a locator does not carry exactly
	// one of a sha or a tag. This is a caller contract violation and is
	// checked before any lookup.
	ErrInvalidLocator = errors.New("exactly one of sha or tag must be specified")

	// ErrImageNotFound is returned when no record in the document matches
	// the locator, including when the document is empty or nil.
	ErrImageNotFound = errors.New("requested image cannot be found")

	// ErrNoPackages is returned when the located image has no package
	// group of the requested ecosystem type.
	ErrNoPackages = errors.New("no packages of requested type in image")
)

// Locator selects one image record out of a scan document, by sha digest
// (without the "sha256:" prefix) or by repository:tag reference.
type Locator struct {
	SHA string
	Tag string
}

// LocateImage returns the first record in document order whose id matches
// "sha256:"+loc.SHA or whose tag exactly matches loc.Tag. Document order is
// the tie-break when multiple records match.
func LocateImage(doc *types.ScanDocument, loc Locator) (*types.ImageReport, error) {
	if (loc.SHA == "") == (loc.Tag == "") {
		return nil, ErrInvalidLocator
	}
	if doc == nil {
		return nil, ErrImageNotFound
	}
	for i := range doc.Images {
		img := &doc.Images[i]
		if loc.SHA != "" && img.ID == shaPrefix+loc.SHA {
			return img, nil
		}
		if loc.Tag != "" && img.RepoTag == loc.Tag {
			return img, nil
		}
	}
	return nil, ErrImageNotFound
}

// ListImageIdentifiers returns a mapping from image id to tag for every
// record in the document. Ids are expected to be unique; if one repeats the
// last record wins, which is acceptable for this advisory, display-only
// view.
func ListImageIdentifiers(doc *types.ScanDocument) map[string]string {
	ids := make(map[string]string)
	if doc == nil {
		return ids
	}
	for i := range doc.Images {
		ids[doc.Images[i].ID] = doc.Images[i].RepoTag
	}
	return ids
}

// AllPackageGroups returns every package group of the located image.
func AllPackageGroups(doc *types.ScanDocument, loc Locator) ([]types.PackageGroup, error) {
	img, err := LocateImage(doc, loc)
	if err != nil {
		return nil, err
	}
	return img.Packages, nil
}

// PackagesOfType returns the packages of the first group whose ecosystem
// type exactly matches pkgType. A matched group with no packages is a
// successful empty result; only a wholly absent type is ErrNoPackages.
func PackagesOfType(doc *types.ScanDocument, loc Locator, pkgType string) ([]types.Package, error) {
	groups, err := AllPackageGroups(doc, loc)
	if err != nil {
		return nil, err
	}
	for _, group := range groups {
		if group.Type == pkgType {
			return group.Packages, nil
		}
	}
	return nil, ErrNoPackages
}

// AvailablePackageTypes returns the ecosystem type of each group present on
// the located image, in document order. The result is not deduplicated or
// sorted.
func AvailablePackageTypes(doc *types.ScanDocument, loc Locator) ([]string, error) {
	groups, err := AllPackageGroups(doc, loc)
	if err != nil {
		return nil, err
	}
	pkgTypes := make([]string, 0, len(groups))
	for _, group := range groups {
		pkgTypes = append(pkgTypes, group.Type)
	}
	return pkgTypes, nil
}

// BinariesOfImage returns the binaries discovered in the located image. An
// empty result is valid, not an error.
func BinariesOfImage(doc *types.ScanDocument, loc Locator) ([]types.Binary, error) {
	img, err := LocateImage(doc, loc)
	if err != nil {
		return nil, err
	}
	return img.Binaries, nil
}

// CVEsOfImage returns the CVEs reported against the located image. An
// absent or empty list is valid, not an error.
func CVEsOfImage(doc *types.ScanDocument, loc Locator) ([]types.CVE, error) {
	img, err := LocateImage(doc, loc)
	if err != nil {
		return nil, err
	}
	return img.CVEs, nil
}
