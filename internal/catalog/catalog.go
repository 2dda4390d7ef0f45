// Package catalog associates flight identifiers with their per-role raster
// paths. A missing role is a structural absence in the record, never an
// index-alignment accident between parallel lists.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aridfield/thermacorrect/internal/fsutil"
	"github.com/aridfield/thermacorrect/internal/monitoring"
)

// Raster roles. The five feature roles feed the regressor; the prior model
// and ground truth form the residual target.
const (
	RolePriorModel  = "M1"
	RoleGroundTruth = "thermal_ir"
	RoleTGI         = "TGI"
)

// FeatureRoles lists the auxiliary terrain/illumination rasters, in the
// column order the training schema uses.
var FeatureRoles = []string{RoleTGI, "height", "shade", "real_solar", "skyview"}

// Layout constants of the on-disk convention.
const (
	outputSubdir  = "Output data"
	inputSubdir   = "Input data"
	croppedPrefix = "cropped_"
)

// CropKey identifies one (flight, crop) pair.
type CropKey struct {
	Flight string
	Crop   int
}

func (k CropKey) String() string {
	return fmt.Sprintf("%s_%d", k.Flight, k.Crop)
}

// CropRecord holds the raster path for every role of one crop.
type CropRecord struct {
	Flight      string
	Crop        int
	PriorModel  string
	GroundTruth string
	Features    map[string]string
}

// missingRoles lists the roles the record has no path for, in schema order.
func (r *CropRecord) missingRoles() []string {
	var missing []string
	if r.PriorModel == "" {
		missing = append(missing, RolePriorModel)
	}
	for _, role := range FeatureRoles {
		if r.Features[role] == "" {
			missing = append(missing, role)
		}
	}
	if r.GroundTruth == "" {
		missing = append(missing, RoleGroundTruth)
	}
	return missing
}

// CatalogIncompleteError reports partial role coverage for a flight.
type CatalogIncompleteError struct {
	Flight string
	Detail string
}

func (e *CatalogIncompleteError) Error() string {
	return fmt.Sprintf("catalog incomplete for flight %q: %s", e.Flight, e.Detail)
}

// Catalog indexes crop records by (flight, crop).
type Catalog struct {
	Root    string
	Records map[CropKey]*CropRecord
}

// Flights returns the sorted unique flight identifiers in the catalog.
func (c *Catalog) Flights() []string {
	seen := make(map[string]bool)
	for key := range c.Records {
		seen[key.Flight] = true
	}
	flights := make([]string, 0, len(seen))
	for f := range seen {
		flights = append(flights, f)
	}
	sort.Strings(flights)
	return flights
}

// Crops returns the flight's records ordered by crop index.
func (c *Catalog) Crops(flight string) []*CropRecord {
	var records []*CropRecord
	for key, rec := range c.Records {
		if key.Flight == flight {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Crop < records[j].Crop })
	return records
}

// Len returns the number of (flight, crop) entries.
func (c *Catalog) Len() int {
	return len(c.Records)
}

// Discover walks the root directory and builds the catalog.
//
// Flights with partial role coverage are excluded from the result and
// reported through the returned error (one CatalogIncompleteError per flight,
// joined). Callers that can proceed on a partial catalog should log the error
// and continue; a nil catalog with a non-nil error means nothing was usable.
func Discover(fsys fsutil.FileSystem, root string) (*Catalog, error) {
	outDir := filepath.Join(root, outputSubdir)
	entries, err := fsys.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list prior-model outputs in %s: %w", outDir, err)
	}

	cat := &Catalog{Root: root, Records: make(map[CropKey]*CropRecord)}
	var incomplete []error

	// pass 1: prior-model outputs establish the flight/crop universe
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tif") {
			continue
		}
		flight, crop, perr := ParsePriorModelName(entry.Name())
		if perr != nil {
			incomplete = append(incomplete, &CatalogIncompleteError{
				Flight: entry.Name(),
				Detail: perr.Error(),
			})
			continue
		}
		cat.Records[CropKey{flight, crop}] = &CropRecord{
			Flight:     flight,
			Crop:       crop,
			PriorModel: filepath.Join(outDir, entry.Name()),
			Features:   make(map[string]string),
		}
	}

	// pass 2: per-flight input folders fill in features and ground truth
	for _, flight := range cat.Flights() {
		inDir := filepath.Join(root, inputSubdir, croppedPrefix+flight)
		inputs, derr := fsys.ReadDir(inDir)
		if derr != nil {
			incomplete = append(incomplete, &CatalogIncompleteError{
				Flight: flight,
				Detail: fmt.Sprintf("input folder %s is unreadable: %v", inDir, derr),
			})
			dropFlight(cat, flight)
			continue
		}

		for _, entry := range inputs {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tif") {
				continue
			}
			role, crop, perr := ParseFeatureName(entry.Name())
			if perr != nil {
				monitoring.Debugf("catalog: skipping %s/%s: %v", inDir, entry.Name(), perr)
				continue
			}
			rec, ok := cat.Records[CropKey{flight, crop}]
			if !ok {
				// input crop with no prior-model output; surfaced below
				// as a missing-role count mismatch only if a record wants it
				monitoring.Debugf("catalog: %s crop %d has inputs but no prior-model output", flight, crop)
				continue
			}
			if role == RoleGroundTruth {
				rec.GroundTruth = filepath.Join(inDir, entry.Name())
			} else {
				rec.Features[role] = filepath.Join(inDir, entry.Name())
			}
		}

		// validate every crop of the flight
		var missing []string
		for _, rec := range cat.Crops(flight) {
			for _, role := range rec.missingRoles() {
				missing = append(missing, fmt.Sprintf("crop %d lacks %s", rec.Crop, role))
			}
		}
		if len(missing) > 0 {
			incomplete = append(incomplete, &CatalogIncompleteError{
				Flight: flight,
				Detail: strings.Join(missing, "; "),
			})
			dropFlight(cat, flight)
		}
	}

	err = errors.Join(incomplete...)
	if cat.Len() == 0 && err != nil {
		return nil, err
	}
	return cat, err
}

func dropFlight(c *Catalog, flight string) {
	for key := range c.Records {
		if key.Flight == flight {
			delete(c.Records, key)
		}
	}
}
