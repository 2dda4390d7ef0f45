package catalog

import (
	"fmt"
	"regexp"
	"strconv"
)

// Filename grammar. One line per role:
//
//	Output data/<site>_<DD.MM.YY>_<HHMM>_<crop>_M1.tif        prior-model map
//	Input data/cropped_<flight>/<feature>_<crop>.tif          feature map
//	Input data/cropped_<flight>/thermal_ir_<crop>.tif         measured IR
//
// The flight identifier is <site>_<DD.MM.YY>_<HHMM>, e.g. "Zeelim_31.05.21_1516".
// Names that do not match the grammar are catalog-incomplete inputs; they are
// never turned into keys by slicing at fixed offsets.
var (
	priorModelRe  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*_\d{2}\.\d{2}\.\d{2}_\d{4})_(\d+)_M1\.tif$`)
	featureRe     = regexp.MustCompile(`^([a-zA-Z_]+?)_(\d+)\.tif$`)
	groundTruthRe = regexp.MustCompile(`^thermal_ir_(\d+)\.tif$`)
)

// ParsePriorModelName extracts the flight identifier and crop index from a
// prior-model raster filename.
func ParsePriorModelName(name string) (flight string, crop int, err error) {
	m := priorModelRe.FindStringSubmatch(name)
	if m == nil {
		return "", 0, fmt.Errorf("filename %q does not match the prior-model grammar", name)
	}
	crop, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("filename %q has non-numeric crop index: %w", name, err)
	}
	return m[1], crop, nil
}

// ParseFeatureName extracts the feature role and crop index from an input
// raster filename. Ground-truth files parse with role RoleGroundTruth.
func ParseFeatureName(name string) (role string, crop int, err error) {
	if m := groundTruthRe.FindStringSubmatch(name); m != nil {
		crop, err = strconv.Atoi(m[1])
		if err != nil {
			return "", 0, fmt.Errorf("filename %q has non-numeric crop index: %w", name, err)
		}
		return RoleGroundTruth, crop, nil
	}

	m := featureRe.FindStringSubmatch(name)
	if m == nil {
		return "", 0, fmt.Errorf("filename %q does not match the feature grammar", name)
	}
	if !isFeatureRole(m[1]) {
		return "", 0, fmt.Errorf("filename %q names unknown feature %q", name, m[1])
	}
	crop, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("filename %q has non-numeric crop index: %w", name, err)
	}
	return m[1], crop, nil
}

func isFeatureRole(role string) bool {
	for _, r := range FeatureRoles {
		if r == role {
			return true
		}
	}
	return false
}
