package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriorModelName(t *testing.T) {
	t.Parallel()

	flight, crop, err := ParsePriorModelName("Zeelim_31.05.21_1516_3_M1.tif")
	require.NoError(t, err)
	assert.Equal(t, "Zeelim_31.05.21_1516", flight)
	assert.Equal(t, 3, crop)

	cases := []string{
		"Zeelim_31.05.21_1516_M1.tif",     // no crop index
		"Zeelim_31.05.21_1516_3.tif",      // no model token
		"Zeelim_2021-05-31_1516_3_M1.tif", // wrong date format
		"random.tif",
		"",
	}
	for _, name := range cases {
		_, _, err := ParsePriorModelName(name)
		assert.Error(t, err, "name %q", name)
	}
}

func TestParseFeatureName(t *testing.T) {
	t.Parallel()

	role, crop, err := ParseFeatureName("TGI_0.tif")
	require.NoError(t, err)
	assert.Equal(t, "TGI", role)
	assert.Equal(t, 0, crop)

	// underscore inside the role name
	role, crop, err = ParseFeatureName("real_solar_12.tif")
	require.NoError(t, err)
	assert.Equal(t, "real_solar", role)
	assert.Equal(t, 12, crop)

	// ground truth routes to its own role
	role, crop, err = ParseFeatureName("thermal_ir_2.tif")
	require.NoError(t, err)
	assert.Equal(t, RoleGroundTruth, role)
	assert.Equal(t, 2, crop)

	_, _, err = ParseFeatureName("NDVI_1.tif") // not a known feature
	assert.Error(t, err)
	_, _, err = ParseFeatureName("TGI.tif") // no crop index
	assert.Error(t, err)
}
