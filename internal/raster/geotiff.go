package raster

import (
	"fmt"
	"math"
	"sync"

	"github.com/airbusgeo/godal"
)

var registerDrivers sync.Once

// GeoTIFFReader reads band 1 of GDAL-supported rasters into a Grid.
type GeoTIFFReader struct{}

// NewGeoTIFFReader registers the GDAL drivers on first use and returns a reader.
func NewGeoTIFFReader() *GeoTIFFReader {
	registerDrivers.Do(godal.RegisterAll)
	return &GeoTIFFReader{}
}

// Read loads the first band of the raster at path. Cells equal to the band's
// no-data sentinel come back as NaN.
func (r *GeoTIFFReader) Read(path string) (*Grid, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	defer ds.Close()

	bands := ds.Bands()
	if len(bands) == 0 {
		return nil, fmt.Errorf("raster %s has no bands", path)
	}
	band := bands[0]

	cols := ds.Structure().SizeX
	rows := ds.Structure().SizeY
	data := make([]float64, rows*cols)
	if err := band.Read(0, 0, data, cols, rows); err != nil {
		return nil, fmt.Errorf("failed to read band 1 of %s: %w", path, err)
	}

	if nodata, ok := band.NoData(); ok {
		for i, v := range data {
			if v == nodata {
				data[i] = math.NaN()
			}
		}
	}

	return &Grid{Rows: rows, Cols: cols, Data: data}, nil
}
