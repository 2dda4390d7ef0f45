// Command inspect walks a data root and reports what the catalog sees:
// flights, crops, missing roles, raster sizes. Useful before committing to a
// long training run.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/joho/godotenv"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/fsutil"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/units"
)

var (
	dataRoot  = flag.String("data", "", "Data root to inspect (defaults to $DATA_ROOT)")
	shapes    = flag.Bool("shapes", false, "Also open each prior-model raster and print its size and temperature range")
	tempUnits = flag.String("units", units.Celsius, "Units for reported temperatures (celsius|kelvin)")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	if !units.IsValid(*tempUnits) {
		log.Fatalf("invalid -units %q: must be one of %v", *tempUnits, units.ValidUnits)
	}

	root := *dataRoot
	if root == "" {
		root = os.Getenv("DATA_ROOT")
	}
	if root == "" {
		log.Fatal("no data root: pass -data or set DATA_ROOT")
	}

	fsys := fsutil.OSFileSystem{}
	if !fsys.Exists(root) {
		log.Fatalf("data root %s does not exist", root)
	}

	cat, err := catalog.Discover(fsys, root)
	if err != nil {
		log.Printf("discovery reported problems:\n%v", err)
	}
	if cat == nil {
		log.Fatal("no usable flights found")
	}

	var reader *raster.GeoTIFFReader
	if *shapes {
		reader = raster.NewGeoTIFFReader()
	}

	fmt.Printf("%d crops across %d flights under %s\n", cat.Len(), len(cat.Flights()), cat.Root)
	for _, flight := range cat.Flights() {
		crops := cat.Crops(flight)
		fmt.Printf("  %s: %d crops\n", flight, len(crops))
		for _, rec := range crops {
			size := "unreadable"
			if info, err := fsys.Stat(rec.PriorModel); err == nil {
				size = fmt.Sprintf("%d bytes", info.Size())
			}
			if reader == nil {
				fmt.Printf("    crop %d: %s (%s)\n", rec.Crop, rec.PriorModel, size)
				continue
			}
			g, err := reader.Read(rec.PriorModel)
			if err != nil {
				fmt.Printf("    crop %d: unreadable prior model: %v\n", rec.Crop, err)
				continue
			}
			fmt.Printf("    crop %d: %s %s (%s)\n", rec.Crop, describeGrid(g, *tempUnits), rec.PriorModel, size)
		}
	}
}

// describeGrid reports a prior-model grid's shape and temperature range in
// the requested units; prior-model rasters store Kelvin. A range far from
// plausible surface temperatures flags data in the wrong units.
func describeGrid(g *raster.Grid, targetUnits string) string {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range g.Data {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min > max {
		return fmt.Sprintf("%dx%d all no-data", g.Rows, g.Cols)
	}
	return fmt.Sprintf("%dx%d %.1f..%.1f %s",
		g.Rows, g.Cols,
		units.ConvertTemperature(min, targetUnits),
		units.ConvertTemperature(max, targetUnits),
		targetUnits)
}
