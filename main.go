// Command thermacorrect trains a residual-correction model for thermal
// prediction maps and writes full-resolution correction maps for held-out
// flights, plus run statistics and diagnostics.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/aridfield/thermacorrect/internal/catalog"
	"github.com/aridfield/thermacorrect/internal/config"
	"github.com/aridfield/thermacorrect/internal/fsutil"
	"github.com/aridfield/thermacorrect/internal/monitoring"
	"github.com/aridfield/thermacorrect/internal/pipeline"
	"github.com/aridfield/thermacorrect/internal/raster"
	"github.com/aridfield/thermacorrect/internal/report"
	"github.com/aridfield/thermacorrect/internal/sampling"
	"github.com/aridfield/thermacorrect/internal/version"
)

var (
	dataRoot     = flag.String("data", "", "Data root containing per-flight folders (defaults to $DATA_ROOT)")
	trainFlights = flag.String("train", "", "Comma-separated flights to train on (required unless -load)")
	pixels       = flag.Int("pixels", 0, "Sampled pixels per crop (0 = config default)")
	outDir       = flag.String("out", "corrections", "Directory for correction maps")
	configPath   = flag.String("config", "", "Optional tuning file (JSON)")
	dbPath       = flag.String("db", "thermacorrect.db", "Run-history database ('' disables)")
	artifactPath = flag.String("artifact", "", "Save the fitted model to this path after training")
	loadPath     = flag.String("load", "", "Skip training; run inference with a saved artifact")
	plots        = flag.Bool("plots", false, "Write fit scatter and importance chart")
	masks        = flag.Bool("masks", false, "Write per-crop sample masks")
	verbose      = flag.Bool("verbose", false, "Enable debug logging")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if err := run(); err != nil {
		log.Fatalf("thermacorrect: %v", err)
	}
}

func run() error {
	// .env is optional; explicit flags win over it
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	monitoring.SetVerbose(*verbose || cfg.GetVerbose())

	fsys := fsutil.OSFileSystem{}
	reader := raster.NewGeoTIFFReader()
	sink := raster.NewNpyWriter(fsys)
	sampler := sampling.NewSampler()

	if err := fsys.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var p *pipeline.Pipeline
	if *loadPath != "" {
		loaded, err := pipeline.LoadArtifact(fsys, *loadPath, reader, sampler)
		if err != nil {
			return err
		}
		p = loaded
		monitoring.Logf("loaded artifact %s (trained on %s)", *loadPath, strings.Join(p.TrainFlights(), ","))
	} else {
		trained, err := trainPipeline(fsys, reader, sampler, cfg)
		if err != nil {
			return err
		}
		p = trained
	}

	results, err := p.Test(*outDir, sink)
	if err != nil {
		return err
	}
	if *masks && *loadPath == "" {
		if err := p.SaveMasks(*outDir, sink); err != nil {
			return err
		}
	}

	stats, err := report.Summarize(reader, p.Catalog, results, cfg)
	if err != nil {
		return err
	}
	for _, s := range stats {
		monitoring.Logf("%s crop %d: MAE %.3f -> %.3f over %d vegetation pixels",
			s.Flight, s.Crop, s.MAEBefore, s.MAEAfter, s.VegPixels)
	}

	return persist(fsys, p, stats)
}

func trainPipeline(fsys fsutil.FileSystem, reader raster.Reader, sampler *sampling.Sampler, cfg *config.PipelineConfig) (*pipeline.Pipeline, error) {
	root, err := resolveDataRoot(fsys, *dataRoot)
	if err != nil {
		return nil, err
	}
	if *trainFlights == "" {
		return nil, errors.New("no training flights: pass -train")
	}
	flights := splitCSV(*trainFlights)

	cat, err := catalog.Discover(fsys, root)
	if cat == nil {
		return nil, fmt.Errorf("catalog discovery failed: %w", err)
	}
	if err != nil {
		monitoring.Logf("catalog: %v", err)
	}
	monitoring.Logf("catalog: %d crops across %d flights", cat.Len(), len(cat.Flights()))

	p := pipeline.New(cat, cfg, reader, sampler)

	perCrop := *pixels
	if perCrop <= 0 {
		perCrop = cfg.GetPixelsPerCrop()
	}
	if err := p.Train(flights, perCrop); err != nil {
		return nil, err
	}
	model, err := p.Fit()
	if err != nil {
		return nil, err
	}

	if *plots {
		predicted, err := model.Predict(p.Table())
		if err != nil {
			return nil, err
		}
		if err := report.ScatterPlot(fsys, filepath.Join(*outDir, "fit_scatter.png"), predicted, p.Table().Y, cfg.GetScatterSample()); err != nil {
			return nil, err
		}
		if err := report.ImportanceChart(fsys, filepath.Join(*outDir, "importance.html"), model); err != nil {
			return nil, err
		}
	}

	if *artifactPath != "" {
		if err := p.SaveArtifact(fsys, *artifactPath); err != nil {
			return nil, err
		}
		monitoring.Logf("saved artifact %s", *artifactPath)
	}
	return p, nil
}

func persist(fsys fsutil.FileSystem, p *pipeline.Pipeline, stats []report.MapStats) error {
	if err := report.WriteCSV(fsys, filepath.Join(*outDir, "summary.csv"), stats); err != nil {
		return err
	}
	if *dbPath == "" {
		return nil
	}
	db, err := report.OpenDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	numRows := 0
	if p.Table() != nil {
		numRows = p.Table().NumRows()
	}
	r2 := 0.0
	if p.Model() != nil {
		r2 = p.Model().R2
	}
	run := report.NewRun(p.TrainFlights(), numRows, r2)
	if err := db.InsertRun(run); err != nil {
		return err
	}
	if err := db.InsertMapStats(run.ID, stats); err != nil {
		return err
	}
	monitoring.Logf("recorded run %s (%d maps)", run.ID, len(stats))
	return nil
}

// resolveDataRoot picks the data root from the flag or $DATA_ROOT and
// verifies it exists before discovery walks it.
func resolveDataRoot(fsys fsutil.FileSystem, flagValue string) (string, error) {
	root := flagValue
	if root == "" {
		root = os.Getenv("DATA_ROOT")
	}
	if root == "" {
		return "", errors.New("no data root: pass -data or set DATA_ROOT")
	}
	if !fsys.Exists(root) {
		return "", fmt.Errorf("data root %s does not exist", root)
	}
	return root, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
