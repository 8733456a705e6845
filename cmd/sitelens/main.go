package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/sitelens/sitelens"
	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/utils"
	"github.com/sitelens/sitelens/pkg/analyze"
	"github.com/sitelens/sitelens/pkg/render"
	"github.com/sitelens/sitelens/pkg/types"
)

func main() {
	var in, scenarioFlag, url, tab, batchDir, cfgPath string
	var sendSize, sendQ int
	var health bool

	flag.StringVar(&in, "image", "", "input image path (jpg/png/webp)")
	flag.StringVar(&scenarioFlag, "scenario", "", `analysis scenario: "Material Identification"|"Project Documentation"|"Structural Analysis"`)
	flag.StringVar(&url, "url", "", "analysis service URL (default http://localhost:5000)")
	flag.StringVar(&tab, "tab", "all", "view to print: analysis|detection|all")
	flag.StringVar(&batchDir, "batch", "", "directory of images to analyze in one batch request")
	flag.BoolVar(&health, "health", false, "check service health and exit")
	flag.IntVar(&sendSize, "sendsize", 0, "max long side sent to the service (px), 0=original")
	flag.IntVar(&sendQ, "sendq", 85, "JPEG quality when -sendsize is set (1-100)")
	flag.StringVar(&cfgPath, "config", "", "config file path (default "+config.GetConfigPath()+" when present)")
	flag.Parse()

	// Fall back to the per-user config file when one exists.
	if cfgPath == "" {
		if def := config.GetConfigPath(); utils.FileExists(def) {
			cfgPath = def
		}
	}

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if url != "" {
		cfg.Endpoint = url
	}
	if scenarioFlag != "" {
		cfg.Scenario = scenarioFlag
	}
	if sendSize > 0 {
		cfg.Upload.MaxDim = sendSize
		cfg.Upload.Quality = sendQ
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	if health {
		client, err := analyze.NewClient(cfg.Endpoint)
		if err != nil {
			log.Fatal(err)
		}
		if err := client.Health(ctx); err != nil {
			log.Fatalf("service unhealthy: %v", err)
		}
		fmt.Println("service is healthy")
		return
	}

	if batchDir != "" {
		runBatch(ctx, cfg, batchDir)
		return
	}

	if in == "" {
		log.Fatalf("usage: %s -image photo.jpg [-scenario name] [-url server_url] [-tab analysis|detection|all]", filepath.Base(os.Args[0]))
	}
	if !utils.FileExists(in) {
		log.Fatalf("image file not found: %s", in)
	}

	app, err := sitelens.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if info, err := os.Stat(in); err == nil {
		log.Printf("analyzing %s (%s) as %q", in, utils.FormatFileSize(info.Size()), cfg.Scenario)
	}

	result, err := app.AnalyzeFile(ctx, in, types.Scenario(cfg.Scenario))
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	switch tab {
	case "analysis":
		fmt.Print(render.Analysis(result))
	case "detection":
		fmt.Print(render.Detection(result))
	default:
		fmt.Print(render.Analysis(result))
		if d := render.Detection(result); d != "" {
			fmt.Println()
			fmt.Print(d)
		}
	}
}

// runBatch sends every image under dir in one batch request and prints the
// per-file summary.
func runBatch(ctx context.Context, cfg *config.Config, dir string) {
	paths, err := utils.ListImageFiles(dir)
	if err != nil {
		log.Fatal(err)
	}
	if len(paths) == 0 {
		log.Fatalf("no image files found in %s", dir)
	}

	var files []analyze.File
	var handles []*os.File
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			log.Fatal(err)
		}
		handles = append(handles, f)
		files = append(files, analyze.File{Name: filepath.Base(p), Reader: f})
	}
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()

	client, err := analyze.NewClient(cfg.Endpoint)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("analyzing %d images as %q", len(files), cfg.Scenario)
	result, err := client.AnalyzeBatch(ctx, files, types.Scenario(cfg.Scenario))
	if err != nil {
		log.Fatalf("batch analysis failed: %v", err)
	}

	fmt.Print(render.Batch(result))
}
