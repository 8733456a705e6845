// Package sitelens is a client for a remote civil engineering photo analysis
// service.
//
// The user selects a photograph and an analysis scenario, the client uploads
// both as one multipart request, and the structured response (free-text
// analysis, detected labels, detected objects, detected text) is rendered
// across two switchable views.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/sitelens/sitelens"
//		"github.com/sitelens/sitelens/pkg/render"
//		"github.com/sitelens/sitelens/pkg/types"
//	)
//
//	func main() {
//		app, err := sitelens.New(nil)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := app.AnalyzeFile(context.Background(), "bridge.jpg", types.ScenarioStructuralAnalysis)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Print(render.Analysis(result))
//		fmt.Print(render.Detection(result))
//	}
//
// The package consists of four main components:
//
// 1. Types (pkg/types): the scenario enumeration and the wire data model
// 2. Analyze (pkg/analyze): the multipart HTTP client for the service
// 3. Session (pkg/session): the form state record and its transitions
// 4. Render (pkg/render): the "analysis" and "detection" text views
package sitelens

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/pkg/analyze"
	"github.com/sitelens/sitelens/pkg/preview"
	"github.com/sitelens/sitelens/pkg/render"
	"github.com/sitelens/sitelens/pkg/session"
	"github.com/sitelens/sitelens/pkg/types"
)

// Version of the sitelens library
const Version = "1.0.0"

// App bundles the pieces behind the form: the HTTP client and the UI session.
type App struct {
	Client  *analyze.Client
	Session *session.Session

	cfg *config.Config
}

// New creates an App from the given configuration. A nil cfg uses defaults.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client, err := analyze.NewClient(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	app := &App{
		Client:  client,
		Session: session.New(client),
		cfg:     cfg,
	}
	if err := app.Session.SelectScenario(types.Scenario(cfg.Scenario)); err != nil {
		return nil, err
	}
	return app, nil
}

// AnalyzeFile loads the image at path, applies the configured pre-upload
// downscale, and submits it under the given scenario. An empty scenario
// keeps the session's current one.
func (a *App) AnalyzeFile(ctx context.Context, path string, scenario types.Scenario) (*types.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if a.cfg.Upload.MaxDim > 0 {
		prepared, err := preview.PrepareUpload(data, a.cfg.Upload.MaxDim, a.cfg.Upload.Quality)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare image: %w", err)
		}
		data = prepared
	}

	if scenario != "" {
		if err := a.Session.SelectScenario(scenario); err != nil {
			return nil, err
		}
	}

	a.Session.SelectImage(filepath.Base(path), data)
	return a.Session.Submit(ctx)
}

// Render returns the text of the session's active tab for the current
// result.
func (a *App) Render() string {
	return render.Tab(a.Session.ActiveTab(), a.Session.Result())
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
