// Package session holds the form state behind an analysis submission: one
// field per piece of UI state and one transition method per user event.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sitelens/sitelens/pkg/preview"
	"github.com/sitelens/sitelens/pkg/types"
)

// ErrNoImage is the validation error for submitting without a selected image.
var ErrNoImage = errors.New("no image selected")

// ErrBusy rejects a submit while a previous submission is still in flight.
var ErrBusy = errors.New("submission already in progress")

// Analyzer is the submission half of the analysis client.
type Analyzer interface {
	Analyze(ctx context.Context, r io.Reader, filename string, scenario types.Scenario) (*types.AnalysisResult, error)
}

// Session is the state record behind the form. All fields are transient and
// in-memory; nothing is persisted.
type Session struct {
	mu sync.Mutex

	client Analyzer

	imageName  string
	imageData  []byte
	previewGen uint64
	previewURL string

	scenario  types.Scenario
	result    *types.AnalysisResult
	errMsg    string
	loading   bool
	activeTab types.Tab
}

// New creates a session with the default scenario and the analysis tab
// active.
func New(client Analyzer) *Session {
	return &Session{
		client:    client,
		scenario:  types.DefaultScenario,
		activeTab: types.TabAnalysis,
	}
}

// SelectImage stores the selected file wholesale and starts the preview
// decode in the background. Any file is accepted; a file the decoder cannot
// read simply never produces a preview. Each selection bumps a generation
// counter and a decode finishing for a superseded generation is discarded,
// so the preview always matches the latest selection.
func (s *Session) SelectImage(name string, data []byte) {
	s.mu.Lock()
	s.imageName = name
	s.imageData = data
	s.previewGen++
	gen := s.previewGen
	s.mu.Unlock()

	go func() {
		url, err := preview.DataURL(data)
		if err != nil {
			return
		}
		s.mu.Lock()
		if gen == s.previewGen {
			s.previewURL = url
		}
		s.mu.Unlock()
	}()
}

// SelectScenario sets the scenario synchronously. Only values from the fixed
// enumeration are accepted.
func (s *Session) SelectScenario(v types.Scenario) error {
	if !v.Valid() {
		return fmt.Errorf("unknown scenario %q", v)
	}
	s.mu.Lock()
	s.scenario = v
	s.mu.Unlock()
	return nil
}

// SetActiveTab switches the visible view. It never clears or mutates the
// result.
func (s *Session) SetActiveTab(t types.Tab) {
	s.mu.Lock()
	s.activeTab = t
	s.mu.Unlock()
}

// Submit issues exactly one analysis request for the current selection.
//
// With no image selected it fails immediately with ErrNoImage and no network
// call is made. Otherwise the error message is cleared, the loading flag is
// set, and one request is sent. A successful response replaces the result
// wholesale; a failure records the error message and leaves the prior result
// untouched. The loading flag is released regardless of outcome. A second
// Submit while one is in flight returns ErrBusy.
func (s *Session) Submit(ctx context.Context) (*types.AnalysisResult, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.errMsg = ""
	if len(s.imageData) == 0 {
		s.errMsg = ErrNoImage.Error()
		s.mu.Unlock()
		return nil, ErrNoImage
	}
	s.loading = true
	name := s.imageName
	data := s.imageData
	scenario := s.scenario
	s.mu.Unlock()

	result, err := s.client.Analyze(ctx, bytes.NewReader(data), name, scenario)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		return nil, err
	}
	s.result = result
	s.errMsg = ""
	return result, nil
}

// Result returns the last successful analysis result, or nil.
func (s *Session) Result() *types.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Err returns the message of the last failure, or "".
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Loading reports whether a submission is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Preview returns the data URL for the latest decoded preview, or "" while
// no decode has completed.
func (s *Session) Preview() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewURL
}

// Scenario returns the currently selected scenario.
func (s *Session) Scenario() types.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scenario
}

// ActiveTab returns the currently visible view.
func (s *Session) ActiveTab() types.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// ImageName returns the filename of the current selection, or "".
func (s *Session) ImageName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.imageName
}
