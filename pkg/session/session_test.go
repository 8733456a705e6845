package session

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/pkg/types"
)

// fakeAnalyzer records submissions and replays canned outcomes.
type fakeAnalyzer struct {
	calls    atomic.Int64
	scenario types.Scenario
	filename string
	payload  []byte

	result *types.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, r io.Reader, filename string, scenario types.Scenario) (*types.AnalysisResult, error) {
	f.calls.Add(1)
	f.filename = filename
	f.scenario = scenario
	f.payload, _ = io.ReadAll(r)
	return f.result, f.err
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSubmit_NoImageMakesNoNetworkCall(t *testing.T) {
	fake := &fakeAnalyzer{}
	s := New(fake)

	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoImage)
	require.Equal(t, int64(0), fake.calls.Load())
	require.Equal(t, ErrNoImage.Error(), s.Err())
	require.False(t, s.Loading())
}

func TestSubmit_SendsSelectedScenarioAndFile(t *testing.T) {
	fake := &fakeAnalyzer{result: &types.AnalysisResult{Scenario: "Structural Analysis"}}
	s := New(fake)

	require.NoError(t, s.SelectScenario(types.ScenarioStructuralAnalysis))
	s.SelectImage("pier.jpg", []byte("raw bytes"))

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), fake.calls.Load())
	require.Equal(t, "pier.jpg", fake.filename)
	require.Equal(t, types.ScenarioStructuralAnalysis, fake.scenario)
	require.Equal(t, []byte("raw bytes"), fake.payload)
	require.Same(t, result, s.Result())
	require.Empty(t, s.Err())
	require.False(t, s.Loading())
}

func TestSubmit_FailureKeepsPriorResult(t *testing.T) {
	fake := &fakeAnalyzer{result: &types.AnalysisResult{AIAnalysis: "first"}}
	s := New(fake)
	s.SelectImage("a.jpg", []byte("x"))

	first, err := s.Submit(context.Background())
	require.NoError(t, err)

	fake.result = nil
	fake.err = errors.New("bad image")

	_, err = s.Submit(context.Background())
	require.EqualError(t, err, "bad image")
	require.Equal(t, "bad image", s.Err())
	require.Same(t, first, s.Result()) // stale result stays displayed
	require.False(t, s.Loading())
}

func TestSubmit_SuccessClearsPriorError(t *testing.T) {
	fake := &fakeAnalyzer{err: errors.New("boom")}
	s := New(fake)
	s.SelectImage("a.jpg", []byte("x"))

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	require.Equal(t, "boom", s.Err())

	fake.err = nil
	fake.result = &types.AnalysisResult{AIAnalysis: "ok now"}

	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, s.Err())
	require.Equal(t, "ok now", s.Result().AIAnalysis)
}

func TestSubmit_RejectedWhileInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := analyzerFunc(func(ctx context.Context, r io.Reader, filename string, scenario types.Scenario) (*types.AnalysisResult, error) {
		close(started)
		<-release
		return &types.AnalysisResult{}, nil
	})

	s := New(blocking)
	s.SelectImage("a.jpg", []byte("x"))

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-started
	require.True(t, s.Loading())
	_, err := s.Submit(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	require.False(t, s.Loading())
}

type analyzerFunc func(ctx context.Context, r io.Reader, filename string, scenario types.Scenario) (*types.AnalysisResult, error)

func (f analyzerFunc) Analyze(ctx context.Context, r io.Reader, filename string, scenario types.Scenario) (*types.AnalysisResult, error) {
	return f(ctx, r, filename, scenario)
}

func TestSelectScenario_RejectsUnknownValue(t *testing.T) {
	s := New(&fakeAnalyzer{})
	require.Error(t, s.SelectScenario("Seismic Retrofit"))
	require.Equal(t, types.DefaultScenario, s.Scenario())
}

func TestSetActiveTab_DoesNotTouchResult(t *testing.T) {
	fake := &fakeAnalyzer{result: &types.AnalysisResult{AIAnalysis: "kept"}}
	s := New(fake)
	s.SelectImage("a.jpg", []byte("x"))

	result, err := s.Submit(context.Background())
	require.NoError(t, err)

	s.SetActiveTab(types.TabDetection)
	require.Equal(t, types.TabDetection, s.ActiveTab())
	require.Same(t, result, s.Result())

	s.SetActiveTab(types.TabAnalysis)
	require.Same(t, result, s.Result())
}

func TestSelectImage_DoesNotClearPriorResult(t *testing.T) {
	fake := &fakeAnalyzer{result: &types.AnalysisResult{AIAnalysis: "previous"}}
	s := New(fake)
	s.SelectImage("a.jpg", []byte("x"))

	result, err := s.Submit(context.Background())
	require.NoError(t, err)

	s.SelectImage("b.jpg", []byte("y"))
	require.Same(t, result, s.Result())
	require.Equal(t, "b.jpg", s.ImageName())
}

func TestSelectImage_ProducesPreviewDataURL(t *testing.T) {
	s := New(&fakeAnalyzer{})
	s.SelectImage("tiny.png", pngBytes(t, 8, 8))

	require.Eventually(t, func() bool {
		return s.Preview() != ""
	}, 2*time.Second, 10*time.Millisecond)
	require.Contains(t, s.Preview(), "data:image/jpeg;base64,")
}

func TestSelectImage_UnreadableFileLeavesPreviewEmpty(t *testing.T) {
	s := New(&fakeAnalyzer{})
	s.SelectImage("notes.txt", []byte("not an image"))

	// Decode failure is silently unobserved; the selection itself stands.
	time.Sleep(50 * time.Millisecond)
	require.Empty(t, s.Preview())
	require.Equal(t, "notes.txt", s.ImageName())
}

func TestDefaults(t *testing.T) {
	s := New(&fakeAnalyzer{})
	require.Equal(t, types.DefaultScenario, s.Scenario())
	require.Equal(t, types.TabAnalysis, s.ActiveTab())
	require.Nil(t, s.Result())
	require.Empty(t, s.Err())
}
