// Package render turns analysis results into the two text views shown to
// the user.
package render

import (
	"fmt"
	"strings"

	"github.com/sitelens/sitelens/pkg/types"
)

// Confidence formats a [0,1] score using the display convention: percentage
// with one decimal place.
func Confidence(c float64) string {
	return fmt.Sprintf("%.1f%% confidence", c*100)
}

// Analysis renders the "analysis" view: the scenario and the free-text
// analysis.
func Analysis(r *types.AnalysisResult) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Scenario != "" {
		fmt.Fprintf(&b, "Scenario: %s\n", r.Scenario)
	}
	if r.AIAnalysis != "" {
		b.WriteString(r.AIAnalysis)
		b.WriteString("\n")
	}
	return b.String()
}

// Detection renders the "detection" view: three independent optional
// sections. A section appears only when its underlying sequence is
// non-empty; absent or empty sequences render nothing.
func Detection(r *types.AnalysisResult) string {
	if r == nil {
		return ""
	}
	var b strings.Builder

	if len(r.DetectedLabels) > 0 {
		b.WriteString("Detected Labels:\n")
		for _, l := range r.DetectedLabels {
			fmt.Fprintf(&b, "  %s (%s)\n", l.Description, Confidence(l.Confidence))
		}
	}

	if len(r.DetectedObjects) > 0 {
		b.WriteString("Detected Objects:\n")
		for _, o := range r.DetectedObjects {
			fmt.Fprintf(&b, "  %s (%s)\n", o.Name, Confidence(o.Confidence))
		}
	}

	if len(r.DetectedText) > 0 {
		b.WriteString("Detected Text:\n")
		b.WriteString("  " + strings.Join(r.DetectedText, " | ") + "\n")
	}

	return b.String()
}

// Tab renders the requested view for the given result.
func Tab(t types.Tab, r *types.AnalysisResult) string {
	switch t {
	case types.TabDetection:
		return Detection(r)
	default:
		return Analysis(r)
	}
}

// Batch renders a per-file summary of a batch response.
func Batch(r *types.BatchResult) string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s (%d images)\n", r.Scenario, r.AnalyzedImages)
	for _, item := range r.Results {
		fmt.Fprintf(&b, "\n%s\n", item.Filename)
		for _, l := range item.DetectedLabels {
			fmt.Fprintf(&b, "  %s (%s)\n", l.Description, Confidence(l.Confidence))
		}
		if item.AIAnalysis != "" {
			fmt.Fprintf(&b, "  %s\n", item.AIAnalysis)
		}
	}
	return b.String()
}
