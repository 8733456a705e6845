package types

import "fmt"

// Scenario is a named analysis mode selected by the user. The value is sent
// verbatim to the analysis service.
type Scenario string

const (
	ScenarioMaterialIdentification Scenario = "Material Identification"
	ScenarioProjectDocumentation   Scenario = "Project Documentation"
	ScenarioStructuralAnalysis     Scenario = "Structural Analysis"
)

// DefaultScenario is the scenario preselected before the user picks one.
const DefaultScenario = ScenarioMaterialIdentification

// Scenarios returns every valid scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{
		ScenarioMaterialIdentification,
		ScenarioProjectDocumentation,
		ScenarioStructuralAnalysis,
	}
}

// Valid reports whether s is one of the fixed scenarios.
func (s Scenario) Valid() bool {
	switch s {
	case ScenarioMaterialIdentification, ScenarioProjectDocumentation, ScenarioStructuralAnalysis:
		return true
	}
	return false
}

// ParseScenario converts a raw string into a Scenario.
func ParseScenario(v string) (Scenario, error) {
	s := Scenario(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown scenario %q", v)
	}
	return s, nil
}

// Label is a classification result with a confidence score in [0,1].
type Label struct {
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
}

// Object is a localized object detection with a confidence score in [0,1].
type Object struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResult is the complete response from the analysis service.
// Every field is optional from the renderer's perspective: a missing array
// suppresses the corresponding section.
type AnalysisResult struct {
	Scenario        string   `json:"scenario"`
	AIAnalysis      string   `json:"ai_analysis"`
	DetectedLabels  []Label  `json:"detected_labels"`
	DetectedObjects []Object `json:"detected_objects"`
	DetectedText    []string `json:"detected_text"`
}

// BatchItem is the per-file result inside a batch response.
type BatchItem struct {
	Filename       string  `json:"filename"`
	DetectedLabels []Label `json:"detected_labels"`
	AIAnalysis     string  `json:"ai_analysis"`
}

// BatchResult is the response from the batch analysis endpoint.
type BatchResult struct {
	Success        bool        `json:"success"`
	Scenario       string      `json:"scenario"`
	AnalyzedImages int         `json:"analyzed_images"`
	Results        []BatchItem `json:"results"`
}

// ErrorResponse is the failure body the service may return alongside a
// non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Tab identifies which result view is active. It is purely presentational
// and independent of whether a result is present.
type Tab string

const (
	TabAnalysis  Tab = "analysis"
	TabDetection Tab = "detection"
)
