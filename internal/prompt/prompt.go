package prompt

// Status is the progress state of a generation run.
// Within one run it only moves forward: idle → analyzing → researching → generating → done.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusAnalyzing   Status = "analyzing"
	StatusResearching Status = "researching"
	StatusGenerating  Status = "generating"
	StatusDone        Status = "done"
)

// Analysis is the structured clarity assessment of an idea.
type Analysis struct {
	// Score is the clarity score, 0-100
	Score int `json:"score"`

	// Category is the topic category assigned by the model (e.g., "Sağlık")
	Category string `json:"category"`

	// Suggestions are improvement hints in the form
	// "Daha iyi bir [alan] için şunu deneyin: [öneri]"
	Suggestions []string `json:"suggestions"`
}

// Source is a citation surfaced by the research step.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// MaxDisplayedSources is how many research sources the presentation shows.
const MaxDisplayedSources = 3

// TopSources returns at most n sources, preserving order.
func TopSources(sources []Source, n int) []Source {
	if n < 0 {
		n = 0
	}
	if len(sources) <= n {
		return sources
	}
	return sources[:n]
}

// ClampScore bounds a model-reported score to 0-100.
func ClampScore(score int) int {
	return min(max(score, 0), 100)
}
