package detection

import (
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/domain/privacy"
)

// maxExamples caps how many sample values a detailed result carries per type.
const maxExamples = 3

// Span is a half-open byte range [Start, End) of a match within the scanned text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// TypeDetail describes every match of a single PII type.
type TypeDetail struct {
	Count    int      `json:"count"`
	Examples []string `json:"examples"`
	Spans    []Span   `json:"spans"`
}

// Result aggregates what the detector found in one text. Details holds the
// full span list per type; DataCategory is filled in by the classifier.
type Result struct {
	HasPersonalData  bool                  `json:"has_personal_data"`
	TotalOccurrences int                   `json:"total_occurrences"`
	DetectedTypes    []string              `json:"detected_types"`
	DataCategory     privacy.DataCategory  `json:"data_category,omitempty"`
	Details          map[string]TypeDetail `json:"details,omitempty"`
}

// ValuesFor extracts the matched substrings of one type from the original
// text, in match order. The anonymizer uses this instead of a stored value
// list so results stay small.
func (r Result) ValuesFor(text, typ string) []string {
	detail, ok := r.Details[typ]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(detail.Spans))
	for _, s := range detail.Spans {
		values = append(values, text[s.Start:s.End])
	}
	return values
}

// WithoutDetails returns a copy of the result carrying only the aggregate
// fields, for callers that asked for a non-detailed scan.
func (r Result) WithoutDetails() Result {
	r.Details = nil
	return r
}

// Detector scans text against the PII pattern catalog. It is stateless and
// safe for concurrent use.
type Detector struct {
	logger *zap.Logger
}

func NewDetector(logger *zap.Logger) *Detector {
	return &Detector{logger: logger}
}

// Detect scans the whole text with every catalog pattern independently,
// left to right, collecting all non-overlapping matches per pattern. Matches
// of different types may overlap; no cross-type deduplication happens.
func (d *Detector) Detect(text string) Result {
	result := Result{
		DetectedTypes: []string{},
		Details:       map[string]TypeDetail{},
	}
	if text == "" {
		return result
	}

	for _, p := range patterns {
		locs := p.re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}

		detail := TypeDetail{
			Count:    len(locs),
			Examples: make([]string, 0, maxExamples),
			Spans:    make([]Span, 0, len(locs)),
		}
		for _, loc := range locs {
			detail.Spans = append(detail.Spans, Span{Start: loc[0], End: loc[1]})
			if len(detail.Examples) < maxExamples {
				detail.Examples = append(detail.Examples, text[loc[0]:loc[1]])
			}
		}

		result.Details[p.name] = detail
		result.DetectedTypes = append(result.DetectedTypes, p.name)
		result.TotalOccurrences += detail.Count
	}

	result.HasPersonalData = result.TotalOccurrences > 0

	d.logger.Debug("detection completed",
		zap.Int("total_occurrences", result.TotalOccurrences),
		zap.Strings("detected_types", result.DetectedTypes),
	)
	return result
}
