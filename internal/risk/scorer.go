package risk

import (
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/detection"
)

// Level is the ordinal risk classification derived from the weighted score.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Assessment is the outcome of a privacy risk analysis over one document.
type Assessment struct {
	Score              int               `json:"risk_score"`
	Level              Level             `json:"risk_level"`
	Description        string            `json:"risk_description"`
	Recommendations    []string          `json:"recommendations"`
	ComplianceRequired bool              `json:"compliance_required"`
	DetectionSummary   *detection.Result `json:"detection_summary,omitempty"`
}

// weights rank identifier types by re-identification impact. Fixed constants;
// making them policy-configurable was considered and deliberately deferred.
var weights = map[string]int{
	detection.TypeCPF:        10,
	detection.TypeCNPJ:       8,
	detection.TypeEmail:      6,
	detection.TypePhone:      7,
	detection.TypeRG:         9,
	detection.TypeCEP:        4,
	detection.TypeProperName: 5,
}

var typeRecommendations = map[string]string{
	detection.TypeCPF:        "Encrypt CPF numbers at rest and restrict access to authorized roles",
	detection.TypeCNPJ:       "Confirm a legal basis exists for processing company registration numbers",
	detection.TypeEmail:      "Obtain explicit opt-in before using email addresses for outreach",
	detection.TypePhone:      "Limit phone number visibility to teams operating contact workflows",
	detection.TypeRG:         "Treat RG numbers as high-risk identifiers; never store them in plain text",
	detection.TypeCEP:        "Aggregate postal codes before analytical use to reduce re-identification",
	detection.TypeProperName: "Review detected names manually; the name heuristic produces false positives",
}

// blanketRecommendations are appended when the level reaches HIGH or CRITICAL.
var blanketRecommendations = []string{
	"Apply strict access control to this document",
	"Document the processing purpose before retaining the content",
	"Define and enforce a retention policy for the stored record",
	"Collect explicit consent from the data subjects involved",
}

// Scorer converts detection output into a weighted risk assessment.
type Scorer struct {
	logger *zap.Logger
}

func NewScorer(logger *zap.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// Assess computes score = Σ weight[type] × count[type], maps it onto a level,
// and seeds recommendations per detected type. The score is non-decreasing in
// occurrence counts and the level is a non-decreasing step function of the
// score.
func (s *Scorer) Assess(det detection.Result) Assessment {
	score := 0
	for typ, detail := range det.Details {
		score += weights[typ] * detail.Count
	}

	level, description := classify(score)

	recommendations := make([]string, 0, len(det.DetectedTypes)+len(blanketRecommendations))
	for _, typ := range det.DetectedTypes {
		if rec, ok := typeRecommendations[typ]; ok {
			recommendations = append(recommendations, rec)
		}
	}

	complianceRequired := level == LevelHigh || level == LevelCritical
	if complianceRequired {
		recommendations = append(recommendations, blanketRecommendations...)
	}

	summary := det.WithoutDetails()
	assessment := Assessment{
		Score:              score,
		Level:              level,
		Description:        description,
		Recommendations:    recommendations,
		ComplianceRequired: complianceRequired,
		DetectionSummary:   &summary,
	}

	s.logger.Debug("risk assessed",
		zap.Int("risk_score", score),
		zap.String("risk_level", string(level)),
	)
	return assessment
}

func classify(score int) (Level, string) {
	switch {
	case score == 0:
		return LevelLow, "No personal data detected"
	case score <= 10:
		return LevelLow, "Few personal identifiers detected; standard handling applies"
	case score <= 30:
		return LevelMedium, "Personal identifiers detected; handle with documented purpose"
	case score <= 60:
		return LevelHigh, "Significant volume of personal identifiers; protection measures required"
	default:
		return LevelCritical, "Dense personal identifiers; treat as a regulated data set"
	}
}
