package detection

import (
	"regexp"
	"strings"

	"github.com/dataguard-br/privacy-engine/internal/domain/privacy"
)

// sensitiveTopics flags the LGPD special categories: health, religion,
// political affiliation, sexual orientation or gender identity, and
// ethnicity or race. Matching runs on lowercased text; the explicit
// non-letter guards replace \b, which is ASCII-only and would miss
// accented keywords like "étnico".
var sensitiveTopics = []*regexp.Regexp{
	regexp.MustCompile(`(?:^|\PL)(?:saúde|doença|tratamento|medicamento|hospital)(?:\PL|$)`),
	regexp.MustCompile(`(?:^|\PL)(?:religião|religioso|igreja|templo)(?:\PL|$)`),
	regexp.MustCompile(`(?:^|\PL)(?:político|partido|eleição|voto)(?:\PL|$)`),
	regexp.MustCompile(`(?:^|\PL)(?:sexual|orientação|identidade|gênero)(?:\PL|$)`),
	regexp.MustCompile(`(?:^|\PL)(?:étnico|racial|cor|raça)(?:\PL|$)`),
}

// Classifier assigns a sensitivity category from detector output plus
// sensitive-topic keywords. Pure and safe for concurrent use.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify applies the priority order: any sensitive topic outranks mere PII
// presence; PII without sensitive topics is personal; everything else is
// anonymous.
func (c *Classifier) Classify(text string, detection Result) privacy.DataCategory {
	lowered := strings.ToLower(text)
	for _, re := range sensitiveTopics {
		if re.MatchString(lowered) {
			return privacy.CategorySensitive
		}
	}
	if detection.HasPersonalData {
		return privacy.CategoryPersonal
	}
	return privacy.CategoryAnonymous
}
