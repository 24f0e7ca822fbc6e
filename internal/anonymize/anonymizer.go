package anonymize

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/detection"
	"github.com/dataguard-br/privacy-engine/internal/domain/errors"
)

// Strategy selects how detected values are rewritten.
type Strategy string

const (
	StrategyPseudonymization Strategy = "pseudonymization"
	StrategyFakeData         Strategy = "fake_data"
	StrategyMasking          Strategy = "masking"
	StrategyRemoval          Strategy = "removal"
)

// ParseStrategy converts the wire representation into a strategy. An empty
// string selects pseudonymization, the engine default.
func ParseStrategy(s string) (Strategy, error) {
	if s == "" {
		return StrategyPseudonymization, nil
	}
	st := Strategy(s)
	switch st {
	case StrategyPseudonymization, StrategyFakeData, StrategyMasking, StrategyRemoval:
		return st, nil
	default:
		return "", errors.NewValidationError("INVALID_ANONYMIZATION_METHOD",
			"method must be one of pseudonymization, fake_data, masking, removal")
	}
}

// Anonymizer rewrites detected PII values according to a strategy. The
// returned mapping is value→substitute and must never reach user-facing logs.
type Anonymizer struct {
	logger *zap.Logger
	faker  *faker
}

func New(logger *zap.Logger) *Anonymizer {
	return &Anonymizer{
		logger: logger,
		faker:  newFaker(),
	}
}

// Anonymize builds a substitution per distinct value (first occurrence fixes
// the substitute, later occurrences reuse it) and applies each as a global
// literal replacement. Types are processed in sorted order and values in
// detection order so repeated runs on identical input stay byte-identical for
// deterministic strategies.
func (a *Anonymizer) Anonymize(text string, det detection.Result, strategy Strategy) (string, map[string]string, error) {
	mapping := make(map[string]string)
	out := text

	types := make([]string, 0, len(det.Details))
	for typ := range det.Details {
		types = append(types, typ)
	}
	sort.Strings(types)

	for _, typ := range types {
		for _, value := range det.ValuesFor(text, typ) {
			if _, seen := mapping[value]; !seen {
				substitute, err := a.substitute(value, typ, strategy)
				if err != nil {
					return text, nil, err
				}
				mapping[value] = substitute
			}
			out = strings.ReplaceAll(out, value, mapping[value])
		}
	}

	a.logger.Debug("anonymization applied",
		zap.String("strategy", string(strategy)),
		zap.Int("substitutions", len(mapping)),
	)
	return out, mapping, nil
}

func (a *Anonymizer) substitute(value, typ string, strategy Strategy) (string, error) {
	switch strategy {
	case StrategyPseudonymization:
		return pseudonymize(value, typ), nil
	case StrategyFakeData:
		// Per-type fallback: types without a generator are pseudonymized.
		if fake, ok := a.faker.generate(typ); ok {
			return fake, nil
		}
		return pseudonymize(value, typ), nil
	case StrategyMasking:
		return mask(value, typ), nil
	case StrategyRemoval:
		return "<" + strings.ToUpper(typ) + "_REMOVIDO>", nil
	default:
		return "", errors.NewValidationError("INVALID_ANONYMIZATION_METHOD",
			"unknown anonymization strategy")
	}
}

// pseudonymize is a pure function of the value: the first 8 hex characters of
// its SHA-256, without any per-call salt, so repeated runs are byte-identical
// and referential identity is preserved across texts.
func pseudonymize(value, typ string) string {
	sum := sha256.Sum256([]byte(value))
	return "<" + strings.ToUpper(typ) + "_" + hex.EncodeToString(sum[:])[:8] + ">"
}

// mask applies shape-preserving partial redaction per type, with a generic
// first-2/last-2 fallback.
func mask(value, typ string) string {
	switch typ {
	case detection.TypeCPF:
		if len(value) >= 6 {
			return "***.***." + value[len(value)-6:]
		}
		return "***.***.***-**"
	case detection.TypeEmail:
		if masked, ok := maskEmail(value); ok {
			return masked
		}
	case detection.TypePhone:
		if masked, ok := maskPhone(value); ok {
			return masked
		}
	}
	return maskGeneric(value)
}

func maskEmail(value string) (string, bool) {
	local, domain, ok := strings.Cut(value, "@")
	if !ok {
		return "", false
	}
	name := []rune(local)
	if len(name) > 2 {
		return string(name[0]) + strings.Repeat("*", len(name)-2) + string(name[len(name)-1]) + "@" + domain, true
	}
	return "***@" + domain, true
}

func maskPhone(value string) (string, bool) {
	var digits []byte
	for i := 0; i < len(value); i++ {
		if value[i] >= '0' && value[i] <= '9' {
			digits = append(digits, value[i])
		}
	}
	if len(digits) < 6 {
		return "(**) ****-****", true
	}
	return "(" + string(digits[:2]) + ") ****-" + string(digits[len(digits)-4:]), true
}

func maskGeneric(value string) string {
	runes := []rune(value)
	if len(runes) > 4 {
		return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
	}
	return strings.Repeat("*", len(runes))
}
