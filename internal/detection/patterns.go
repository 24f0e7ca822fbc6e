package detection

import (
	"regexp"
)

// PII type names as they appear in detection results, audit details and risk
// weight tables.
const (
	TypeCPF        = "cpf"
	TypeCNPJ       = "cnpj"
	TypeEmail      = "email"
	TypePhone      = "phone"
	TypeRG         = "rg"
	TypeCEP        = "cep"
	TypeProperName = "proper_name"
)

// pattern pairs a PII type with its compiled expression. Order is the scan
// order and the order of DetectedTypes in results.
type pattern struct {
	name string
	re   *regexp.Regexp
}

// The catalog targets Brazilian identifiers. proper_name is a deliberately
// loose heuristic (two or more consecutive capitalized words) and produces
// false positives; callers are expected to treat it as a hint, not a match.
var patterns = []pattern{
	{TypeCPF, regexp.MustCompile(`\b\d{3}\.?\d{3}\.?\d{3}-?\d{2}\b`)},
	{TypeCNPJ, regexp.MustCompile(`\b\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\d{2}\b`)},
	{TypeEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{TypePhone, regexp.MustCompile(`\b(?:\(\d{2}\)\s?)?\d{4,5}-?\d{4}\b`)},
	{TypeRG, regexp.MustCompile(`\b\d{1,2}\.?\d{3}\.?\d{3}-?\d\b`)},
	{TypeCEP, regexp.MustCompile(`\b\d{5}-?\d{3}\b`)},
	{TypeProperName, regexp.MustCompile(`\p{Lu}\p{Ll}+ \p{Lu}\p{Ll}+(?:\s\p{Lu}\p{Ll}+)*`)},
}

// PatternTypes lists every catalog type in scan order.
func PatternTypes() []string {
	names := make([]string, 0, len(patterns))
	for _, p := range patterns {
		names = append(names, p.name)
	}
	return names
}
