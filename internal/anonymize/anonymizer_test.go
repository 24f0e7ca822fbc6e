package anonymize_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/anonymize"
	"github.com/dataguard-br/privacy-engine/internal/detection"
)

func newFixture(t *testing.T) (*anonymize.Anonymizer, *detection.Detector) {
	t.Helper()
	return anonymize.New(zap.NewNop()), detection.NewDetector(zap.NewNop())
}

func TestParseStrategy(t *testing.T) {
	strategy, err := anonymize.ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, anonymize.StrategyPseudonymization, strategy)

	strategy, err = anonymize.ParseStrategy("masking")
	require.NoError(t, err)
	assert.Equal(t, anonymize.StrategyMasking, strategy)

	_, err = anonymize.ParseStrategy("rot13")
	require.Error(t, err)
}

func TestAnonymize_PseudonymizationIsDeterministic(t *testing.T) {
	a, d := newFixture(t)
	text := "Cliente CPF 123.456.789-00, contato joao@x.com"
	det := d.Detect(text)

	out1, map1, err := a.Anonymize(text, det, anonymize.StrategyPseudonymization)
	require.NoError(t, err)
	out2, map2, err := a.Anonymize(text, det, anonymize.StrategyPseudonymization)
	require.NoError(t, err)

	assert.Equal(t, out1, out2, "repeated runs on identical input must be byte-identical")
	assert.Equal(t, map1, map2)

	assert.NotContains(t, out1, "123.456.789-00")
	assert.Contains(t, out1, "<CPF_")
	assert.Contains(t, out1, "<EMAIL_")
}

func TestAnonymize_RepeatedValueGetsOneSubstitute(t *testing.T) {
	a, d := newFixture(t)
	text := "CPF 123.456.789-00 confirmado, repito: 123.456.789-00"
	det := d.Detect(text)

	out, mapping, err := a.Anonymize(text, det, anonymize.StrategyPseudonymization)
	require.NoError(t, err)

	substitute, ok := mapping["123.456.789-00"]
	require.True(t, ok)
	assert.Equal(t, 2, strings.Count(out, substitute),
		"all occurrences of the same value must share one substitute")
	assert.NotContains(t, out, "123.456.789-00")
}

func TestAnonymize_Masking(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "cpf keeps last six characters",
			text: "CPF 123.456.789-00 informado",
			want: "CPF ***.***.789-00 informado",
		},
		{
			name: "email keeps first and last of local part and the domain",
			text: "escreva para joao.silva@empresa.com",
			want: "escreva para j********a@empresa.com",
		},
		{
			name: "phone keeps area digits and last four",
			text: "ligue 98765-4321 agora",
			want: "ligue (98) ****-4321 agora",
		},
		{
			name: "generic fallback keeps two characters at each end",
			text: "assinado por João Silva hoje",
			want: "assinado por Jo******va hoje",
		},
	}

	a, d := newFixture(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det := d.Detect(tt.text)
			out, _, err := a.Anonymize(tt.text, det, anonymize.StrategyMasking)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestAnonymize_Removal(t *testing.T) {
	a, d := newFixture(t)
	text := "CPF 123.456.789-00 e e-mail joao@x.com"
	det := d.Detect(text)

	out, mapping, err := a.Anonymize(text, det, anonymize.StrategyRemoval)
	require.NoError(t, err)

	assert.Contains(t, out, "<CPF_REMOVIDO>")
	assert.Contains(t, out, "<EMAIL_REMOVIDO>")
	for value := range mapping {
		assert.NotContains(t, out, value, "removal output must not contain any detected value")
	}
}

func TestAnonymize_MaskedOutputNeverContainsOriginalValues(t *testing.T) {
	a, d := newFixture(t)
	text := "João Silva, CPF 123.456.789-00, e-mail joao.silva@empresa.com, RG 12.345.678-9"
	det := d.Detect(text)

	out, mapping, err := a.Anonymize(text, det, anonymize.StrategyMasking)
	require.NoError(t, err)
	require.NotEmpty(t, mapping)
	for value := range mapping {
		assert.NotContains(t, out, value)
	}
}

func TestAnonymize_FakeData(t *testing.T) {
	a, d := newFixture(t)
	text := "Cliente CPF 123.456.789-00, contato joao@x.com"
	det := d.Detect(text)

	out, mapping, err := a.Anonymize(text, det, anonymize.StrategyFakeData)
	require.NoError(t, err)
	require.NotEmpty(t, mapping)

	assert.NotContains(t, out, "123.456.789-00")
	assert.NotContains(t, out, "joao@x.com")
}

func TestAnonymize_FakeDataFallsBackWithoutGenerator(t *testing.T) {
	a, d := newFixture(t)
	// RG has no fake generator, so the value must be pseudonymized instead.
	text := "documento RG 12.345.678-9 apresentado"
	det := d.Detect(text)

	out, mapping, err := a.Anonymize(text, det, anonymize.StrategyFakeData)
	require.NoError(t, err)

	substitute, ok := mapping["12.345.678-9"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(substitute, "<RG_"), "got %q", substitute)
	assert.Contains(t, out, substitute)
}

func TestAnonymize_NoDetectionsLeavesTextUntouched(t *testing.T) {
	a, d := newFixture(t)
	text := "relatório trimestral de vendas aprovado"
	det := d.Detect(text)

	out, mapping, err := a.Anonymize(text, det, anonymize.StrategyPseudonymization)
	require.NoError(t, err)
	assert.Equal(t, text, out)
	assert.Empty(t, mapping)
}
