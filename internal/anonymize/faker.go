package anonymize

import (
	"github.com/brianvoe/gofakeit/v7"

	"github.com/dataguard-br/privacy-engine/internal/detection"
)

// faker produces type-appropriate replacement values for the fake_data
// strategy. Output is intentionally non-deterministic. Brazilian identifier
// shapes (CPF, CNPJ, CEP, phone) come from digit templates; names and emails
// from gofakeit. RG has no generator and falls back to pseudonymization.
type faker struct {
	gen        *gofakeit.Faker
	generators map[string]func(*gofakeit.Faker) string
}

func newFaker() *faker {
	return &faker{
		gen: gofakeit.New(0),
		generators: map[string]func(*gofakeit.Faker) string{
			detection.TypeCPF: func(f *gofakeit.Faker) string {
				return f.Numerify("###.###.###-##")
			},
			detection.TypeCNPJ: func(f *gofakeit.Faker) string {
				return f.Numerify("##.###.###/####-##")
			},
			detection.TypeEmail: func(f *gofakeit.Faker) string {
				return f.Email()
			},
			detection.TypePhone: func(f *gofakeit.Faker) string {
				return f.Numerify("(##) #####-####")
			},
			detection.TypeCEP: func(f *gofakeit.Faker) string {
				return f.Numerify("#####-###")
			},
			detection.TypeProperName: func(f *gofakeit.Faker) string {
				return f.Name()
			},
		},
	}
}

// generate returns a fake value for the type, or false when no generator
// exists.
func (f *faker) generate(typ string) (string, bool) {
	gen, ok := f.generators[typ]
	if !ok {
		return "", false
	}
	return gen(f.gen), true
}
