package privacy

// DataCategory classifies content sensitivity following the LGPD taxonomy.
type DataCategory string

const (
	CategoryPersonal     DataCategory = "personal"
	CategorySensitive    DataCategory = "sensitive"
	CategoryAnonymous    DataCategory = "anonymous"
	CategoryPseudonymous DataCategory = "pseudonymous"
	CategoryPublic       DataCategory = "public"
)

// AllCategories returns every category in a stable order, used by summary reports.
func AllCategories() []DataCategory {
	return []DataCategory{
		CategoryPersonal,
		CategorySensitive,
		CategoryAnonymous,
		CategoryPseudonymous,
		CategoryPublic,
	}
}

func (c DataCategory) IsValid() bool {
	switch c {
	case CategoryPersonal, CategorySensitive, CategoryAnonymous, CategoryPseudonymous, CategoryPublic:
		return true
	default:
		return false
	}
}

// RequiresProtection reports whether expired records of this category must be
// anonymized instead of kept as-is.
func (c DataCategory) RequiresProtection() bool {
	return c == CategoryPersonal || c == CategorySensitive
}
