package domain

// Category is one of the seven ISO/IEC 9126 software quality
// characteristics. The set is fixed at build time; classifier labels,
// score maps and coverage maps always carry all seven keys.
type Category string

const (
	CategoryEfficiency      Category = "Efficiency"
	CategoryFunctionality   Category = "Functionality"
	CategoryMaintainability Category = "Maintainability"
	CategoryPortability     Category = "Portability"
	CategoryReliability     Category = "Reliability"
	CategorySecurity        Category = "Security"
	CategoryUsability       Category = "Usability"
)

// Categories returns the full category set in its canonical order:
// alphabetical by name. The same order breaks probability ties during
// classification, so it must stay sorted.
func Categories() []Category {
	return []Category{
		CategoryEfficiency,
		CategoryFunctionality,
		CategoryMaintainability,
		CategoryPortability,
		CategoryReliability,
		CategorySecurity,
		CategoryUsability,
	}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryEfficiency, CategoryFunctionality, CategoryMaintainability,
		CategoryPortability, CategoryReliability, CategorySecurity, CategoryUsability:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }
