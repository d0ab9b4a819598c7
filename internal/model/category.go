package model

// CategoryPair is one observed (category, subcategory) combination.
// Subcategory may be empty.
type CategoryPair struct {
	Category    string
	Subcategory string
}
