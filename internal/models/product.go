package models

// Product is one of the demo products shown on the site.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// Catalog is the fixed list of demo products.
var Catalog = []Product{
	{
		ID:          1,
		Name:        "Product One",
		Category:    "Category A",
		Description: "Product One is a powerful solution for modern teams.",
		Features:    []string{"Feature 1", "Feature 2", "Feature 3"},
	},
	{
		ID:          2,
		Name:        "Product Two",
		Category:    "Category B",
		Description: "Product Two helps you scale your business efficiently.",
		Features:    []string{"Feature A", "Feature B", "Feature C"},
	},
}
