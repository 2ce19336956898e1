package models

// ClothingItem is a short text string naming one garment, produced by the
// clothing-list generator.
type ClothingItem string

// CatalogImage is one image in the fixed catalog. Created once at index-build
// time and read-only thereafter.
type CatalogImage struct {
	// ID is the stable catalog identifier.
	ID string `json:"id"`
	// Path is the local file path of the image.
	Path string `json:"path"`
	// Category is optional metadata (e.g. "top", "shoes").
	Category string `json:"category,omitempty"`
	// Color is optional metadata (e.g. "black").
	Color string `json:"color,omitempty"`
}

// ScoredImage pairs a catalog image with its cosine similarity against a query.
// Score is in [-1, 1].
type ScoredImage struct {
	Image CatalogImage `json:"image"`
	Score float64      `json:"score"`
}

// RetrievalResult holds the ranked catalog images for one clothing item,
// ordered by descending score, truncated to the configured top-K.
type RetrievalResult struct {
	Item   ClothingItem  `json:"item"`
	Images []ScoredImage `json:"images"`
}
