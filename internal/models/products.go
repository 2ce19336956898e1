package models

// ProductResult is a single shoppable product entry returned by the visual
// product-search service. Price is nil when the service did not report one in
// any recognized shape.
type ProductResult struct {
	Title     string   `json:"title"`
	Source    string   `json:"source"`
	Price     *float64 `json:"price,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Link      string   `json:"link,omitempty"`
}

// ItemLook is the pipeline output for one clothing item: the retrieved catalog
// images, the public URL of the chosen image, and the product results found for
// it. Err is non-nil only when the pipeline runs with per-item isolation and
// this item failed.
type ItemLook struct {
	Item      ClothingItem    `json:"item"`
	Retrieval RetrievalResult `json:"retrieval"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Products  []ProductResult `json:"products,omitempty"`
	Err       error           `json:"-"`
}
