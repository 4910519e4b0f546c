package models

// Master CSV column names, in output order
const (
	ColumnCategory         = "category"
	ColumnProductName      = "product_name"
	ColumnHandle           = "handle"
	ColumnVariantID        = "variant_id"
	ColumnVariantTitle     = "variant_title"
	ColumnVariantPrice     = "variant_price"
	ColumnVariantAvailable = "variant_available"
	ColumnVariantSKU       = "variant_sku"
	ColumnVariantImage     = "variant_image"
	ColumnDescription      = "description"
	ColumnIngredients      = "ingredients"
	ColumnFinish           = "finish"
	ColumnProductURL       = "product_url"
)

// ProductColumns is the column order of the master catalog
var ProductColumns = []string{
	ColumnCategory,
	ColumnProductName,
	ColumnHandle,
	ColumnVariantID,
	ColumnVariantTitle,
	ColumnVariantPrice,
	ColumnVariantAvailable,
	ColumnVariantSKU,
	ColumnVariantImage,
	ColumnDescription,
	ColumnIngredients,
	ColumnFinish,
	ColumnProductURL,
}

// ProductRow is one variant of one product as read from the master CSV.
// Every field holds the raw cell text; an empty cell means the value is absent.
// Price and availability stay unparsed so malformed cells can be dropped
// field-by-field during normalization.
type ProductRow struct {
	Category         string `json:"category"`
	ProductName      string `json:"product_name"`
	Handle           string `json:"handle"`
	VariantID        string `json:"variant_id"`
	VariantTitle     string `json:"variant_title"`
	VariantPrice     string `json:"variant_price"`
	VariantAvailable string `json:"variant_available"`
	VariantSKU       string `json:"variant_sku"`
	VariantImage     string `json:"variant_image"`
	Description      string `json:"description"`
	Ingredients      string `json:"ingredients"`
	Finish           string `json:"finish"`
	ProductURL       string `json:"product_url"`
}

// Field returns a pointer to the field backing the named column, or nil
// for unknown columns.
func (r *ProductRow) Field(column string) *string {
	switch column {
	case ColumnCategory:
		return &r.Category
	case ColumnProductName:
		return &r.ProductName
	case ColumnHandle:
		return &r.Handle
	case ColumnVariantID:
		return &r.VariantID
	case ColumnVariantTitle:
		return &r.VariantTitle
	case ColumnVariantPrice:
		return &r.VariantPrice
	case ColumnVariantAvailable:
		return &r.VariantAvailable
	case ColumnVariantSKU:
		return &r.VariantSKU
	case ColumnVariantImage:
		return &r.VariantImage
	case ColumnDescription:
		return &r.Description
	case ColumnIngredients:
		return &r.Ingredients
	case ColumnFinish:
		return &r.Finish
	case ColumnProductURL:
		return &r.ProductURL
	}
	return nil
}

// Get returns the raw value of a column ("" for unknown columns)
func (r *ProductRow) Get(column string) string {
	if f := r.Field(column); f != nil {
		return *f
	}
	return ""
}

// Set assigns a column value; unknown columns are ignored
func (r *ProductRow) Set(column, value string) {
	if f := r.Field(column); f != nil {
		*f = value
	}
}
