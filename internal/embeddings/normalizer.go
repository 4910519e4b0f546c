package embeddings

import (
	"math"
	"strconv"
	"strings"

	"catalog/internal/models"
)

// Limits applied while normalizing a row
const (
	DescriptionTextLimit = 1000
	IngredientsTextLimit = 500
	MetadataStringLimit  = 40000

	textDelimiter = " | "
)

// Metadata keys written to the index
const (
	MetaPrice     = "price"
	MetaAvailable = "available"
	MetaVariantID = "variant_id"
)

// metadataStringColumns are copied into metadata verbatim (after truncation)
var metadataStringColumns = []string{
	models.ColumnProductName,
	models.ColumnCategory,
	models.ColumnVariantTitle,
	models.ColumnVariantSKU,
	models.ColumnHandle,
	models.ColumnVariantImage,
	models.ColumnProductURL,
	models.ColumnDescription,
	models.ColumnIngredients,
	models.ColumnFinish,
}

// BuildEmbeddingText creates the labelled text sent to the embedding model.
// Absent fields are skipped entirely.
func BuildEmbeddingText(row models.ProductRow) string {
	parts := make([]string, 0, 6)

	if v, ok := present(row.ProductName); ok {
		parts = append(parts, "Product: "+v)
	}
	if v, ok := present(row.VariantTitle); ok {
		parts = append(parts, "Shade/Variant: "+v)
	}
	if v, ok := present(row.Category); ok {
		parts = append(parts, "Category: "+v)
	}
	if v, ok := present(row.Description); ok {
		parts = append(parts, "Description: "+truncate(v, DescriptionTextLimit))
	}
	if v, ok := present(row.Ingredients); ok {
		parts = append(parts, "Ingredients: "+truncate(v, IngredientsTextLimit))
	}
	if v, ok := present(row.Finish); ok {
		parts = append(parts, "Finish: "+v)
	}

	return strings.Join(parts, textDelimiter)
}

// BuildMetadata returns the index metadata for a row. Only present fields are
// included; cells that fail to parse are left out rather than failing the row.
func BuildMetadata(row models.ProductRow) map[string]any {
	metadata := make(map[string]any, len(metadataStringColumns)+3)

	for _, column := range metadataStringColumns {
		if v, ok := present(row.Get(column)); ok {
			metadata[column] = truncate(v, MetadataStringLimit)
		}
	}

	if price, ok := ParsePrice(row.VariantPrice); ok {
		metadata[MetaPrice] = price
	}
	if available, ok := ParseAvailable(row.VariantAvailable); ok {
		metadata[MetaAvailable] = available
	}
	if id, ok := VariantID(row); ok {
		metadata[MetaVariantID] = id
	}

	return metadata
}

// Normalize returns both the embedding text and the metadata for a row
func Normalize(row models.ProductRow) (string, map[string]any) {
	return BuildEmbeddingText(row), BuildMetadata(row)
}

// VariantID returns the canonical variant id. Integral floats written by
// spreadsheet tools ("4001.0") are reduced to their integer form.
func VariantID(row models.ProductRow) (string, bool) {
	id, ok := present(row.VariantID)
	if !ok {
		return "", false
	}
	if whole, frac, found := strings.Cut(id, "."); found && whole != "" && strings.Trim(frac, "0") == "" {
		if _, err := strconv.ParseInt(whole, 10, 64); err == nil {
			return whole, true
		}
	}
	return id, true
}

// RecordID returns the index id for a row ("variant_<id>")
func RecordID(row models.ProductRow) (string, bool) {
	id, ok := VariantID(row)
	if !ok {
		return "", false
	}
	return "variant_" + id, true
}

// ParsePrice parses a price cell, accepting a leading currency symbol
func ParsePrice(raw string) (float64, bool) {
	v, ok := present(raw)
	if !ok {
		return 0, false
	}
	v = strings.TrimSpace(strings.TrimPrefix(v, "$"))
	price, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}

// ParseAvailable parses an availability cell ("True", "false", "1", ...)
func ParseAvailable(raw string) (bool, bool) {
	v, ok := present(raw)
	if !ok {
		return false, false
	}
	available, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return available, true
}

// present trims a cell and reports whether it carries a value. Spreadsheet
// exports write missing values as "nan".
func present(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "nan") {
		return "", false
	}
	return v, true
}

// truncate cuts s to at most limit characters without splitting a rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
