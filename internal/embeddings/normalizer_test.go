package embeddings

import (
	"strings"
	"testing"
	"unicode/utf8"

	"catalog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRow() models.ProductRow {
	return models.ProductRow{
		Category:         "face",
		ProductName:      "Soft Pinch Liquid Blush",
		Handle:           "soft-pinch-liquid-blush",
		VariantID:        "4001",
		VariantTitle:     "Joy",
		VariantPrice:     "23.0",
		VariantAvailable: "True",
		VariantSKU:       "SKU-1",
		VariantImage:     "//cdn/joy.png",
		Description:      "A weightless liquid blush",
		Ingredients:      "Water, Glycerin",
		Finish:           "Dewy",
		ProductURL:       "https://www.rarebeauty.com/products/soft-pinch-liquid-blush",
	}
}

func TestBuildEmbeddingText(t *testing.T) {
	text := BuildEmbeddingText(fullRow())

	assert.Equal(t,
		"Product: Soft Pinch Liquid Blush | Shade/Variant: Joy | Category: face | "+
			"Description: A weightless liquid blush | Ingredients: Water, Glycerin | Finish: Dewy",
		text)
}

func TestBuildEmbeddingText_SkipsAbsentFields(t *testing.T) {
	row := fullRow()
	row.Description = ""
	row.VariantTitle = "nan"
	row.Finish = "   "

	text := BuildEmbeddingText(row)

	assert.NotContains(t, text, "Description:")
	assert.NotContains(t, text, "Shade/Variant:")
	assert.NotContains(t, text, "Finish:")
	assert.Equal(t, "Product: Soft Pinch Liquid Blush | Category: face | Ingredients: Water, Glycerin", text)
}

func TestBuildEmbeddingText_EmptyRow(t *testing.T) {
	assert.Equal(t, "", BuildEmbeddingText(models.ProductRow{}))
}

func TestBuildEmbeddingText_Truncation(t *testing.T) {
	row := fullRow()
	row.Description = strings.Repeat("d", 2000)
	row.Ingredients = strings.Repeat("é", 800)

	text := BuildEmbeddingText(row)

	segments := strings.Split(text, " | ")
	var desc, ingredients string
	for _, s := range segments {
		if strings.HasPrefix(s, "Description: ") {
			desc = strings.TrimPrefix(s, "Description: ")
		}
		if strings.HasPrefix(s, "Ingredients: ") {
			ingredients = strings.TrimPrefix(s, "Ingredients: ")
		}
	}
	assert.Equal(t, DescriptionTextLimit, utf8.RuneCountInString(desc))
	assert.Equal(t, IngredientsTextLimit, utf8.RuneCountInString(ingredients))
	assert.True(t, utf8.ValidString(ingredients))
}

func TestBuildMetadata(t *testing.T) {
	metadata := BuildMetadata(fullRow())

	assert.Equal(t, map[string]any{
		"product_name":  "Soft Pinch Liquid Blush",
		"category":      "face",
		"variant_title": "Joy",
		"variant_sku":   "SKU-1",
		"handle":        "soft-pinch-liquid-blush",
		"variant_image": "//cdn/joy.png",
		"product_url":   "https://www.rarebeauty.com/products/soft-pinch-liquid-blush",
		"description":   "A weightless liquid blush",
		"ingredients":   "Water, Glycerin",
		"finish":        "Dewy",
		"price":         23.0,
		"available":     true,
		"variant_id":    "4001",
	}, metadata)
}

func TestBuildMetadata_OmitsAbsentAndMalformed(t *testing.T) {
	row := fullRow()
	row.Description = ""
	row.VariantPrice = "twenty"
	row.VariantAvailable = "sometimes"
	row.Finish = "NaN"

	metadata := BuildMetadata(row)

	assert.NotContains(t, metadata, "description")
	assert.NotContains(t, metadata, "price")
	assert.NotContains(t, metadata, "available")
	assert.NotContains(t, metadata, "finish")
	assert.Equal(t, "Joy", metadata["variant_title"])

	for key, value := range metadata {
		switch value.(type) {
		case string, float64, bool:
		default:
			t.Fatalf("metadata %q has unsupported type %T", key, value)
		}
	}
}

func TestBuildMetadata_TruncatesLongStrings(t *testing.T) {
	row := fullRow()
	row.Description = strings.Repeat("x", 50000)

	metadata := BuildMetadata(row)

	desc, ok := metadata["description"].(string)
	require.True(t, ok)
	assert.LessOrEqual(t, len(desc), MetadataStringLimit)
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw   string
		price float64
		ok    bool
	}{
		{raw: "23", price: 23, ok: true},
		{raw: " 19.50 ", price: 19.5, ok: true},
		{raw: "$30", price: 30, ok: true},
		{raw: "nan", ok: false},
		{raw: "NaN", ok: false},
		{raw: "Inf", ok: false},
		{raw: "", ok: false},
		{raw: "abc", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			price, ok := ParsePrice(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.price, price, 1e-9)
			}
		})
	}
}

func TestParseAvailable(t *testing.T) {
	tests := []struct {
		raw       string
		available bool
		ok        bool
	}{
		{raw: "True", available: true, ok: true},
		{raw: "false", available: false, ok: true},
		{raw: "1", available: true, ok: true},
		{raw: "yes", ok: false},
		{raw: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			available, ok := ParseAvailable(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.available, available)
		})
	}
}

func TestRecordID(t *testing.T) {
	tests := []struct {
		variantID string
		expected  string
		ok        bool
	}{
		{variantID: "4001", expected: "variant_4001", ok: true},
		{variantID: "4001.0", expected: "variant_4001", ok: true},
		{variantID: " 42 ", expected: "variant_42", ok: true},
		{variantID: "abc-1", expected: "variant_abc-1", ok: true},
		{variantID: "12.5", expected: "variant_12.5", ok: true},
		{variantID: "", ok: false},
		{variantID: "nan", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.variantID, func(t *testing.T) {
			id, ok := RecordID(models.ProductRow{VariantID: tt.variantID})
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, id)
		})
	}
}
