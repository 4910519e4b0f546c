package catalog

import (
	"net/url"
	"strings"

	"catalog/internal/embeddings"
	"catalog/internal/models"
)

// ExtractHandle returns the product slug following "/products/" in a product
// URL, or "" when the URL has no such segment.
func ExtractHandle(productURL string) string {
	u, err := url.Parse(strings.TrimSpace(productURL))
	if err != nil {
		return ""
	}
	_, rest, found := strings.Cut(u.Path, "/products/")
	if !found {
		return ""
	}
	handle, _, _ := strings.Cut(rest, "/")
	return handle
}

// MergeStats summarizes a merge run
type MergeStats struct {
	Variants          int
	WithDetails       int
	CategoryBackfills int
	DuplicatesDropped int
}

var detailColumns = []string{models.ColumnDescription, models.ColumnIngredients, models.ColumnFinish}

// Merge joins scraped fragments into master rows. Variants drive the output;
// product-level details are left-joined on handle, and the collections
// listing backfills categories missing from the variant rows. Rows repeating
// an earlier variant_id, compared in the canonical form used for record ids,
// are dropped. Detail columns the details file lacks keep the variant values. The returned column list is the master
// column order restricted to columns some input actually supplied.
func Merge(collections, details, variants *Table) ([]models.ProductRow, []string, MergeStats) {
	var stats MergeStats

	detailsByHandle := make(map[string]map[string]string)
	if details != nil {
		for _, row := range details.Rows {
			handle := ExtractHandle(row[models.ColumnProductURL])
			if handle == "" {
				continue
			}
			if _, exists := detailsByHandle[handle]; !exists {
				detailsByHandle[handle] = row
			}
		}
	}

	categoryByHandle := make(map[string]string)
	if collections != nil {
		for _, row := range collections.Rows {
			handle := ExtractHandle(row[models.ColumnProductURL])
			category := strings.TrimSpace(row[models.ColumnCategory])
			if handle == "" || category == "" {
				continue
			}
			if _, exists := categoryByHandle[handle]; !exists {
				categoryByHandle[handle] = category
			}
		}
	}

	present := make(map[string]bool)
	if variants != nil {
		for _, column := range variants.Header {
			present[column] = true
		}
	}
	present[models.ColumnHandle] = true
	if details != nil {
		for _, column := range detailColumns {
			if details.Has(column) {
				present[column] = true
			}
		}
	}
	if len(categoryByHandle) > 0 {
		present[models.ColumnCategory] = true
	}

	var rows []models.ProductRow
	seen := make(map[string]struct{})
	if variants != nil {
		for _, raw := range variants.Rows {
			var row models.ProductRow
			for column, value := range raw {
				row.Set(column, value)
			}

			if row.Handle == "" {
				row.Handle = ExtractHandle(row.ProductURL)
			}

			if id, ok := embeddings.VariantID(row); ok {
				if _, dup := seen[id]; dup {
					stats.DuplicatesDropped++
					continue
				}
				seen[id] = struct{}{}
			}

			if detail, ok := detailsByHandle[row.Handle]; ok {
				for _, column := range detailColumns {
					if details.Has(column) {
						row.Set(column, detail[column])
					}
				}
				stats.WithDetails++
			}

			if strings.TrimSpace(row.Category) == "" {
				if category, ok := categoryByHandle[row.Handle]; ok {
					row.Category = category
					stats.CategoryBackfills++
				}
			}

			rows = append(rows, row)
		}
	}
	stats.Variants = len(rows)

	columns := make([]string, 0, len(models.ProductColumns))
	for _, column := range models.ProductColumns {
		if present[column] {
			columns = append(columns, column)
		}
	}

	return rows, columns, stats
}
