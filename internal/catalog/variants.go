package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"catalog/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultShopURL is the storefront whose product JSON is fetched
const DefaultShopURL = "https://www.rarebeauty.com"

// VariantColumns is the column order of the variants CSV
var VariantColumns = []string{
	models.ColumnCategory,
	models.ColumnProductName,
	models.ColumnHandle,
	models.ColumnVariantID,
	models.ColumnVariantTitle,
	models.ColumnVariantPrice,
	models.ColumnVariantAvailable,
	models.ColumnVariantSKU,
	models.ColumnVariantImage,
	models.ColumnProductURL,
}

// HTTPDoer sends requests; *http.Client satisfies it
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// VariantFetcher expands the collections listing into one row per variant
// using the storefront's public product JSON (/products/{handle}.js)
type VariantFetcher struct {
	client  HTTPDoer
	shopURL string
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// FetchStats summarizes a fetch run
type FetchStats struct {
	Listed   int
	Fetched  int
	Failed   int
	Skipped  int
	Variants int
}

// NewVariantFetcher creates a fetcher. A nil client uses a 30 second
// timeout client; interval <= 0 sends requests without pacing.
func NewVariantFetcher(client HTTPDoer, shopURL string, interval time.Duration, logger zerolog.Logger) *VariantFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if shopURL == "" {
		shopURL = DefaultShopURL
	}

	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}

	return &VariantFetcher{
		client:  client,
		shopURL: strings.TrimSuffix(shopURL, "/"),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "variant_fetcher").Logger(),
	}
}

type shopifyProduct struct {
	Title         string           `json:"title"`
	FeaturedImage string           `json:"featured_image"`
	Variants      []shopifyVariant `json:"variants"`
}

type shopifyVariant struct {
	ID            json.Number `json:"id"`
	Title         string      `json:"title"`
	PublicTitle   string      `json:"public_title"`
	Price         json.Number `json:"price"`
	Available     bool        `json:"available"`
	SKU           string      `json:"sku"`
	FeaturedImage *struct {
		Src string `json:"src"`
	} `json:"featured_image"`
}

// FetchVariants fetches every product listed in collections. Rows without an
// http product URL or a parsable handle are skipped, and a handle listed
// under several categories is fetched once with its first category. A failed
// product is logged and skipped; only context cancellation stops the run.
func (f *VariantFetcher) FetchVariants(ctx context.Context, collections *Table) ([]models.ProductRow, FetchStats, error) {
	var (
		stats FetchStats
		rows  []models.ProductRow
	)
	seen := make(map[string]struct{})

	for i, listing := range collections.Rows {
		stats.Listed++
		productURL := strings.TrimSpace(listing[models.ColumnProductURL])
		if !strings.HasPrefix(productURL, "http") {
			stats.Skipped++
			continue
		}

		handle := ExtractHandle(productURL)
		if handle == "" {
			f.logger.Warn().Str("product_url", productURL).Msg("Could not parse handle, skipping")
			stats.Skipped++
			continue
		}
		if _, dup := seen[handle]; dup {
			stats.Skipped++
			continue
		}
		seen[handle] = struct{}{}

		if err := f.limiter.Wait(ctx); err != nil {
			return rows, stats, err
		}

		f.logger.Info().Int("n", i+1).Int("of", len(collections.Rows)).Str("handle", handle).Msg("Fetching variants")
		product, err := f.fetchProduct(ctx, handle)
		if err != nil {
			if ctx.Err() != nil {
				return rows, stats, ctx.Err()
			}
			f.logger.Warn().Err(err).Str("handle", handle).Msg("Failed to fetch product, skipping")
			stats.Failed++
			continue
		}
		stats.Fetched++

		name := product.Title
		if name == "" {
			name = strings.TrimSpace(listing[models.ColumnProductName])
		}
		category := strings.TrimSpace(listing[models.ColumnCategory])

		for _, v := range product.Variants {
			rows = append(rows, variantRow(category, name, handle, productURL, product.FeaturedImage, v))
		}
		stats.Variants += len(product.Variants)
	}

	return rows, stats, nil
}

func (f *VariantFetcher) fetchProduct(ctx context.Context, handle string) (*shopifyProduct, error) {
	endpoint := fmt.Sprintf("%s/products/%s.js", f.shopURL, url.PathEscape(handle))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GET %s: status %d", endpoint, resp.StatusCode)
	}

	var product shopifyProduct
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return &product, nil
}

func variantRow(category, name, handle, productURL, productImage string, v shopifyVariant) models.ProductRow {
	title := v.PublicTitle
	if title == "" {
		title = v.Title
	}

	image := productImage
	if v.FeaturedImage != nil && v.FeaturedImage.Src != "" {
		image = v.FeaturedImage.Src
	}

	return models.ProductRow{
		Category:         category,
		ProductName:      name,
		Handle:           handle,
		VariantID:        v.ID.String(),
		VariantTitle:     title,
		VariantPrice:     formatCents(v.Price),
		VariantAvailable: strconv.FormatBool(v.Available),
		VariantSKU:       v.SKU,
		VariantImage:     image,
		ProductURL:       productURL,
	}
}

// formatCents turns a price in cents into a decimal string; zero or missing
// prices are left empty
func formatCents(n json.Number) string {
	cents, err := n.Float64()
	if err != nil || cents == 0 {
		return ""
	}
	return strconv.FormatFloat(cents/100, 'f', -1, 64)
}
