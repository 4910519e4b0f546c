// Package openai provides a unified embedding client for OpenAI API access
// with support for both Azure OpenAI (primary) and OpenAI platform (fallback)
package openai

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"catalog/internal/config"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// Client wraps OpenAI client with Azure OpenAI support and fallback capability
type Client struct {
	primary       *openai.Client
	fallback      *openai.Client
	useAzure      bool
	embedModel    openai.EmbeddingModel
	fallbackModel openai.EmbeddingModel
	dimension     int
	providerName  string
	logger        zerolog.Logger
}

// NewClient creates a new OpenAI client with Azure as primary and OpenAI as fallback
func NewClient(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	client := &Client{
		dimension: cfg.EmbeddingDimension,
		logger:    logger.With().Str("component", "openai_client").Logger(),
	}
	httpClient := &http.Client{Timeout: time.Duration(cfg.OpenAITimeout) * time.Second}

	// Try Azure OpenAI first (primary)
	if cfg.UseAzureOpenAI() {
		azureConfig := openai.DefaultAzureConfig(cfg.AzureOpenAIKey, cfg.AzureOpenAIEndpoint)
		azureConfig.HTTPClient = httpClient
		client.primary = openai.NewClientWithConfig(azureConfig)
		client.useAzure = true
		client.embedModel = openai.EmbeddingModel(cfg.AzureOpenAIEmbeddingDeployment)
		client.providerName = "Azure OpenAI"

		client.logger.Info().Str("endpoint", cfg.AzureOpenAIEndpoint).Msg("Primary provider: Azure OpenAI")
	}

	// Setup OpenAI as fallback (or primary if Azure not configured)
	if cfg.HasOpenAIFallback() {
		openaiConfig := openai.DefaultConfig(cfg.OpenAIKey)
		if cfg.OpenAIBaseURL != "" {
			openaiConfig.BaseURL = strings.TrimSuffix(cfg.OpenAIBaseURL, "/")
		}
		openaiConfig.HTTPClient = httpClient
		client.fallback = openai.NewClientWithConfig(openaiConfig)
		client.fallbackModel = openai.EmbeddingModel(cfg.EmbeddingModel)

		if !client.useAzure {
			// Use OpenAI as primary since Azure is not configured
			client.primary = client.fallback
			client.fallback = nil
			client.embedModel = client.fallbackModel
			client.providerName = "OpenAI"

			client.logger.Info().Msg("Primary provider: OpenAI (Azure not configured)")
		} else {
			client.logger.Info().Msg("Fallback provider: OpenAI")
		}
	}

	if client.primary == nil {
		return nil, fmt.Errorf("no OpenAI provider configured: set AZURE_OPENAI_ENDPOINT + AZURE_OPENAI_KEY or OPENAI_API_KEY")
	}

	return client, nil
}

// TestConnection verifies the API connection works
func (c *Client) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := c.CreateEmbeddings(ctx, []string{"test"}); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.providerName, err)
	}

	c.logger.Info().Str("provider", c.providerName).Msg("Connection test successful")
	return nil
}

// CreateEmbeddings generates embeddings for the given texts, ordered like the input
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := c.primary.CreateEmbeddings(ctx, c.request(texts, c.embedModel))

	if err != nil && c.fallback != nil {
		c.logger.Warn().Err(err).Msg("Primary failed, trying fallback")
		resp, err = c.fallback.CreateEmbeddings(ctx, c.request(texts, c.fallbackModel))
		if err != nil {
			return nil, fmt.Errorf("both providers failed: %w", err)
		}
		c.logger.Info().Msg("Fallback succeeded")
	} else if err != nil {
		return nil, err
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	embeddings := make([][]float32, len(data))
	for i, d := range data {
		embeddings[i] = d.Embedding
	}

	return embeddings, nil
}

func (c *Client) request(texts []string, model openai.EmbeddingModel) openai.EmbeddingRequest {
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: model,
	}
	// Only the text-embedding-3 family accepts a reduced output dimension
	if c.dimension > 0 && strings.HasPrefix(string(model), "text-embedding-3") {
		req.Dimensions = c.dimension
	}
	return req
}

// GetProviderName returns the current primary provider name
func (c *Client) GetProviderName() string {
	return c.providerName
}

// IsUsingAzure returns true if Azure OpenAI is the primary provider
func (c *Client) IsUsingAzure() bool {
	return c.useAzure
}

// GetEmbeddingModel returns the embedding model/deployment name being used
func (c *Client) GetEmbeddingModel() string {
	return string(c.embedModel)
}
