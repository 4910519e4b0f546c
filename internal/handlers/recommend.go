package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"catalog/internal/models"
	"catalog/internal/search"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Recommender answers recommendation requests
type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendRequest) (*models.RecommendResponse, error)
}

// RecommendHandler handles product recommendation requests
// @Summary Recommend products
// @Description Embed a free-text query and return the closest catalog variants, optionally filtered by category, price and availability
// @Tags recommend
// @Accept json
// @Produce json
// @Param request body models.RecommendRequest true "Recommendation request"
// @Success 200 {object} models.RecommendResponse
// @Failure 400 {object} models.RecommendResponse
// @Failure 500 {object} models.RecommendResponse
// @Failure 503 {object} models.RecommendResponse
// @Router /api/recommend [post]
func RecommendHandler(recommender Recommender, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if recommender == nil {
			return c.JSON(http.StatusServiceUnavailable, models.RecommendResponse{
				Matches: []models.Match{},
				Error:   "Search service not available",
			})
		}

		var req models.RecommendRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.RecommendResponse{
				Matches: []models.Match{},
				Error:   fmt.Sprintf("Invalid request body: %v", err),
			})
		}

		resp, err := recommender.Recommend(c.Request().Context(), req)
		switch {
		case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrInvalidPriceRange):
			return c.JSON(http.StatusBadRequest, models.RecommendResponse{
				Matches: []models.Match{},
				Error:   err.Error(),
			})
		case err != nil:
			logger.Error().Err(err).Str("query", req.Query).Msg("Recommendation failed")
			return c.JSON(http.StatusInternalServerError, models.RecommendResponse{
				Matches: []models.Match{},
				Error:   "Failed to generate recommendations",
			})
		}

		if resp.Matches == nil {
			resp.Matches = []models.Match{}
		}
		return c.JSON(http.StatusOK, resp)
	}
}
