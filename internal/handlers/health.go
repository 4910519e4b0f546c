package handlers

import (
	"context"
	"net/http"
	"time"

	"catalog/internal/models"
	"catalog/internal/vectorindex"

	"github.com/labstack/echo/v4"
)

// IndexStats is the part of the vector index the health check needs
type IndexStats interface {
	Name() string
	DescribeStats(ctx context.Context) (vectorindex.Stats, error)
}

// HealthHandler handles basic health check requests
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /healthz [get]
func HealthHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   version,
		}

		return c.JSON(http.StatusOK, response)
	}
}

// IndexHealthHandler reports vector index reachability and content
// @Summary Vector index health check
// @Tags health
// @Produce json
// @Success 200 {object} models.IndexHealthResponse
// @Failure 503 {object} models.IndexHealthResponse
// @Router /healthz/index [get]
func IndexHealthHandler(index IndexStats) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := models.IndexHealthResponse{
			Status:    "unknown",
			Timestamp: time.Now().UTC(),
		}

		if index == nil {
			response.Status = "unhealthy"
			response.Error = "Vector index not initialized"
			return c.JSON(http.StatusServiceUnavailable, response)
		}
		response.Index = index.Name()

		start := time.Now()
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		stats, err := index.DescribeStats(ctx)
		response.Latency = time.Since(start)

		if err != nil {
			response.Status = "unhealthy"
			response.Error = err.Error()
			return c.JSON(http.StatusServiceUnavailable, response)
		}

		response.Status = "healthy"
		response.VectorCount = stats.TotalVectorCount
		response.Dimension = stats.Dimension

		return c.JSON(http.StatusOK, response)
	}
}

// RootHandler handles requests to the root endpoint
// @Summary Service information
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]string
// @Router /api/ [get]
func RootHandler(version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Catalog Recommendation API",
			"version": version,
			"status":  "running",
		})
	}
}
