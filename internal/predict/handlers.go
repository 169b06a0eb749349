package predict

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spacesedan/reviewsense/internal/models"
)

func (s *Service) Register(e *echo.Echo) {
	e.POST("/api/predict", s.handlePredict)
	e.GET("/healthz", handleHealth)
}

func (s *Service) handlePredict(c echo.Context) error {
	var req models.PredictRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}

	label, err := s.Predict(c.Request().Context(), req.Review)
	switch {
	case errors.Is(err, ErrEmptyReview):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Empty review"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Prediction failed"})
	}

	return c.JSON(http.StatusOK, models.PredictResponse{Sentiment: label})
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{Status: "ok"})
}
