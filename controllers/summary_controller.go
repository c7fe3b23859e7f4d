package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/services"
	"github.com/HSouheill/enrollment_backend/utils"
)

// SummaryController summarizes uploaded course PDFs
type SummaryController struct {
	summaries *services.SummaryService
	logger    zerolog.Logger
}

func NewSummaryController(summaries *services.SummaryService, logger zerolog.Logger) *SummaryController {
	return &SummaryController{summaries: summaries, logger: logger.With().Str("component", "summary_controller").Logger()}
}

// SummarizePDF handler reads the "pdf" multipart field and returns its summary
func (sc *SummaryController) SummarizePDF(c echo.Context) error {
	file, err := c.FormFile("pdf")
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.SummaryErrorResponse{Error: "No PDF file uploaded"})
	}
	if err := utils.ValidatePDFUpload(file); err != nil {
		return c.JSON(http.StatusBadRequest, models.SummaryErrorResponse{Error: utils.AsAppError(err).Message})
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.SummaryErrorResponse{Error: "Failed to read uploaded file", Details: err.Error()})
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, utils.MaxPDFSize+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.SummaryErrorResponse{Error: "Failed to read uploaded file", Details: err.Error()})
	}
	if len(data) > utils.MaxPDFSize {
		return c.JSON(http.StatusBadRequest, models.SummaryErrorResponse{Error: "PDF exceeds the 10MB limit"})
	}

	res, err := sc.summaries.SummarizePDF(c.Request().Context(), data)
	if err != nil {
		var failure *services.SummaryFailure
		if !errors.As(err, &failure) {
			sc.logger.Error().Err(err).Msg("unexpected summarization failure")
			failure = &services.SummaryFailure{Message: "Failed to generate summary", Err: err}
		}
		return c.JSON(failure.StatusCode(), models.SummaryErrorResponse{
			Error:    failure.Message,
			Details:  failure.Details(),
			Solution: failure.Solution,
		})
	}

	sc.logger.Info().Str("filename", file.Filename).Int("chars_processed", res.CharsProcessed).Msg("PDF summarized")
	return c.JSON(http.StatusOK, res)
}
