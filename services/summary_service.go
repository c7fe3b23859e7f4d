package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/HSouheill/enrollment_backend/models"
	"github.com/HSouheill/enrollment_backend/utils"
)

// MaxSummaryChars is how much extracted text is sent upstream.
const MaxSummaryChars = 10000

const (
	msgSummaryFailed     = "Failed to generate summary"
	solutionDefault      = "Try a smaller PDF or check your Hugging Face token"
	solutionModelLoading = "Model is loading, try again in a few seconds"
)

// SummaryFailure carries the message, details and remediation for a failed summary.
type SummaryFailure struct {
	Kind     utils.ErrorKind
	Message  string
	Solution string
	Err      error
}

func (f *SummaryFailure) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *SummaryFailure) Unwrap() error { return f.Err }

// Details is the underlying error text shown to the client.
func (f *SummaryFailure) Details() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// StatusCode is 400 for bad input and 500 otherwise.
func (f *SummaryFailure) StatusCode() int {
	if f.Kind == utils.KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SummaryService extracts, truncates and summarizes uploaded PDFs.
type SummaryService struct {
	extractor  TextExtractor
	summarizer Summarizer
	model      string
	timeout    time.Duration
	logger     zerolog.Logger
}

func NewSummaryService(extractor TextExtractor, summarizer Summarizer, model string, timeout time.Duration, logger zerolog.Logger) *SummaryService {
	return &SummaryService{
		extractor:  extractor,
		summarizer: summarizer,
		model:      model,
		timeout:    timeout,
		logger:     logger.With().Str("component", "summary").Logger(),
	}
}

// SummarizePDF summarizes the first MaxSummaryChars characters of the PDF text.
func (s *SummaryService) SummarizePDF(ctx context.Context, data []byte) (*models.SummaryResponse, error) {
	if s.summarizer == nil {
		return nil, &SummaryFailure{
			Kind:     utils.KindUpstream,
			Message:  "Summarization is not configured",
			Solution: "Set HF_API_KEY on the server",
		}
	}

	raw, err := s.extractor.ExtractText(data)
	if err != nil {
		return nil, &SummaryFailure{Kind: utils.KindValidation, Message: "Failed to read PDF", Solution: "Upload a text-based PDF", Err: err}
	}
	text := TruncateChars(raw, MaxSummaryChars)
	if strings.TrimSpace(text) == "" {
		return nil, &SummaryFailure{Kind: utils.KindValidation, Message: "No text found in PDF", Solution: "Upload a text-based PDF, scanned images are not supported"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		failure := classifySummaryError(err)
		s.logger.Error().Err(err).Str("kind", failure.Kind.String()).Msg("summarization error")
		return nil, failure
	}

	chars := len([]rune(text))
	s.logger.Info().Int("chars_processed", chars).Msg("summary generated")
	return &models.SummaryResponse{Summary: summary, Model: s.model, CharsProcessed: chars}, nil
}

func classifySummaryError(err error) *SummaryFailure {
	if utils.IsTimeout(err) {
		return &SummaryFailure{Kind: utils.KindTimeout, Message: "Request timed out", Solution: solutionDefault, Err: err}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		f := &SummaryFailure{Kind: utils.KindUpstream, Message: apiErr.Message, Solution: solutionDefault, Err: err}
		if f.Message == "" {
			f.Message = msgSummaryFailed
		}
		if apiErr.StatusCode == http.StatusServiceUnavailable {
			f.Solution = solutionModelLoading
		}
		return f
	}

	return &SummaryFailure{Kind: utils.KindUpstream, Message: msgSummaryFailed, Solution: solutionDefault, Err: err}
}

// TruncateChars returns the first n characters of s.
func TruncateChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
