// utils/valid.go
package utils

import (
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxPDFSize is the upload limit for summarization.
const MaxPDFSize = 10 * 1024 * 1024

var (
	mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)
	emailRegex  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// IsValidMobile checks for exactly 10 digits
func IsValidMobile(mobile string) bool {
	return mobileRegex.MatchString(mobile)
}

// IsValidEmail checks for a basic local@domain.tld shape
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NewValidator returns a validator with the enrollment field rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mobile10", func(fl validator.FieldLevel) bool {
		return IsValidMobile(fl.Field().String())
	})
	_ = v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
	return v
}

// SanitizeInput trims and strips control characters. The value is stored as
// typed; escaping belongs to whatever renders it as HTML.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePDFUpload enforces the PDF type and size limits
func ValidatePDFUpload(file *multipart.FileHeader) error {
	if file.Size > MaxPDFSize {
		return ValidationError("PDF exceeds the 10MB limit")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType := file.Header.Get("Content-Type")
	if ext != ".pdf" && contentType != "application/pdf" {
		return ValidationError("Only PDF files are allowed")
	}
	return nil
}
