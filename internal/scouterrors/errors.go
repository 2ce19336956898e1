// Package scouterrors provides sentinel and custom error types for the application.
package scouterrors

import "strconv"

// ErrConfiguration represents a missing or blank credential / setting.
// Raised by clients before any network call is attempted.
var ErrConfiguration = &ConfigurationError{}

// ConfigurationError is a sentinel error for absent required configuration.
type ConfigurationError struct {
	Variable string
	Message  string
}

// NewConfigurationError creates a ConfigurationError for the given environment variable.
func NewConfigurationError(variable, message string) *ConfigurationError {
	return &ConfigurationError{
		Variable: variable,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Variable != "" {
		return e.Variable + " is required but not set"
	}

	return "missing required configuration"
}

// Is implements the error interface for error comparison.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)

	return ok
}

// ErrParse represents a generation response that could not be reduced to a JSON array.
var ErrParse = &ParseError{}

// ParseError is a sentinel error for unparseable generation output.
// Raw carries the full raw response so the failure is diagnosable.
type ParseError struct {
	Raw     string
	Message string
}

// NewParseError creates a ParseError carrying the raw response.
func NewParseError(raw, message string) *ParseError {
	return &ParseError{Raw: raw, Message: message}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "could not parse generation response"
	}

	if e.Raw != "" {
		return msg + ": " + e.Raw
	}

	return msg
}

// Is implements the error interface for error comparison.
func (e *ParseError) Is(target error) bool {
	_, ok := target.(*ParseError)

	return ok
}

// ErrUpload represents a non-success response from the image hosting service.
var ErrUpload = &UploadError{}

// UploadError is a sentinel error for failed image uploads.
// It carries the HTTP status code and response body; uploads are never retried.
type UploadError struct {
	StatusCode int
	Body       string
}

// NewUploadError creates an UploadError with the hosting service's status and body.
func NewUploadError(statusCode int, body string) *UploadError {
	return &UploadError{StatusCode: statusCode, Body: body}
}

// Error implements the error interface.
func (e *UploadError) Error() string {
	if e.StatusCode == 0 {
		return "image upload failed"
	}

	s := "image upload failed: status " + strconv.Itoa(e.StatusCode)
	if e.Body != "" {
		s += ": " + e.Body
	}

	return s
}

// Is implements the error interface for error comparison.
func (e *UploadError) Is(target error) bool {
	_, ok := target.(*UploadError)

	return ok
}

// ErrSearch represents a non-success response or malformed payload from the
// visual product-search service.
var ErrSearch = &SearchError{}

// SearchError is a sentinel error for failed product searches.
type SearchError struct {
	StatusCode int
	Message    string
}

// NewSearchError creates a SearchError with a status code and message.
func NewSearchError(statusCode int, message string) *SearchError {
	return &SearchError{StatusCode: statusCode, Message: message}
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	if e.Message != "" {
		if e.StatusCode != 0 {
			return "product search failed: status " + strconv.Itoa(e.StatusCode) + ": " + e.Message
		}

		return "product search failed: " + e.Message
	}

	if e.StatusCode != 0 {
		return "product search failed: status " + strconv.Itoa(e.StatusCode)
	}

	return "product search failed"
}

// Is implements the error interface for error comparison.
func (e *SearchError) Is(target error) bool {
	_, ok := target.(*SearchError)

	return ok
}
