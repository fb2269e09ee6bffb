package validation

import (
	"net/url"
	"strings"
)

// ValidateURL validates that a URL is well-formed and optionally requires HTTPS.
// Empty strings are accepted; callers decide whether a field is required.
func ValidateURL(urlString, fieldName string, requireHTTPS bool) error {
	if urlString == "" {
		return nil
	}

	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return FieldError{Field: fieldName, Message: "invalid URL format"}
	}

	if parsedURL.Scheme == "" {
		return FieldError{Field: fieldName, Message: "URL must include a scheme (http:// or https://)"}
	}

	if parsedURL.Host == "" {
		return FieldError{Field: fieldName, Message: "URL must include a host"}
	}

	scheme := strings.ToLower(parsedURL.Scheme)
	if requireHTTPS && scheme != "https" {
		return FieldError{Field: fieldName, Message: "URL must use HTTPS"}
	}
	if scheme != "http" && scheme != "https" {
		return FieldError{Field: fieldName, Message: "URL scheme must be http or https"}
	}

	return nil
}
