package protocol

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
)

// CleanGoErrorMessage removes Go HTTP client prefixes like `Get "http://...": `.
func CleanGoErrorMessage(msg string) string {
	for _, method := range []string{"Get", "Post", "Head", "Put", "Delete", "Patch"} {
		prefix := method + " \""
		if strings.HasPrefix(msg, prefix) {
			if idx := strings.Index(msg[len(prefix):], "\": "); idx >= 0 {
				return msg[len(prefix)+idx+3:]
			}
		}
	}
	return msg
}

// IsSuccess reports whether statusCode is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// FormatHTTPStatusLine formats "HTTP/1.1 200 OK".
func FormatHTTPStatusLine(statusCode int) string {
	return fmt.Sprintf("HTTP/1.1 %d %s", statusCode, http.StatusText(statusCode))
}

// FormatHTTPHeaders formats http.Header into raw HTTP header text.
// Header names are sorted for stable output.
func FormatHTTPHeaders(headers http.Header) string {
	var names []string
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		for _, value := range headers[name] {
			b.WriteString(name + ": " + value + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

var wwwAuthParamRe = regexp.MustCompile(`(\w+)="([^"]*)"`)

// ParseWWWAuthenticate extracts error, error_description, and error_uri
// from a WWW-Authenticate header value (RFC 6750 Section 3).
func ParseWWWAuthenticate(value string) (errCode, errDesc, errURI string) {
	for _, match := range wwwAuthParamRe.FindAllStringSubmatch(value, -1) {
		switch match[1] {
		case "error":
			errCode = match[2]
		case "error_description":
			errDesc = match[2]
		case "error_uri":
			errURI = match[2]
		}
	}
	return
}

// ParseErrorBody extracts an OAuth error triple from a JSON response body.
// FastAPI style {"message": "..."} and {"detail": "..."} bodies fill the description.
func ParseErrorBody(body []byte) (errCode, errDesc, errURI string) {
	var resp struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
		URI         string `json:"error_uri"`
		Message     string `json:"message"`
		Detail      any    `json:"detail"`
	}
	if json.Unmarshal(body, &resp) != nil {
		return "", "", ""
	}
	errDesc = resp.Description
	if errDesc == "" {
		errDesc = resp.Message
	}
	if errDesc == "" {
		if s, ok := resp.Detail.(string); ok {
			errDesc = s
		}
	}
	return resp.Error, errDesc, resp.URI
}
