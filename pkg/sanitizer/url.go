package sanitizer

import (
	"strings"
)

// NormalizeURL lower-cases the scheme and host and drops a trailing slash.
// The path keeps its case. Input without a scheme is assumed to be https.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return ""
	}

	scheme := "https://"
	lowered := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lowered, "http://"):
		scheme = "http://"
		url = url[len("http://"):]
	case strings.HasPrefix(lowered, "https://"):
		url = url[len("https://"):]
	}

	parts := strings.SplitN(url, "/", 2)
	domain := strings.ToLower(parts[0])
	var path string
	if len(parts) > 1 {
		path = "/" + parts[1]
	}
	result := scheme + domain + path
	result = strings.TrimSuffix(result, "/")
	return result
}
