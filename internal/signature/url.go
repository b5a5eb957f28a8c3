package signature

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength caps pasted links; inline images arrive as uploads instead.
const maxURLLength = 4096

// NormalizeURL validates a pasted image link. Links starting with "www." get
// an https scheme; an empty string clears the field.
func NormalizeURL(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", nil
	}
	if strings.HasPrefix(strings.ToLower(v), "www.") {
		v = "https://" + v
	}
	if len(v) > maxURLLength {
		return "", fmt.Errorf("URL is too long")
	}
	u, err := url.ParseRequestURI(v)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("only http and https URLs are supported")
	}
	if u.Host == "" {
		return "", fmt.Errorf("URL must include a valid host")
	}
	return u.String(), nil
}
