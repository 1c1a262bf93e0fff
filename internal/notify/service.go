package notify

import "net/url"

// service returns the scheme of a notify URL. Service URLs carry tokens in
// their user info and path, so only the scheme is safe to log.
func service(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return "notify URL"
	}
	return u.Scheme
}
