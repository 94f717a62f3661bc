package validate

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"time"
)

var (
	urlPattern = regexp.MustCompile(
		`^(http|https)://` +
			`([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?` +
			`(/[a-zA-Z0-9-._~:/?#\[\]@!$&'()*+,;=]*)?$`)

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// URL reports whether s is an http(s) URL with a plausible hostname.
func URL(s string) bool {
	return urlPattern.MatchString(s)
}

// Email reports whether s looks like an email address.
func Email(s string) bool {
	return emailPattern.MatchString(s)
}

// NewID returns an opaque identifier derived from the current time.
// Uniqueness relies on sub-nanosecond call spacing being unrealistic at
// this system's scale.
func NewID() string {
	sum := md5.Sum([]byte(fmt.Sprintf("%.6f", float64(time.Now().UnixNano())/1e9)))
	return hex.EncodeToString(sum[:])[:10]
}
