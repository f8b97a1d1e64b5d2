// Package redact masks secrets in server env maps, headers, URLs and
// argument lists before they are printed or logged.
package redact

import (
	"net/url"
	"strings"
)

// Mask is the fixed replacement for short values.
const Mask = "********"

// SecretKeyPatterns contains substrings that indicate a key likely contains sensitive data.
// Keys are matched case-insensitively.
var SecretKeyPatterns = []string{
	"TOKEN",
	"KEY",
	"SECRET",
	"PASSWORD",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
	"COOKIE",
}

// TokenPrefixes contains known API token prefixes that mark a value as
// sensitive regardless of key name.
var TokenPrefixes = []string{
	"ghp_",  // GitHub personal access token
	"gho_",  // GitHub OAuth token
	"ghu_",  // GitHub user-to-server token
	"ghs_",  // GitHub server-to-server token
	"ghr_",  // GitHub refresh token
	"github_pat_",
	"sk-",  // OpenAI/Anthropic keys
	"AKIA", // AWS access key prefix
	"xoxb-",
	"xoxp-",
	"xoxa-",
	"xoxr-",
	"glpat-", // GitLab
	"Bearer ",
}

// Value masks a potentially sensitive string.
// Values with 4 or fewer characters become Mask; longer ones keep the last 4.
func Value(value string) string {
	if len(value) <= 4 {
		return Mask
	}
	return "****" + value[len(value)-4:]
}

// ShouldMask reports whether the key name suggests sensitive data.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range SecretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// HasTokenPrefix reports whether value starts with a known token prefix.
func HasTokenPrefix(value string) bool {
	for _, prefix := range TokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// Pair masks v when either its key or its value looks secret.
func Pair(k, v string) string {
	if ShouldMask(k) || HasTokenPrefix(v) {
		return Value(v)
	}
	return v
}

// Map returns a copy of m with sensitive values masked.
// Used for both env and header maps.
func Map(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = Pair(k, v)
	}
	return out
}

// URL redacts the password and secret-looking query parameters of rawURL.
// Unparseable input is returned unchanged.
func URL(rawURL string) string {
	if rawURL == "" {
		return rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	changed := false
	if parsed.User != nil {
		if pw, ok := parsed.User.Password(); ok && pw != "" {
			parsed.User = url.UserPassword(parsed.User.Username(), Value(pw))
			changed = true
		}
	}
	if parsed.RawQuery != "" {
		q := parsed.Query()
		for k, vs := range q {
			for i, v := range vs {
				if masked := Pair(k, v); masked != v {
					vs[i] = masked
					changed = true
				}
			}
		}
		if changed {
			parsed.RawQuery = q.Encode()
		}
	}
	if !changed {
		return rawURL
	}
	return parsed.String()
}

// Args masks secrets inside a command argument list. It handles
// "--api-key=VALUE", "--api-key VALUE" and bare token-prefixed values.
func Args(args []string) []string {
	if args == nil {
		return nil
	}
	out := make([]string, len(args))
	maskNext := false
	for i, a := range args {
		switch {
		case maskNext:
			out[i] = Value(a)
			maskNext = false
		case strings.HasPrefix(a, "-"):
			name, val, hasVal := strings.Cut(strings.TrimLeft(a, "-"), "=")
			if !ShouldMask(name) {
				out[i] = a
				continue
			}
			if hasVal {
				out[i] = a[:len(a)-len(val)] + Value(val)
			} else {
				out[i] = a
				maskNext = true
			}
		case HasTokenPrefix(a):
			out[i] = Value(a)
		default:
			out[i] = a
		}
	}
	return out
}
