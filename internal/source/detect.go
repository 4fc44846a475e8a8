package source

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// ClassifyOptions configures the auth-failure decision table for one source.
type ClassifyOptions struct {
	SourceKey string
	// LoginURL is surfaced to the user when the session has expired.
	LoginURL string
	// LoginPathHints are path substrings identifying the upstream's login
	// page; a redirect landing on one of them means the session is gone.
	LoginPathHints []string
	// Treat404AsAuth marks sources where a 404 on the data endpoint is
	// known to mean "not authenticated" rather than "missing".
	Treat404AsAuth bool
	// SessionExpiredCode is a top-level JSON "code" value meaning the
	// session expired. Zero disables the payload check.
	SessionExpiredCode int64
	// SessionExpiredMessage is the fallback message when the payload
	// carries the expired code but no text.
	SessionExpiredMessage string
}

// Classify runs the auth-failure decision table over a raw response.
// Rules are evaluated in order, first match wins:
//
//  1. redirect landing on a login path        -> AuthError
//  2. 401/403 (and 404 where configured)      -> AuthError
//  3. payload carries the session-expired code -> AuthError, upstream
//     message verbatim
//  4. any other non-2xx                        -> NetError
//  5. otherwise                                -> nil, hand off to parser
//
// Every source consults Classify before parsing.
func Classify(resp *Response, opts ClassifyOptions) error {
	if resp.Redirected && matchesLoginPath(resp.FinalURL, opts.LoginPathHints) {
		return &AuthError{
			SourceKey: opts.SourceKey,
			Message:   "redirected to login page, session expired",
			LoginURL:  opts.LoginURL,
		}
	}

	if resp.StatusCode == 401 || resp.StatusCode == 403 ||
		(resp.StatusCode == 404 && opts.Treat404AsAuth) {
		return &AuthError{
			SourceKey: opts.SourceKey,
			Message:   "not authenticated, session expired",
			LoginURL:  opts.LoginURL,
		}
	}

	if opts.SessionExpiredCode != 0 && gjson.ValidBytes(resp.Body) {
		code := gjson.GetBytes(resp.Body, "code")
		if code.Exists() && code.Int() == opts.SessionExpiredCode {
			msg := gjson.GetBytes(resp.Body, "msg").String()
			if msg == "" {
				msg = opts.SessionExpiredMessage
			}
			return &AuthError{
				SourceKey: opts.SourceKey,
				Message:   msg,
				LoginURL:  opts.LoginURL,
			}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetError{
			SourceKey:  opts.SourceKey,
			StatusCode: resp.StatusCode,
		}
	}

	return nil
}

func matchesLoginPath(u *url.URL, hints []string) bool {
	if u == nil {
		return false
	}
	target := u.Path
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	for _, hint := range hints {
		if hint != "" && strings.Contains(target, hint) {
			return true
		}
	}
	return false
}
