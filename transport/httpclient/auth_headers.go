package httpclient

import (
	"crypto/sha1"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// sapisidCookies are the cookie names whose presence enables
// SAPISIDHASH auth header generation (spec §4.2).
var sapisidCookies = []string{"SAPISID", "__Secure-1PAPISID"}

// BuildAuthHeaders returns the cookie and, if possible,
// authorization headers for a request against originURL, given the
// current AuthState cookie map.
func BuildAuthHeaders(cookies map[string]string, originURL string) map[string]string {
	headers := make(map[string]string, 2)
	if cookie := buildCookieHeader(cookies); cookie != "" {
		headers["Cookie"] = cookie
	}
	if sapisid, ok := findSAPISID(cookies); ok {
		headers["Authorization"] = sapisidHash(sapisid, originURL)
	}
	return headers
}

func buildCookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for name, value := range cookies {
		parts = append(parts, name+"="+value)
	}
	return strings.Join(parts, "; ")
}

func findSAPISID(cookies map[string]string) (string, bool) {
	for _, name := range sapisidCookies {
		if v, ok := cookies[name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// sapisidHash builds "SAPISIDHASH <ts>_<sha1(ts + ' ' + sapisid + ' ' + origin)>".
func sapisidHash(sapisid, origin string) string {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sum := sha1.Sum([]byte(ts + " " + sapisid + " " + origin))
	return fmt.Sprintf("SAPISIDHASH %s_%x", ts, sum)
}

// MergeSetCookies parses a response's Set-Cookie headers into a
// name/value map suitable for AuthState.SetCookies.
func MergeSetCookies(resp *http.Response) map[string]string {
	merged := make(map[string]string)
	for _, c := range resp.Cookies() {
		merged[c.Name] = c.Value
	}
	return merged
}
