package log

import (
	"regexp"
	"strings"
)

// MaskValue replaces everything the handler considers a credential.
const MaskValue = "***REDACTED***"

// sensitiveNames are attribute keys, HTTP header names and query parameter
// names whose value is masked as a whole.
var sensitiveNames = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"api_key":             true,
	"apikey":              true,
	"api-key":             true,
	"access_token":        true,
	"refresh_token":       true,
	"session":             true,
	"session_id":          true,
	"sessionid":           true,
	"sid":                 true,
	"jsessionid":          true,
	"phpsessid":           true,
	"userinfo":            true,
}

// sensitiveFragments mark a key as sensitive wherever they appear in it.
// A bare "key" is left out: "cache_key" and "sort_key" are common here.
var sensitiveFragments = []string{"password", "passwd", "secret", "token", "credential", "private"}

// credentialShapes match values that are credentials whatever their key.
var credentialShapes = []*regexp.Regexp{
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

var (
	// userinfoPattern matches the "user:pass@" part of a URI embedded in text.
	userinfoPattern = regexp.MustCompile(`(?i)\b([a-z][a-z0-9+.-]*://)[^/\s@]+@`)

	// queryCredentialPattern matches credential query parameters such as
	// "?token=..." or "&api_key=...", keeping the parameter name.
	queryCredentialPattern = regexp.MustCompile(
		`(?i)([?&](?:access_token|api_key|apikey|auth|key|password|session|sessionid|sid|sig|signature|token)=)[^&#\s"']*`)
)

// RedactURIs masks the userinfo and the credential query parameters of every
// URI inside s. Hosts and paths stay readable.
func RedactURIs(s string) string {
	if strings.Contains(s, "@") {
		s = userinfoPattern.ReplaceAllString(s, "${1}"+MaskValue+"@")
	}
	if strings.Contains(s, "=") {
		s = queryCredentialPattern.ReplaceAllString(s, "${1}"+MaskValue)
	}
	return s
}

// isSensitiveName reports whether values stored under name must be masked.
func isSensitiveName(name string) bool {
	name = strings.ToLower(name)
	if sensitiveNames[name] {
		return true
	}
	for _, fragment := range sensitiveFragments {
		if strings.Contains(name, fragment) {
			return true
		}
	}
	return false
}

// looksLikeCredential reports whether value has the shape of a credential.
func looksLikeCredential(value string) bool {
	for _, shape := range credentialShapes {
		if shape.MatchString(value) {
			return true
		}
	}
	return false
}
