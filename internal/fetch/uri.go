package fetch

import (
	"net/url"
	"strings"
)

// IsLocal reports whether uri refers to the local filesystem.
// URIs without a scheme and file:// URIs are local.
func IsLocal(uri string) bool {
	u, err := url.Parse(uri)
	if err != nil {
		// Unparseable strings can still be valid file names.
		return !strings.Contains(uri, "://")
	}
	return u.Scheme == "" || u.Scheme == "file"
}

// localPath returns the filesystem path of a local uri.
func localPath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		if u, err := url.Parse(uri); err == nil {
			return u.Path
		}
	}
	return uri
}

// splitCredentials removes userinfo from uri and returns the bare URI and
// the credentials that were removed (nil when there were none).
func splitCredentials(uri string) (string, *url.Userinfo, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", nil, err
	}
	user := u.User
	u.User = nil
	return u.String(), user, nil
}

// Redact returns uri with any userinfo removed, for display and logging.
// Strings that are not valid URIs are returned unchanged.
func Redact(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.User == nil {
		return uri
	}
	u.User = nil
	return u.String()
}

// DirURI returns base with a trailing "/". Every base URI denotes a
// directory, so "http://host" and "./old" become "http://host/" and "./old/".
func DirURI(base string) string {
	if base == "" || strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}

// JoinURI appends relativePath to the directory base. A leading "/" on
// relativePath is ignored, the path is always taken relative to base.
func JoinURI(base, relativePath string) string {
	return DirURI(base) + strings.TrimLeft(relativePath, "/")
}
