package cache

import "strings"

// Key prefixes. Page keys and sentinel keys never share a prefix.
const (
	pageKeyPrefix     = "p:"
	sentinelKeyPrefix = "t:"
)

// tagEscaper escapes the separator out of tag names so that the first
// unescaped ':' after the prefix always ends the tag.
var tagEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// pageKey returns the storage key for (tag, path). Paths are stored verbatim;
// slashes, fragments and query strings need no escaping because the tag is
// terminated unambiguously.
func pageKey(tag, path string) string {
	return pageKeyPrefix + tagEscaper.Replace(tag) + ":" + path
}

// sentinelKey returns the key recording that tag has been written.
func sentinelKey(tag string) string {
	return sentinelKeyPrefix + tagEscaper.Replace(tag)
}
