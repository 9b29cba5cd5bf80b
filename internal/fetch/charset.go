package fetch

import (
	"mime"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// defaultEncoding is used when no usable charset is declared.
// The UTF-8 decoder replaces invalid byte sequences with U+FFFD instead of
// failing.
var defaultEncoding encoding.Encoding = unicode.UTF8

// encodingFor returns the encoding declared by a Content-Type header value,
// or defaultEncoding when there is none or the label is unknown.
func encodingFor(contentType string) encoding.Encoding {
	if contentType == "" {
		return defaultEncoding
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return defaultEncoding
	}
	label := params["charset"]
	if label == "" {
		return defaultEncoding
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return defaultEncoding
	}
	return enc
}

// decodeBody converts body to a UTF-8 string using the charset declared in
// contentType.
func decodeBody(body []byte, contentType string) (string, error) {
	decoded, _, err := transform.Bytes(encodingFor(contentType).NewDecoder(), body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
