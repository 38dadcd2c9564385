package blob

import (
	"encoding/base64"
	"errors"
	"mime"
	"net/url"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data uri")

func IsDataURI(value string) bool {
	return strings.HasPrefix(value, "data:")
}

// ParseDataURI decodes an RFC 2397 data URI.
func ParseDataURI(value string) (string, []byte, error) {
	if !IsDataURI(value) {
		return "", nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(value, "data:"), ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	isBase64 := false
	if strings.HasSuffix(header, ";base64") {
		isBase64 = true
		header = strings.TrimSuffix(header, ";base64")
	}
	contentType := "text/plain"
	if header != "" {
		mediaType, _, err := mime.ParseMediaType(header)
		if err != nil {
			return "", nil, ErrInvalidDataURI
		}
		contentType = mediaType
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, ErrInvalidDataURI
		}
		return contentType, data, nil
	}
	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, ErrInvalidDataURI
	}
	return contentType, []byte(decoded), nil
}
