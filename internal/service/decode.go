package service

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"cverve/internal/domain"
)

// decodeBase64 accepts raw base64 (padded or not) or a data URI, returning the bytes and the
// media type declared by the URI, if any.
func decodeBase64(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	var mediaType string
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("%w: malformed data URI", domain.ErrInvalidInput)
		}
		meta := s[len("data:"):comma]
		mediaType = strings.TrimSuffix(meta, ";base64")
		s = s[comma+1:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, "", fmt.Errorf("%w: empty file data", domain.ErrInvalidInput)
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: data is not valid base64", domain.ErrInvalidInput)
	}
	return data, mediaType, nil
}

// imageContentType resolves the media type of a payment proof, sniffing when undeclared.
func imageContentType(declared string, data []byte) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w: payment proof must be an image, got %s", domain.ErrUnsupportedFileType, ct)
	}
	return ct, nil
}
