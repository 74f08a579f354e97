package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
)

// MaxAttachmentBytes bounds a single decoded attachment.
const MaxAttachmentBytes = 10 << 20

var ErrInvalidDataURL = errors.New("invalid data url")

// DataURL is a decoded base64 data: URL.
type DataURL struct {
	Raw         string
	ContentType string
	Data        []byte
}

// IsDataURL reports whether s is inline file content rather than a hosted URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// ParseDataURL decodes data:<mime>;base64,<payload>.
func ParseDataURL(s string) (DataURL, error) {
	if !IsDataURL(s) {
		return DataURL{}, ErrInvalidDataURL
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return DataURL{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURL)
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return DataURL{}, fmt.Errorf("%w: only base64 payloads are accepted", ErrInvalidDataURL)
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	if _, _, err := mime.ParseMediaType(mediaType); err != nil {
		return DataURL{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxAttachmentBytes+3 {
		return DataURL{}, fmt.Errorf("%w: attachment exceeds %d bytes", ErrInvalidDataURL, MaxAttachmentBytes)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return DataURL{}, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return DataURL{Raw: s, ContentType: mediaType, Data: data}, nil
}

// Extension returns a file extension for the content type, if one is known.
func (d DataURL) Extension() string {
	exts, err := mime.ExtensionsByType(d.ContentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
