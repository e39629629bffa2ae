// Package extraction turns batches of uploaded documents into one plain-text representation.
package extraction

import (
	"net/http"
	"path/filepath"
	"strings"

	"cverve/internal/domain"
)

var extensionFormats = map[string]domain.FileFormat{
	".pdf":  domain.FormatPDF,
	".doc":  domain.FormatWordDocument,
	".docx": domain.FormatWordDocument,
	".jpg":  domain.FormatImage,
	".jpeg": domain.FormatImage,
	".png":  domain.FormatImage,
	".gif":  domain.FormatImage,
	".bmp":  domain.FormatImage,
	".tif":  domain.FormatImage,
	".tiff": domain.FormatImage,
	".webp": domain.FormatImage,
}

// Classify maps a declared media type to an extraction strategy. When the declared type is
// missing or generic, the file name extension and then the leading bytes decide.
func Classify(mediaType, fileName string, data []byte) domain.FileFormat {
	if f := classifyMediaType(mediaType); f != domain.FormatUnsupported {
		return f
	}
	if !isGeneric(mediaType) {
		return domain.FormatUnsupported
	}
	if f, ok := extensionFormats[strings.ToLower(filepath.Ext(fileName))]; ok {
		return f
	}
	if len(data) > 0 {
		return classifyMediaType(http.DetectContentType(data))
	}
	return domain.FormatUnsupported
}

func classifyMediaType(mediaType string) domain.FileFormat {
	mt := strings.ToLower(mediaType)
	switch {
	case strings.Contains(mt, "pdf"):
		return domain.FormatPDF
	case strings.Contains(mt, "word"), strings.Contains(mt, "document"):
		return domain.FormatWordDocument
	case strings.Contains(mt, "image"):
		return domain.FormatImage
	default:
		return domain.FormatUnsupported
	}
}

func isGeneric(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	return mt == "" || strings.HasPrefix(mt, "application/octet-stream")
}
