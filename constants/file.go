package constants

import (
	"path/filepath"
	"strings"
)

// MediaType is the document format that selects a text extractor.
type MediaType string

const (
	PDF  MediaType = "PDF"
	DOCX MediaType = "DOCX"
)

// Declared MIME types accepted as batch input.
const (
	MIMEPDF            = "application/pdf"
	MIMEDOCX           = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEZip            = "application/zip"
	MIMEZipCompressed  = "application/x-zip-compressed"
	MIMEOctetStream    = "application/octet-stream"
	MIMECSV            = "text/csv"
	MIMEXLSX           = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEJSON           = "application/json"
	archiveSuffix      = "zip"
	defaultContentType = MIMEOctetStream
)

// SupportedExtensions maps a normalized file suffix to its media type.
var SupportedExtensions = map[string]MediaType{
	"pdf":  PDF,
	"docx": DOCX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeFromName classifies a file by its suffix.
func MediaTypeFromName(name string) (MediaType, bool) {
	mt, ok := SupportedExtensions[NormalizeExt(filepath.Ext(name))]
	return mt, ok
}

// MediaTypeFromMIME classifies a declared content type.
func MediaTypeFromMIME(mime string) (MediaType, bool) {
	switch baseMIME(mime) {
	case MIMEPDF:
		return PDF, true
	case MIMEDOCX:
		return DOCX, true
	}
	return "", false
}

// ResolveMediaType prefers the declared type and falls back to the file suffix.
func ResolveMediaType(declared, name string) (MediaType, bool) {
	if mt, ok := MediaTypeFromMIME(declared); ok {
		return mt, true
	}
	return MediaTypeFromName(name)
}

// IsArchive reports whether the input is a zip bundle, by declared type or by suffix.
func IsArchive(declared, name string) bool {
	switch baseMIME(declared) {
	case MIMEZip, MIMEZipCompressed:
		return true
	}
	return NormalizeExt(filepath.Ext(name)) == archiveSuffix
}

// MIMEForName guesses a content type from a file suffix.
func MIMEForName(name string) string {
	switch NormalizeExt(filepath.Ext(name)) {
	case "pdf":
		return MIMEPDF
	case "docx":
		return MIMEDOCX
	case "zip":
		return MIMEZip
	case "csv":
		return MIMECSV
	case "xlsx":
		return MIMEXLSX
	case "json":
		return MIMEJSON
	}
	return defaultContentType
}

func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}
