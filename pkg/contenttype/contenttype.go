// Package contenttype classifies hyper response and storage object content
// types.
package contenttype

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Category is a broad content classification.
type Category string

const (
	JSON   Category = "json"
	Text   Category = "text"
	Image  Category = "image"
	Binary Category = "binary"
)

// Default is sent for uploads whose name has no known extension.
const Default = "application/octet-stream"

// mediaType strips parameters (charset, boundary) and lowercases.
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// Classify returns the category for a Content-Type header value. Empty
// values are Binary.
func Classify(contentType string) Category {
	mt := mediaType(contentType)
	switch {
	case mt == "":
		return Binary
	case strings.Contains(mt, "json"):
		return JSON
	case strings.HasPrefix(mt, "text/"),
		strings.Contains(mt, "xml"),
		strings.Contains(mt, "yaml"),
		strings.Contains(mt, "javascript"),
		mt == "application/x-www-form-urlencoded":
		return Text
	case strings.HasPrefix(mt, "image/"):
		return Image
	default:
		return Binary
	}
}

// IsJSON reports whether the content type contains application/json. This
// drives the normalizer's choice between decoding and passing text through,
// so json variants such as application/x-ndjson or text/json stay text.
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// IsTextual reports whether a body can be shown as text. Unknown content
// types fall back to checking data for valid UTF-8.
func IsTextual(contentType string, data []byte) bool {
	switch Classify(contentType) {
	case JSON, Text:
		return true
	case Image:
		return false
	}
	if mediaType(contentType) == "" || mediaType(contentType) == Default {
		return utf8.Valid(data)
	}
	return false
}

// ForName guesses the content type of an object from its file name.
func ForName(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return Default
}

// Format is the syntax of a textual body, finer than Category.
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatXML    Format = "xml"
	FormatHTML   Format = "html"
	FormatCSV    Format = "csv"
	FormatForm   Format = "form"
	FormatText   Format = "text"
	FormatBinary Format = "binary"
)

var extFormats = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".xml":  FormatXML,
	".svg":  FormatXML,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".csv":  FormatCSV,
	".txt":  FormatText,
	".md":   FormatText,
	".log":  FormatText,
}

// FormatOf returns the syntax of an object from its content type, falling
// back to the extension of name when the type is missing or generic.
func FormatOf(contentType, name string) Format {
	mt := mediaType(contentType)
	switch {
	case strings.Contains(mt, "json"):
		return FormatJSON
	case strings.Contains(mt, "yaml"):
		return FormatYAML
	case mt == "text/html" || mt == "application/xhtml+xml":
		return FormatHTML
	case strings.Contains(mt, "xml"):
		return FormatXML
	case mt == "text/csv":
		return FormatCSV
	case mt == "application/x-www-form-urlencoded":
		return FormatForm
	}
	if f, ok := extFormats[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	if Classify(contentType) == Text {
		return FormatText
	}
	return FormatBinary
}
