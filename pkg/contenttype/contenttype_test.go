package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		want        Category
	}{
		{"json", "application/json", JSON},
		{"json with charset", "application/json; charset=utf-8", JSON},
		{"vendor json", "application/vnd.api+json", JSON},
		{"uppercase json", "Application/JSON", JSON},
		{"plain text", "text/plain", Text},
		{"html", "text/html; charset=utf-8", Text},
		{"xml", "application/xml", Text},
		{"yaml", "application/x-yaml", Text},
		{"form", "application/x-www-form-urlencoded", Text},
		{"png", "image/png", Image},
		{"octet-stream", "application/octet-stream", Binary},
		{"pdf", "application/pdf", Binary},
		{"empty", "", Binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.contentType))
		})
	}
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON("application/json"))
	assert.True(t, IsJSON("application/json; charset=utf-8"))
	assert.True(t, IsJSON("APPLICATION/JSON"))
	assert.False(t, IsJSON("text/plain"))
	assert.False(t, IsJSON("application/x-ndjson"))
	assert.False(t, IsJSON("text/json"))
	assert.False(t, IsJSON(""))
}

func TestIsTextual(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        []byte
		want        bool
	}{
		{"json", "application/json", nil, true},
		{"text", "text/plain", nil, true},
		{"image", "image/png", []byte("looks like text"), false},
		{"pdf", "application/pdf", []byte("%PDF"), false},
		{"empty with utf8", "", []byte("hello"), true},
		{"empty with binary", "", []byte{0xff, 0xfe, 0x00}, false},
		{"octet-stream with utf8", "application/octet-stream", []byte("plain"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTextual(tt.contentType, tt.data))
		})
	}
}

func TestForName(t *testing.T) {
	assert.Equal(t, "image/png", ForName("logo.PNG"))
	assert.Contains(t, ForName("index.html"), "text/html")
	assert.Equal(t, Default, ForName("no-extension"))
	assert.Equal(t, Default, ForName("archive.unknownext"))
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		contentType string
		name        string
		want        Format
	}{
		{"application/json; charset=utf-8", "", FormatJSON},
		{"application/yaml", "", FormatYAML},
		{"text/html", "index", FormatHTML},
		{"application/atom+xml", "", FormatXML},
		{"text/csv", "", FormatCSV},
		{"application/x-www-form-urlencoded", "", FormatForm},
		{"", "movies.csv", FormatCSV},
		{Default, "config.YML", FormatYAML},
		{"text/plain", "notes.xml", FormatXML},
		{"text/plain", "notes", FormatText},
		{"image/png", "logo.png", FormatBinary},
		{"", "archive.tar", FormatBinary},
	}
	for _, tt := range tests {
		t.Run(tt.contentType+"|"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOf(tt.contentType, tt.name))
		})
	}
}
