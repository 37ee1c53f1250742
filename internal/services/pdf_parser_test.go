package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFromBytes(t *testing.T) {
	parser := NewPDFParserService()

	doc, err := parser.ExtractFromBytes("resume.txt", []byte("Name: Ada Lovelace\nSkills: Go"))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount)
	assert.Contains(t, doc.Text, "Ada Lovelace")

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "empty", filename: "a.txt", data: nil},
		{name: "blank text", filename: "a.md", data: []byte("  \n ")},
		{name: "bad utf8", filename: "a.txt", data: []byte{0xff, 0xfe, 0xfd}},
		{name: "unsupported", filename: "a.docx", data: []byte("x")},
		{name: "corrupt pdf", filename: "a.pdf", data: []byte("%PDF-1.4 not really")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.ExtractFromBytes(tt.filename, tt.data)
			assert.Error(t, err)
		})
	}
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("CV.PDF"))
	assert.True(t, SupportedExtension("cv.txt"))
	assert.False(t, SupportedExtension("cv.doc"))
}
