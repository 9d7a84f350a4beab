package payload

import (
	"io"
	"path/filepath"
	"strconv"
)

// DefaultContentType is assumed for documents without one
const DefaultContentType = "application/pdf"

// Document is a file to upload. Exactly one of Path, Data or Reader
// supplies the bytes.
type Document struct {
	Path        string
	Name        string
	ContentType string `mapstructure:"content_type"`
	// DocumentID defaults to the 1-based upload position
	DocumentID string    `mapstructure:"document_id"`
	Data       []byte    `mapstructure:"-"`
	Reader     io.Reader `mapstructure:"-"`
}

// FileName returns Name, or the base name of Path.
func (d Document) FileName() string {
	if d.Name != "" {
		return d.Name
	}
	if d.Path != "" {
		return filepath.Base(d.Path)
	}
	return ""
}

// MediaType returns ContentType or the default
func (d Document) MediaType() string {
	if d.ContentType == "" {
		return DefaultContentType
	}
	return d.ContentType
}

// ID returns the document id for upload position index.
func (d Document) ID(index int) string {
	if d.DocumentID != "" {
		return d.DocumentID
	}
	return strconv.Itoa(index + 1)
}

// DocumentDefinition is the wire form of a document
type DocumentDefinition struct {
	DocumentID string `json:"documentId"`
	Name       string `json:"name,omitempty"`
}

// BuildDocuments lists documents in upload order.
func BuildDocuments(docs []Document) []DocumentDefinition {
	defs := make([]DocumentDefinition, 0, len(docs))
	for i, doc := range docs {
		defs = append(defs, DocumentDefinition{DocumentID: doc.ID(i), Name: doc.FileName()})
	}
	return defs
}
