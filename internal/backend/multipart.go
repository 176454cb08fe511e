package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Multipart collects the fields and file parts of a multipart submission.
// Parts are written in the order they were added.
type Multipart struct {
	parts []part
}

type part struct {
	name        string
	value       string
	filename    string
	contentType string
	data        []byte
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a plain text field.
func (m *Multipart) AddField(name, value string) {
	m.parts = append(m.parts, part{name: name, value: value})
}

// AddJSONField appends v serialised as a JSON string field.
func (m *Multipart) AddJSONField(name string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	m.AddField(name, string(raw))
	return nil
}

// AddFile appends a file part.
func (m *Multipart) AddFile(name, filename, contentType string, data []byte) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	m.parts = append(m.parts, part{name: name, filename: filename, contentType: contentType, data: data})
}

// Value returns the first text field called name.
func (m *Multipart) Value(name string) (string, bool) {
	for _, p := range m.parts {
		if p.name == name && p.filename == "" {
			return p.value, true
		}
	}
	return "", false
}

// Filenames returns the names of every file attached under field name.
func (m *Multipart) Filenames(name string) []string {
	var names []string
	for _, p := range m.parts {
		if p.name == name && p.filename != "" {
			names = append(names, p.filename)
		}
	}
	return names
}

// HasFiles reports whether any file part was added.
func (m *Multipart) HasFiles() bool {
	for _, p := range m.parts {
		if p.filename != "" {
			return true
		}
	}
	return false
}

// Encode renders the body and its Content-Type header value.
func (m *Multipart) Encode() (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, p := range m.parts {
		if p.filename == "" {
			if err := writer.WriteField(p.name, p.value); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", p.name, err)
			}
			continue
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(p.name), escapeQuotes(p.filename)))
		header.Set("Content-Type", p.contentType)

		w, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create part %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, "", fmt.Errorf("failed to write part %s: %w", p.name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
