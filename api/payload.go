package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Payload is a multipart/form-data body. Fields keep insertion order; a
// file part and a text field may share a name, the file wins.
type Payload struct {
	fields []field
	files  []filePart
}

type field struct {
	name  string
	value string
}

type filePart struct {
	name        string
	filename    string
	contentType string
	data        []byte
}

// NewPayload returns an empty multipart payload.
func NewPayload() *Payload {
	return &Payload{}
}

// Set adds a text field. Setting the same name again replaces the value.
func (p *Payload) Set(name, value string) *Payload {
	for i := range p.fields {
		if p.fields[i].name == name {
			p.fields[i].value = value
			return p
		}
	}
	p.fields = append(p.fields, field{name: name, value: value})
	return p
}

// File adds a file part.
func (p *Payload) File(name, filename, contentType string, data []byte) *Payload {
	p.files = append(p.files, filePart{
		name:        name,
		filename:    filename,
		contentType: contentType,
		data:        data,
	})
	return p
}

// Value returns the text value of a field and whether it was set.
func (p *Payload) Value(name string) (string, bool) {
	for _, f := range p.fields {
		if f.name == name {
			return f.value, true
		}
	}
	return "", false
}

// HasFile reports whether a file part named name is present.
func (p *Payload) HasFile(name string) bool {
	for _, f := range p.files {
		if f.name == name {
			return true
		}
	}
	return false
}

func (p *Payload) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range p.fields {
		if p.HasFile(f.name) {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range p.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.name), escapeQuotes(f.filename)))
		ct := f.contentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
