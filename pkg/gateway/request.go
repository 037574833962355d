package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
)

// Request describes one logical API call.
type Request struct {
	// Method defaults to GET.
	Method string

	// Path is relative to the gateway base URL and may carry a query string.
	Path string

	// Body is JSON encoded when non-nil.
	Body any

	// Form sends a multipart body instead of Body.
	Form *Form
}

// Form is a multipart payload: plain fields plus file parts. Files are held
// in memory so a request can be replayed after a refresh.
type Form struct {
	Values url.Values
	Files  []FormFile
}

type FormFile struct {
	Field    string
	Filename string
	Data     []byte
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{Values: url.Values{}}
}

// Set adds a plain field.
func (f *Form) Set(field, value string) *Form {
	f.Values.Set(field, value)
	return f
}

// AddFile reads r fully and attaches it as a file part.
func (f *Form) AddFile(field, filename string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s: %w", filename, err)
	}
	f.Files = append(f.Files, FormFile{Field: field, Filename: filename, Data: data})
	return nil
}

// encode renders the body once so retries send identical bytes.
func (r Request) encode() (body []byte, contentType string, err error) {
	switch {
	case r.Form != nil:
		return r.Form.encode()
	case r.Body != nil:
		body, err = json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return body, "application/json", nil
	default:
		return nil, "", nil
	}
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Values))
	for k := range f.Values {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, v := range f.Values[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("encode form field %s: %w", k, err)
			}
		}
	}

	for _, file := range f.Files {
		part, err := w.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("encode form file %s: %w", file.Filename, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("encode form file %s: %w", file.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
