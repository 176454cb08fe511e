package transport

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"storefront-admin/internal/backend"
)

// Uploads beyond this stay on disk while the request is handled
const multipartMemory = 8 << 20

var ErrUploadTooLarge = errors.New("upload is too large")

// upload is a file posted with a form
type upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// parseForm parses urlencoded and multipart bodies up to maxBytes.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrUploadTooLarge
	}
	return err
}

// formFiles reads every non-empty file posted under field.
func formFiles(r *http.Request, field string) ([]upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	var uploads []upload
	for _, header := range r.MultipartForm.File[field] {
		if header.Size == 0 {
			continue
		}
		u, err := readFile(header)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, u)
	}
	return uploads, nil
}

// formFile reads the first file posted under field, if any.
func formFile(r *http.Request, field string) (*upload, error) {
	uploads, err := formFiles(r, field)
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

func readFile(header *multipart.FileHeader) (upload, error) {
	f, err := header.Open()
	if err != nil {
		return upload{}, fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return upload{}, fmt.Errorf("failed to read upload %q: %w", header.Filename, err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return upload{Filename: header.Filename, ContentType: contentType, Data: data}, nil
}

// attach adds u to form under name when present.
func attach(form *backend.Multipart, name string, u *upload) {
	if u != nil {
		form.AddFile(name, u.Filename, u.ContentType, u.Data)
	}
}
