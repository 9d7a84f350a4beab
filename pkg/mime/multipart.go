package mime

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// ContentTypeFormData is the media type of an upload request
	ContentTypeFormData = "multipart/form-data"
	// ContentTypeJSON is the media type of the post_body part
	ContentTypeJSON = "application/json"
	// ContentTypePDF is assumed for files without a content type
	ContentTypePDF = "application/pdf"

	// PostBodyName is the form name of the JSON part
	PostBodyName = "post_body"
)

// File is one uploaded document.
type File struct {
	// Name is sent as the file name; the base name of Path is used when empty
	Name        string
	Path        string
	ContentType string
	// DocumentID defaults to the 1-based position of the file
	DocumentID string
	Data       []byte
}

// FileName returns the name sent in the part header
func (f File) FileName() string {
	if f.Name != "" {
		return f.Name
	}
	if f.Path != "" {
		return filepath.Base(f.Path)
	}
	return ""
}

// Form is a multipart/form-data body with a JSON post_body part followed by
// one part per file.
type Form struct {
	Boundary string
	PostBody []byte
	Files    []File
}

// NewForm creates a form with a fresh boundary
func NewForm(postBody []byte, files []File) *Form {
	return &Form{
		Boundary: generateBoundary(),
		PostBody: postBody,
		Files:    files,
	}
}

// ContentType returns the request content type including the boundary
func (f *Form) ContentType() string {
	return mime.FormatMediaType(ContentTypeFormData, map[string]string{"boundary": f.Boundary})
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func fileHeader(file File, n int) textproto.MIMEHeader {
	contentType := file.ContentType
	if contentType == "" {
		contentType = ContentTypePDF
	}
	documentID := file.DocumentID
	if documentID == "" {
		documentID = strconv.Itoa(n)
	}

	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", fmt.Sprintf(`file; documentid=%s; name="file%d"; filename="%s"`,
		documentID, n, quoteEscaper.Replace(file.FileName())))
	return h
}

// Serialize renders the whole body in memory and returns it with the
// request content type.
func (f *Form) Serialize() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.SetBoundary(f.Boundary); err != nil {
		return nil, "", fmt.Errorf("failed to set boundary: %w", err)
	}

	postHeader := textproto.MIMEHeader{}
	postHeader.Set("Content-Type", ContentTypeJSON)
	postHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, PostBodyName))

	postPart, err := writer.CreatePart(postHeader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create post body part: %w", err)
	}
	if _, err := postPart.Write(f.PostBody); err != nil {
		return nil, "", fmt.Errorf("failed to write post body part: %w", err)
	}

	for i, file := range f.Files {
		part, err := writer.CreatePart(fileHeader(file, i+1))
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %d: %w", i+1, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write file part %d: %w", i+1, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return buf.Bytes(), f.ContentType(), nil
}

// Parse reads a body produced by Serialize. The first part is the post
// body; every later part is a file.
func Parse(r io.Reader, contentType string) (*Form, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content type: %w", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("not a multipart message: %s", mediaType)
	}

	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("boundary not found in content type")
	}

	form := &Form{Boundary: boundary}
	reader := multipart.NewReader(r, boundary)
	first := true

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read part: %w", err)
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return nil, fmt.Errorf("failed to read part data: %w", err)
		}

		if first {
			form.PostBody = data
			first = false
			continue
		}

		file := File{ContentType: part.Header.Get("Content-Type"), Data: data}
		if _, dparams, err := mime.ParseMediaType(part.Header.Get("Content-Disposition")); err == nil {
			file.Name = dparams["filename"]
			file.DocumentID = dparams["documentid"]
		}
		form.Files = append(form.Files, file)
	}

	if first {
		return nil, fmt.Errorf("post body not found in message")
	}
	return form, nil
}

// IsFilePart reports whether a part header describes an uploaded file
func IsFilePart(h textproto.MIMEHeader) bool {
	disposition, _, err := mime.ParseMediaType(h.Get("Content-Disposition"))
	return err == nil && disposition == "file"
}

func generateBoundary() string {
	return fmt.Sprintf("----=_Part_%s", strings.ReplaceAll(uuid.New().String(), "-", ""))
}
