package mime

import (
	"bytes"
	"io"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewForm(t *testing.T) {
	a := NewForm([]byte(`{}`), nil)
	b := NewForm([]byte(`{}`), nil)

	assert.True(t, strings.HasPrefix(a.Boundary, "----=_Part_"))
	assert.NotContains(t, strings.TrimPrefix(a.Boundary, "----=_Part_"), "-")
	assert.NotEqual(t, a.Boundary, b.Boundary)
	assert.Equal(t, `multipart/form-data; boundary="`+a.Boundary+`"`, a.ContentType())
}

func TestFile_FileName(t *testing.T) {
	assert.Equal(t, "nda.pdf", File{Path: "/srv/docs/nda.pdf"}.FileName())
	assert.Equal(t, "Final.pdf", File{Path: "/srv/docs/nda.pdf", Name: "Final.pdf"}.FileName())
	assert.Equal(t, "", File{}.FileName())
}

func TestSerialize_Parts(t *testing.T) {
	form := NewForm([]byte(`{"emailSubject":"Please sign"}`), []File{
		{Path: "/tmp/contract.pdf", Data: []byte("%PDF-1.4 one")},
		{Name: "terms.txt", ContentType: "text/plain", DocumentID: "7", Data: []byte("terms")},
	})

	body, contentType, err := form.Serialize()
	require.NoError(t, err)
	assert.Equal(t, form.ContentType(), contentType)

	reader := multipart.NewReader(bytes.NewReader(body), form.Boundary)

	part, err := reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/json", part.Header.Get("Content-Type"))
	assert.Equal(t, `form-data; name="post_body"`, part.Header.Get("Content-Disposition"))
	data, _ := io.ReadAll(part)
	assert.Equal(t, `{"emailSubject":"Please sign"}`, string(data))

	part, err = reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", part.Header.Get("Content-Type"))
	assert.Equal(t, `file; documentid=1; name="file1"; filename="contract.pdf"`, part.Header.Get("Content-Disposition"))
	assert.True(t, IsFilePart(part.Header))

	part, err = reader.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "text/plain", part.Header.Get("Content-Type"))
	assert.Equal(t, `file; documentid=7; name="file2"; filename="terms.txt"`, part.Header.Get("Content-Disposition"))

	_, err = reader.NextPart()
	assert.Equal(t, io.EOF, err)
}

func TestSerialize_EscapesQuotes(t *testing.T) {
	form := NewForm([]byte(`{}`), []File{{Name: `the "final" one.pdf`, Data: []byte("x")}})
	body, contentType, err := form.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(bytes.NewReader(body), contentType)
	require.NoError(t, err)
	require.Len(t, parsed.Files, 1)
	assert.Equal(t, `the "final" one.pdf`, parsed.Files[0].Name)
}

func TestParse_RoundTrip(t *testing.T) {
	form := NewForm([]byte(`{"documents":[{"documentId":"1"},{"documentId":"2"}]}`), []File{
		{Name: "a.pdf", Data: []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff}},
		{Name: "b.pdf", Data: []byte("second document")},
	})

	body, contentType, err := form.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(bytes.NewReader(body), contentType)
	require.NoError(t, err)
	assert.Equal(t, form.Boundary, parsed.Boundary)
	assert.Equal(t, form.PostBody, parsed.PostBody)
	require.Len(t, parsed.Files, 2)
	assert.Equal(t, "1", parsed.Files[0].DocumentID)
	assert.Equal(t, "application/pdf", parsed.Files[0].ContentType)
	assert.Equal(t, form.Files[0].Data, parsed.Files[0].Data)
	assert.Equal(t, "b.pdf", parsed.Files[1].Name)

	again, _, err := parsed.Serialize()
	require.NoError(t, err)
	assert.Equal(t, body, again)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader(""), "application/json")
	assert.ErrorContains(t, err, "not a multipart message")

	_, err = Parse(strings.NewReader(""), "multipart/form-data")
	assert.ErrorContains(t, err, "boundary not found")

	_, err = Parse(strings.NewReader("--b--\r\n"), `multipart/form-data; boundary="b"`)
	assert.ErrorContains(t, err, "post body not found")

	_, err = Parse(strings.NewReader(""), "multipart/;;")
	assert.Error(t, err)
}
