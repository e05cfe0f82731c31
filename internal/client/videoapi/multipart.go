package videoapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"

	"github.com/romariotrain/video-stream/internal/media/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// uploadBody is the multipart form streamed from the file without buffering
// it: head (file part header), the file content, tail (text fields and the
// closing boundary). Its length is known up front so progress has a total.
type uploadBody struct {
	head        []byte
	tail        []byte
	file        io.ReadCloser
	fileSize    int64
	contentType string

	r         io.Reader
	closeOnce sync.Once
}

func newUploadBody(req models.UploadRequest) (*uploadBody, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	ct := req.File.ContentType
	if ct == "" {
		ct = models.DefaultContentType
	}
	name := req.File.Name
	if name == "" {
		name = "video"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	h.Set("Content-Type", ct)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, fmt.Errorf("multipart file header: %w", err)
	}
	head := bytes.Clone(buf.Bytes())
	buf.Reset()

	if err := mw.WriteField("title", req.Title); err != nil {
		return nil, fmt.Errorf("multipart title: %w", err)
	}
	if err := mw.WriteField("description", req.Description); err != nil {
		return nil, fmt.Errorf("multipart description: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("multipart close: %w", err)
	}
	tail := bytes.Clone(buf.Bytes())

	file, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("open video file: %w", err)
	}

	b := &uploadBody{
		head:        head,
		tail:        tail,
		file:        file,
		fileSize:    req.File.Size,
		contentType: mw.FormDataContentType(),
	}
	// The declared size is what goes on the wire; a file that changed since
	// it was selected fails the request instead of sending a short body.
	b.r = io.MultiReader(bytes.NewReader(head), &exactReader{r: file, left: req.File.Size}, bytes.NewReader(tail))
	return b, nil
}

func (b *uploadBody) Len() int64 {
	return int64(len(b.head)) + b.fileSize + int64(len(b.tail))
}

func (b *uploadBody) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *uploadBody) Close() error {
	var err error
	b.closeOnce.Do(func() { err = b.file.Close() })
	return err
}

type exactReader struct {
	r    io.Reader
	left int64
}

func (e *exactReader) Read(p []byte) (int, error) {
	if e.left <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > e.left {
		p = p[:e.left]
	}
	n, err := e.r.Read(p)
	e.left -= int64(n)
	if err == io.EOF && e.left > 0 {
		return n, io.ErrUnexpectedEOF
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}
