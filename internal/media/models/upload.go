package models

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
)

type UploadPhase string

const (
	UploadIdle         UploadPhase = "idle"
	UploadValidating   UploadPhase = "validating"
	UploadTransferring UploadPhase = "transferring"
	UploadSucceeded    UploadPhase = "succeeded"
	UploadFailed       UploadPhase = "failed"
)

// File is a re-openable binary blob. Open is called once per transfer so a
// failed upload can be submitted again with the same file.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func (f *File) Present() bool {
	return f != nil && f.Open != nil && f.Size > 0
}

// mime's builtin table has no video types and system tables vary by host.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
}

// FileFromPath stats path and returns a File that opens it lazily.
// The content type is guessed from the extension.
func FileFromPath(path string) (*File, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video file: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("stat video file: %s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	ct, ok := videoTypes[ext]
	if !ok {
		ct = mime.TypeByExtension(ext)
	}
	if ct == "" {
		ct = DefaultContentType
	}

	return &File{
		Name:        filepath.Base(path),
		ContentType: ct,
		Size:        st.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func FileFromBytes(name, contentType string, data []byte) *File {
	return &File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type UploadRequest struct {
	File        *File
	Title       string
	Description string
}

// Validate checks the request before anything is sent.
func (r UploadRequest) Validate() error {
	if !r.File.Present() {
		return ErrMissingFile
	}
	if strings.TrimSpace(r.Title) == "" || strings.TrimSpace(r.Description) == "" {
		return ErrMissingMetadata
	}
	return nil
}

type UploadSession struct {
	Phase    UploadPhase
	Progress int
	Message  string
	Err      error
	Video    *Video
}

func (s UploadSession) Terminal() bool {
	return s.Phase == UploadSucceeded || s.Phase == UploadFailed
}

func (s UploadSession) InFlight() bool {
	return s.Phase == UploadValidating || s.Phase == UploadTransferring
}

type TransferEventKind int

const (
	TransferProgress TransferEventKind = iota
	TransferSucceeded
	TransferFailed
)

// TransferEvent is one item of the stream a store emits for a single upload:
// zero or more TransferProgress events followed by exactly one outcome.
type TransferEvent struct {
	Kind  TransferEventKind
	Sent  int64
	Total int64
	Video *Video
	Err   error
}
