package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// MediaStore persists uploaded bytes and returns a durable URL.
type MediaStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// MediaFolder is the destination category of an upload.
type MediaFolder string

const (
	FolderVideos           MediaFolder = "lms/videos"
	FolderDocuments        MediaFolder = "lms/documents"
	FolderLessonThumbnails MediaFolder = "lms/lesson-thumbnails"
	FolderCourseThumbnails MediaFolder = "lms/course-thumbnails"
)

// accepts reports whether the sniffed MIME type is allowed in the folder.
func (f MediaFolder) accepts(mime string) bool {
	switch f {
	case FolderVideos:
		return strings.HasPrefix(mime, "video/")
	case FolderDocuments:
		return mime == "application/pdf"
	case FolderLessonThumbnails, FolderCourseThumbnails:
		return strings.HasPrefix(mime, "image/")
	}
	return false
}

// Upload is one file received from a client.
type Upload struct {
	Field    string
	Filename string
	Size     int64
	Reader   io.Reader
}

type MediaService struct {
	store   MediaStore
	maxSize int64
	now     func() time.Time
}

func NewMediaService(store MediaStore, maxSize int64) *MediaService {
	return &MediaService{store: store, maxSize: maxSize, now: time.Now}
}

// sniffLen covers the signatures mimetype needs for common video, pdf and image formats.
const sniffLen = 3072

// Ingest checks the real content type of the upload against the folder and stores it.
func (s *MediaService) Ingest(ctx context.Context, folder MediaFolder, up *Upload) (string, error) {
	if up == nil || up.Reader == nil {
		return "", common.NewValidationError("file", "is required")
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return "", common.NewValidationError(up.Field, fmt.Sprintf("must be at most %d bytes", s.maxSize))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", common.NewValidationError(up.Field, "is empty")
	}

	mt := mimetype.Detect(head)
	mime := strings.SplitN(mt.String(), ";", 2)[0]
	if !folder.accepts(mime) {
		return "", common.NewValidationError(up.Field, "invalid file type "+mime)
	}

	now := s.now().UTC()
	key := path.Join(string(folder), fmt.Sprintf("%d/%02d", now.Year(), now.Month()), uuid.NewString()+mt.Extension())
	url, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), up.Reader), up.Size, mime)
	if err != nil {
		return "", fmt.Errorf("store media: %v: %w", err, common.ErrServiceUnavailable)
	}
	return url, nil
}
