package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/Aman-Dixit07/Student-lms/internal/common"
)

func TestMediaIngest(t *testing.T) {
	store := newMemoryMedia()
	svc := NewMediaService(store, 1024)
	svc.now = func() time.Time { return time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	url, err := svc.Ingest(ctx, FolderDocuments, upload("pdf", pdfBytes))
	if err != nil {
		t.Fatalf("ingest pdf: %v", err)
	}
	if !regexp.MustCompile(`^https://cdn\.test/lms/documents/2024/02/[0-9a-f-]{36}\.pdf$`).MatchString(url) {
		t.Fatalf("url = %q", url)
	}
	for key, ct := range store.objects {
		if ct != "application/pdf" {
			t.Fatalf("object %s stored as %q", key, ct)
		}
	}

	tests := []struct {
		name   string
		folder MediaFolder
		up     *Upload
	}{
		{"nil upload", FolderDocuments, nil},
		{"empty", FolderDocuments, upload("pdf", nil)},
		{"image as document", FolderDocuments, upload("pdf", pngBytes)},
		{"pdf as thumbnail", FolderCourseThumbnails, upload("thumbnail", pdfBytes)},
		{"too large", FolderDocuments, &Upload{Field: "pdf", Size: 4096, Reader: bytes.NewReader(pdfBytes)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Ingest(ctx, tt.folder, tt.up)
			if !errors.Is(err, common.ErrValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
		})
	}
	if len(store.objects) != 1 {
		t.Fatalf("stored %d objects, want 1", len(store.objects))
	}
}
