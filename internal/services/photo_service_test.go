package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aksi-clean/api/internal/platform/auth"
	"github.com/aksi-clean/api/internal/platform/storage"
)

type fakePhotoSigner struct{}

func (fakePhotoSigner) Email() string {
	return "signer@example.iam.gserviceaccount.com"
}

func (fakePhotoSigner) SignBytes(_ context.Context, _ []byte) ([]byte, error) {
	return []byte("signed"), nil
}

func newTestPhotoService(t *testing.T) PhotoService {
	t.Helper()

	now := time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC)
	client, err := storage.NewClient(fakePhotoSigner{}, storage.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	svc, err := NewPhotoService(PhotoServiceDeps{
		Signer: client,
		Bucket: "aksi-photos-test",
	})
	if err != nil {
		t.Fatalf("NewPhotoService: %v", err)
	}
	return svc
}

func TestPhotoServiceCreateUploadURL(t *testing.T) {
	svc := newTestPhotoService(t)

	result, err := svc.CreateUploadURL(context.Background(), PhotoUploadCommand{
		SessionID:   "sess-1",
		ItemID:      "item-0",
		FileName:    "front.jpg",
		ContentType: "image/jpeg",
		Metadata:    map[string]string{" Operator ": " op-7 ", "": "dropped"},
	})
	if err != nil {
		t.Fatalf("CreateUploadURL: %v", err)
	}

	if result.ObjectPath != "photos/sessions/sess-1/items/item-0/front.jpg" {
		t.Fatalf("object path = %q", result.ObjectPath)
	}
	if result.Method != "PUT" {
		t.Fatalf("method = %q, want PUT", result.Method)
	}
	if !strings.Contains(result.URL, "aksi-photos-test") {
		t.Fatalf("url missing bucket: %s", result.URL)
	}
	if result.Headers["x-goog-meta-operator"] != "op-7" {
		t.Fatalf("metadata header missing: %v", result.Headers)
	}
	if result.Headers["Content-Type"] != "image/jpeg" {
		t.Fatalf("content type header missing: %v", result.Headers)
	}
}

func TestPhotoServiceRejectsBadUploads(t *testing.T) {
	svc := newTestPhotoService(t)

	_, err := svc.CreateUploadURL(context.Background(), PhotoUploadCommand{
		SessionID:   "sess-1",
		ItemID:      "item-0",
		ContentType: "image/jpeg",
	})
	if !errors.Is(err, ErrPhotoInvalidInput) {
		t.Fatalf("missing file name: got %v, want ErrPhotoInvalidInput", err)
	}

	_, err = svc.CreateUploadURL(context.Background(), PhotoUploadCommand{
		SessionID:   "sess-1",
		ItemID:      "item-0",
		FileName:    "notes.pdf",
		ContentType: "application/pdf",
	})
	if !errors.Is(err, ErrPhotoInvalidInput) {
		t.Fatalf("denied content type: got %v, want ErrPhotoInvalidInput", err)
	}

	_, err = svc.CreateUploadURL(context.Background(), PhotoUploadCommand{
		SessionID:   "sess-1",
		ItemID:      "../escape",
		FileName:    "front.jpg",
		ContentType: "image/jpeg",
	})
	if !errors.Is(err, ErrPhotoInvalidInput) {
		t.Fatalf("traversal item id: got %v, want ErrPhotoInvalidInput", err)
	}
}

func TestPhotoServiceCreateDownloadURL(t *testing.T) {
	svc := newTestPhotoService(t)

	ctx := auth.WithIdentity(context.Background(), &auth.Identity{
		OperatorID: "op-7",
		Roles:      []string{auth.RoleOperator},
	})
	result, err := svc.CreateDownloadURL(ctx, PhotoDownloadCommand{
		ObjectPath: "photos/sessions/sess-1/items/item-0/front.jpg",
	})
	if err != nil {
		t.Fatalf("CreateDownloadURL: %v", err)
	}
	if result.Method != "GET" {
		t.Fatalf("method = %q, want GET", result.Method)
	}

	_, err = svc.CreateDownloadURL(ctx, PhotoDownloadCommand{})
	if !errors.Is(err, ErrPhotoInvalidInput) {
		t.Fatalf("empty object path: got %v, want ErrPhotoInvalidInput", err)
	}

	badCtx := auth.WithIdentity(context.Background(), &auth.Identity{
		OperatorID: "svc-account",
		Roles:      []string{"reporting"},
	})
	_, err = svc.CreateDownloadURL(badCtx, PhotoDownloadCommand{
		ObjectPath: "photos/sessions/sess-1/items/item-0/front.jpg",
	})
	if !errors.Is(err, ErrPhotoForbidden) {
		t.Fatalf("non staff role: got %v, want ErrPhotoForbidden", err)
	}
}
