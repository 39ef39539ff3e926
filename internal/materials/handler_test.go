package materials

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"filmdecks_backend/internal/adapters/storage"
	"filmdecks_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUploader struct {
	folder string
}

func (u *stubUploader) GenerateUploadURL(_ context.Context, bucket, folder, fileName, _ string, _ int64) (*storage.PresignedURL, error) {
	u.folder = folder
	return &storage.PresignedURL{
		URL:       "https://minio.local/" + bucket + "/" + folder + "/" + fileName,
		FileKey:   folder + "/" + fileName,
		ExpiresAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}, nil
}

func (u *stubUploader) ValidateContentType(ct string) error {
	if ct != "application/pdf" {
		return errors.New("content type not allowed")
	}
	return nil
}

func (u *stubUploader) ValidateFileSize(size int64) error {
	if size > 100 {
		return errors.New("too large")
	}
	return nil
}

func serve(uploader Uploader, body any) *httptest.ResponseRecorder {
	var handler *Handler
	if uploader == nil {
		handler = NewHandler(New(nil, ""), validator.New())
	} else {
		svc := New(uploader, "materials")
		svc.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
		handler = NewHandler(svc, validator.New())
	}

	r := gin.New()
	r.POST("/uploads", handler.PresignUpload)

	raw, _ := json.Marshal(body)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/uploads", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestPresignUpload(t *testing.T) {
	uploader := &stubUploader{}
	rec := serve(uploader, UploadRequest{FileName: "deck.pdf", ContentType: "application/pdf", SizeBytes: 10})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp UploadResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.FileKey != "questionnaire/2026-10-19/deck.pdf" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPresignUploadRejections(t *testing.T) {
	cases := []struct {
		name string
		body UploadRequest
		want int
	}{
		{"bad type", UploadRequest{FileName: "run.exe", ContentType: "application/x-msdownload", SizeBytes: 10}, http.StatusBadRequest},
		{"too large", UploadRequest{FileName: "deck.pdf", ContentType: "application/pdf", SizeBytes: 1000}, http.StatusBadRequest},
		{"missing name", UploadRequest{ContentType: "application/pdf", SizeBytes: 10}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if rec := serve(&stubUploader{}, tc.body); rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestPresignUploadDisabled(t *testing.T) {
	rec := serve(nil, UploadRequest{FileName: "deck.pdf", ContentType: "application/pdf", SizeBytes: 10})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
