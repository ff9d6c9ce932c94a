package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"anoa.com/campusforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	folder string
	body   []byte
}

func (f *fakeStorage) UploadImage(_ context.Context, r io.Reader, folder, _ string) (string, error) {
	f.folder = folder
	f.body, _ = io.ReadAll(r)
	return "https://res.cloudinary.com/demo/image/upload/v1/" + folder + "/x.webp", nil
}

func (f *fakeStorage) DeleteImage(context.Context, string) error { return nil }

func formFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestUploadImage(t *testing.T) {
	ctx := context.Background()
	user := uuid.New()

	t.Run("uploads qr codes to the line group folder", func(t *testing.T) {
		store := &fakeStorage{}
		svc := NewUploadService(store, time.Second)

		resp, err := svc.UploadImage(ctx, user, "qr_code", formFile(t, "qr.png", []byte("png-bytes")))
		require.NoError(t, err)
		require.Equal(t, "line_groups", resp.Folder)
		require.Equal(t, "line_groups", store.folder)
		require.Equal(t, []byte("png-bytes"), store.body)
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc := NewUploadService(&fakeStorage{}, time.Second)
		_, err := svc.UploadImage(ctx, user, "banner", formFile(t, "qr.png", []byte("x")))
		require.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("rejects non images", func(t *testing.T) {
		svc := NewUploadService(&fakeStorage{}, time.Second)
		_, err := svc.UploadImage(ctx, user, "cover", formFile(t, "notes.pdf", []byte("x")))
		require.Error(t, err)
		require.Equal(t, 400, apperror.MapErrorToStatus(err))
	})

	t.Run("disabled storage", func(t *testing.T) {
		svc := NewUploadService(nil, time.Second)
		_, err := svc.UploadImage(ctx, user, "cover", formFile(t, "a.png", []byte("x")))
		require.Equal(t, 503, apperror.MapErrorToStatus(err))
	})
}
