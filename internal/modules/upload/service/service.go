package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	uploadDto "anoa.com/campusforum/internal/modules/upload/dto"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/storage"
	"github.com/google/uuid"
)

// Folders accepted by UploadImage, keyed by the "kind" form field.
var folders = map[string]string{
	"qr_code": "line_groups",
	"cover":   "post_covers",
}

type UploadService interface {
	UploadImage(ctx context.Context, userID uuid.UUID, kind string, file *multipart.FileHeader) (*uploadDto.UploadResponse, error)
}

type uploadService struct {
	storage storage.ImageStorage
	timeout time.Duration
}

func NewUploadService(storage storage.ImageStorage, timeout time.Duration) UploadService {
	return &uploadService{storage: storage, timeout: timeout}
}

func (s *uploadService) UploadImage(ctx context.Context, userID uuid.UUID, kind string, file *multipart.FileHeader) (*uploadDto.UploadResponse, error) {
	if s.storage == nil {
		return nil, apperror.New(http.StatusServiceUnavailable, "image uploads are disabled", apperror.ErrInternal)
	}

	folder, ok := folders[kind]
	if !ok {
		return nil, apperror.BadRequest("kind must be qr_code or cover")
	}

	if err := storage.ValidateImage(file); err != nil {
		return nil, apperror.New(http.StatusBadRequest, err.Error(), err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url, err := s.storage.UploadImage(ctx, src, folder, userID.String()+"_"+file.Filename)
	if err != nil {
		return nil, err
	}

	return &uploadDto.UploadResponse{URL: url, Folder: folder}, nil
}
