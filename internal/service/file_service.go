package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"billora/internal/config"
	"billora/internal/domain"
	"billora/internal/port"
)

// Storage folders for the two kinds of files the core persists.
const (
	FolderReceipts    = "payment-receipts"
	FolderAttachments = "payment-attachments"
)

// FilePayload is an incoming file to be stored: a payment receipt or a
// schedule entry attachment.
type FilePayload struct {
	FileName    string
	ContentType string
	Body        io.Reader
	Size        int64
}

// FileService persists receipts and attachments in object storage and hands
// back opaque keys. The core never interprets the keys.
type FileService interface {
	Upload(ctx context.Context, folder string, payload *FilePayload) (string, error)
	Remove(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string) (string, error)
}

type fileService struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewFileService creates a FileService backed by object storage.
func NewFileService(storage port.ObjectStorage, cfg *config.S3Config) FileService {
	return &fileService{storage: storage, cfg: cfg}
}

func (s *fileService) Upload(ctx context.Context, folder string, payload *FilePayload) (string, error) {
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if payload.Size > maxBytes {
		return "", domain.NewValidationError("file", fmt.Sprintf("file exceeds maximum size of %d MB", s.cfg.MaxFileSizeMB))
	}

	ext := strings.ToLower(path.Ext(payload.FileName))
	key := fmt.Sprintf("%s/%s%s", folder, uuid.New().String(), ext)

	if err := s.storage.Put(ctx, key, payload.Body, payload.ContentType); err != nil {
		return "", fmt.Errorf("%w: uploading %s: %v", domain.ErrStorage, payload.FileName, err)
	}
	return key, nil
}

func (s *fileService) Remove(ctx context.Context, key string) error {
	if err := s.storage.Remove(ctx, key); err != nil {
		return fmt.Errorf("%w: deleting %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

func (s *fileService) PresignURL(ctx context.Context, key string) (string, error) {
	url, err := s.storage.PresignGet(ctx, key, time.Duration(s.cfg.PresignExpiry)*time.Second)
	if err != nil {
		return "", fmt.Errorf("%w: presigning %s: %v", domain.ErrStorage, key, err)
	}
	return url, nil
}
