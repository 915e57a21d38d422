package service

import (
	"context"
	"io"
)

// FileUploadService is the file store collaborator: it stores a blob and
// returns a static URL for it. Deleting a missing object is not an error.
type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}

// MailService is the outbound mail transport collaborator.
type MailService interface {
	Send(to, subject, html string) error
}
