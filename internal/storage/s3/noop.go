package s3

import (
	"context"
	"io"
	"log"

	"cverve/internal/port"
)

type noopStorage struct{}

// NewNoop returns an ObjectStorage that discards uploads. Used when no bucket is configured.
func NewNoop() port.ObjectStorage {
	return noopStorage{}
}

func (noopStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Body != nil {
		_, _ = io.Copy(io.Discard, input.Body)
	}
	log.Printf("s3.noopStorage.Upload: archive disabled, dropping %s", input.Key)
	return &port.UploadOutput{}, nil
}

func (noopStorage) Delete(_ context.Context, _, _ string) error {
	return nil
}
