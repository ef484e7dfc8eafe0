package repository

import (
	"context"
	"fmt"
	"strings"
)

// ObjectRemover subset of database.MinIOClient
type ObjectRemover interface {
	RemoveObjects(ctx context.Context, names []string) (map[string]error, error)
}

// AttachmentRepository 附件檔案
type AttachmentRepository interface {
	RemoveFiles(ctx context.Context, paths []string) error
}

type minioAttachmentRepository struct {
	store ObjectRemover
}

// NewMinIOAttachmentRepository create an AttachmentRepository
func NewMinIOAttachmentRepository(store ObjectRemover) AttachmentRepository {
	return &minioAttachmentRepository{store: store}
}

func (r *minioAttachmentRepository) RemoveFiles(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	failed, err := r.store.RemoveObjects(ctx, paths)
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		return nil
	}
	names := make([]string, 0, len(failed))
	for n := range failed {
		names = append(names, n)
	}
	return fmt.Errorf("remove attachments failed: %s", strings.Join(names, ","))
}
