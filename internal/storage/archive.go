package storage

import (
	"context"
	"fmt"

	"github.com/bilgisen/newsdigest/internal/config"
	"github.com/bilgisen/newsdigest/internal/models"
)

// Archive stores snapshots of successful cycles.
type Archive interface {
	SaveCycle(ctx context.Context, snapshot *models.CycleSnapshot) error
	ListCycles(ctx context.Context, page, pageSize int) ([]*models.CycleSnapshot, error)
}

// NewArchive builds the archive selected by cfg.ArchiveBackend.
// It returns nil when archiving is disabled.
func NewArchive(ctx context.Context, cfg *config.Config) (Archive, error) {
	switch cfg.ArchiveBackend {
	case config.ArchiveNone, "":
		return nil, nil
	case config.ArchiveDisk:
		disk, err := NewStorage(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return disk, nil
	case config.ArchiveS3:
		remote, err := NewS3Archive(ctx, S3Config{
			Endpoint:  cfg.R2Endpoint,
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
			Region:    cfg.R2Region,
		})
		if err != nil {
			return nil, err
		}
		return remote, nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}

func pageBounds(total, page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= total {
		return total, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}
