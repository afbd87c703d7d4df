package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bilgisen/newsdigest/internal/models"
)

// Storage is the on-disk Archive.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

func NewStorage(basePath string) (*Storage, error) {
	cyclesPath := filepath.Join(basePath, "cycles")
	if err := os.MkdirAll(cyclesPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath: basePath,
	}, nil
}

func (s *Storage) cyclesPath() string {
	return filepath.Join(s.basePath, "cycles")
}

// SaveCycle writes the snapshot under cycles/YYYY/MM/DD/.
func (s *Storage) SaveCycle(ctx context.Context, snapshot *models.CycleSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	datePath := filepath.Join(s.cyclesPath(), snapshot.FinishedAt.Format("2006/01/02"))
	if err := os.MkdirAll(datePath, 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %w", err)
	}

	filename := fmt.Sprintf("%d_%s.json", snapshot.FinishedAt.Unix(), snapshot.CycleID)
	filePath := filepath.Join(datePath, filename)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cycle snapshot: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cycle file: %w", err)
	}

	return nil
}

// ListCycles returns a page of snapshots, newest first.
func (s *Storage) ListCycles(ctx context.Context, page, pageSize int) ([]*models.CycleSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var files []string
	err := filepath.WalkDir(s.cyclesPath(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking the path: %w", err)
	}

	// Paths embed the date and unix time, so lexical order is chronological.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	start, end := pageBounds(len(files), page, pageSize)
	snapshots := make([]*models.CycleSnapshot, 0, end-start)
	for _, file := range files[start:end] {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading file %s: %w", file, err)
		}

		var snapshot models.CycleSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("error unmarshaling cycle snapshot: %w", err)
		}
		snapshots = append(snapshots, &snapshot)
	}

	return snapshots, nil
}
