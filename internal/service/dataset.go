package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"routeplanner/internal/ingest"
	"routeplanner/internal/model"
	"routeplanner/internal/repository"
	"routeplanner/internal/storage"
)

var (
	ErrReaderNil       = errors.New("reader is nil")
	ErrInvalidDataset  = errors.New("invalid dataset")
	ErrNoSourceDataset = errors.New("no source dataset uploaded")
)

// sourceKey is the fixed object key for the current source sheet. A new upload
// replaces both the object and the retailer table, mirroring how the field
// team maintains a single master sheet.
const sourceKey = storage.DatasetPrefix + "source"

// sourcePresignExpiry bounds how long a download link stays valid.
const sourcePresignExpiry = 15 * time.Minute

// DatasetUploadResult reports what an upload replaced.
type DatasetUploadResult struct {
	Filename  string `json:"filename"`
	Retailers int    `json:"retailers"`
	Size      int64  `json:"size"`
}

// RetailerListResult is the service-level DTO for paginated retailers.
type RetailerListResult struct {
	Items []model.Retailer `json:"data"`
	Total int              `json:"total"`
}

// DatasetService defines the use cases for the retailer source dataset.
type DatasetService interface {
	// Upload validates and parses the sheet, stores it as the current source
	// object, and replaces the retailer table with its rows. The object is
	// rolled back if the database replace fails.
	Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64) (*DatasetUploadResult, error)

	// SourceURL returns a time-limited download URL for the current source sheet.
	SourceURL(ctx context.Context) (string, error)

	// ListRetailers returns retailers using limit/offset and a total count.
	ListRetailers(ctx context.Context, limit, offset int) (*RetailerListResult, error)
}

// datasetService is a concrete implementation of DatasetService.
type datasetService struct {
	store     storage.Storage
	retailers repository.RetailerRepository
}

// NewDatasetService constructs a new DatasetService.
func NewDatasetService(store storage.Storage, retailers repository.RetailerRepository) DatasetService {
	return &datasetService{store: store, retailers: retailers}
}

func (s *datasetService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64) (*DatasetUploadResult, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	// The content is needed twice (parse + store), so buffer it once.
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	// Parse before storing anything so a bad sheet leaves no trace.
	rows, err := ingest.Parse(bytes.NewReader(content), originalFilename)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}

	if _, err := s.store.Put(ctx, sourceKey, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filepath.Base(originalFilename),
		},
	}); err != nil {
		return nil, fmt.Errorf("store dataset: %w", err)
	}

	count, err := s.retailers.ReplaceAll(ctx, rows)
	if err != nil {
		// Rollback: the stored object would no longer match the table
		if delErr := s.store.Delete(ctx, sourceKey); delErr != nil {
			return nil, fmt.Errorf("db replace failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db replace failed: %w", err)
	}

	return &DatasetUploadResult{
		Filename:  filepath.Base(originalFilename),
		Retailers: count,
		Size:      int64(len(content)),
	}, nil
}

// SourceURL presigns the current source object after confirming it exists.
func (s *datasetService) SourceURL(ctx context.Context) (string, error) {
	rc, _, err := s.store.Get(ctx, sourceKey)
	if err != nil {
		return "", ErrNoSourceDataset
	}
	rc.Close()

	url, err := s.store.PresignGet(ctx, sourceKey, sourcePresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign source: %w", err)
	}
	return url, nil
}

// ListRetailers returns paginated retailers without exposing repository types.
func (s *datasetService) ListRetailers(ctx context.Context, limit, offset int) (*RetailerListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.retailers.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &RetailerListResult{Items: res.Items, Total: res.Total}, nil
}
