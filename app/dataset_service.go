package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"datalens/adapters/tabular"
	"datalens/domain/core"
	"datalens/domain/dataset"
	"datalens/internal"
	"datalens/internal/config"
	"datalens/internal/errors"
	"datalens/internal/profile"
	"datalens/internal/viz"
	"datalens/ports"
)

const metadataSampleRows = 5

// Legacy .xls is deliberately absent: the xlsx parser cannot open the
// old binary format, so accepting it would only produce failed datasets.
var mimeTypes = map[string]string{
	".csv":  "text/csv",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DatasetService handles dataset ingestion, profiling, and lifecycle
type DatasetService struct {
	repo    ports.DatasetRepository
	history ports.QueryHistoryRepository
	storage ports.FileStorage
	cache   *TableCache
	cfg     *config.Config
}

// NewDatasetService creates a dataset service
func NewDatasetService(repo ports.DatasetRepository, history ports.QueryHistoryRepository, storage ports.FileStorage, cache *TableCache, cfg *config.Config) *DatasetService {
	return &DatasetService{
		repo:    repo,
		history: history,
		storage: storage,
		cache:   cache,
		cfg:     cfg,
	}
}

// Ingest stores an uploaded file, parses and profiles it, and persists
// the dataset record. The returned dataset is ready for querying, or
// marked failed with the parse error recorded.
func (s *DatasetService) Ingest(ctx context.Context, src io.Reader, filename string, size int64) (*dataset.Dataset, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := mimeTypes[ext]; !ok {
		return nil, errors.WithCode(errors.CodeValidationError,
			fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, ext))
	}

	if size > s.cfg.Storage.MaxFileSize {
		return nil, errors.WithCode(errors.CodeValidationError,
			fmt.Errorf("%w: %d bytes exceeds limit of %d", core.ErrFileTooLarge, size, s.cfg.Storage.MaxFileSize))
	}

	filePath, err := s.storage.Store(ctx, src, filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store uploaded file")
	}

	now := time.Now().UTC()
	ds := &dataset.Dataset{
		ID:               core.NewDatasetID(),
		OriginalFilename: filename,
		FilePath:         filePath,
		FileSize:         size,
		MimeType:         mimeTypes[ext],
		Source:           strings.TrimPrefix(ext, "."),
		Status:           dataset.StatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if size <= 0 {
		if stored, sizeErr := s.storage.GetFileSize(filePath); sizeErr == nil {
			ds.FileSize = stored
		}
	}

	table, profErr := s.parseAndProfile(ctx, ds)
	if profErr != nil {
		ds.MarkFailed(profErr.Error())
		if createErr := s.repo.Create(ctx, ds); createErr != nil {
			return nil, errors.Wrap(createErr, "failed to persist failed dataset")
		}
		internal.DefaultLogger.Error("[DatasetService] Ingestion failed for %s: %v", filename, profErr)
		return ds, errors.IngestionError("dataset ingestion failed", profErr)
	}

	ds.MarkReady()
	if err := s.repo.Create(ctx, ds); err != nil {
		return nil, errors.Wrap(err, "failed to persist dataset")
	}

	s.cache.Put(ds.ID, table)
	internal.DefaultLogger.Info("[DatasetService] Ingested %s: %d rows, %d columns", filename, ds.RecordCount, ds.FieldCount)

	return ds, nil
}

func (s *DatasetService) parseAndProfile(ctx context.Context, ds *dataset.Dataset) (*tabular.Table, error) {
	reader, err := tabular.NewReader(ds.FilePath)
	if err != nil {
		return nil, err
	}
	if s.cfg.Data.SampleSize > 0 {
		reader.Coercion.SampleSize = s.cfg.Data.SampleSize
	}

	table, err := reader.Read()
	if err != nil {
		return nil, err
	}

	profiler := profile.NewProfiler(table)
	meta, err := profiler.BuildMetadata(ctx, metadataSampleRows)
	if err != nil {
		return nil, err
	}
	meta.FileInfo.Encoding = reader.Encoding()
	meta.FileInfo.HasHeaders = true

	ds.Metadata = meta
	ds.RecordCount = table.RowCount()
	ds.FieldCount = table.ColumnCount()
	ds.MissingRate = profiler.MissingRate()

	return table, nil
}

// Get returns a dataset by ID
func (s *DatasetService) Get(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns datasets newest first
func (s *DatasetService) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete removes a dataset, its stored file, query history, and cache entry
func (s *DatasetService) Delete(ctx context.Context, id core.DatasetID) error {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if ds.FilePath != "" {
		if err := s.storage.Delete(ctx, ds.FilePath); err != nil {
			internal.DefaultLogger.Warn("[DatasetService] failed to delete file %s: %v", ds.FilePath, err)
		}
	}

	if err := s.history.DeleteByDataset(ctx, id); err != nil {
		internal.DefaultLogger.Warn("[DatasetService] failed to delete history for %s: %v", id, err)
	}

	s.cache.Evict(id)
	return s.repo.Delete(ctx, id)
}

// Table returns the parsed table for a ready dataset
func (s *DatasetService) Table(ctx context.Context, id core.DatasetID) (*dataset.Dataset, *tabular.Table, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if ds.Status != dataset.StatusReady {
		return nil, nil, errors.WithCode(errors.CodeValidationError,
			fmt.Errorf("dataset %s is not ready (status: %s)", id, ds.Status))
	}

	table, err := s.cache.Get(ds)
	if err != nil {
		if ok, _ := s.storage.Exists(ctx, ds.FilePath); !ok {
			return nil, nil, fmt.Errorf("%w: stored file for dataset %s is missing", core.ErrNotFound, id)
		}
		return nil, nil, errors.Wrap(err, "failed to load dataset table")
	}
	return ds, table, nil
}

// Download opens the stored source file for streaming
func (s *DatasetService) Download(ctx context.Context, id core.DatasetID) (*dataset.Dataset, io.ReadCloser, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.storage.GetReader(ctx, ds.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stored file for dataset %s", core.ErrNotFound, id)
	}
	return ds, reader, nil
}

// Overview bundles everything the overview view needs
type Overview struct {
	Dataset     *dataset.Dataset         `json:"dataset"`
	Columns     []profile.ColumnInfo     `json:"columns"`
	Quality     profile.QualityReport    `json:"quality"`
	Validation  profile.ValidationReport `json:"validation"`
	Missing     []profile.MissingColumn  `json:"missing,omitempty"`
	Suggestions []string                 `json:"suggestions,omitempty"`
	Headers     []string                 `json:"headers"`
	SampleRows  [][]string               `json:"sample_rows"`
}

// Sample row caps for the overview endpoint
const (
	DefaultOverviewRows = 1000
	MaxOverviewRows     = 5000
)

// Overview profiles a dataset for the overview view. sampleRows bounds
// the number of raw rows included; values outside [1, MaxOverviewRows]
// are clamped.
func (s *DatasetService) Overview(ctx context.Context, id core.DatasetID, sampleRows int) (*Overview, error) {
	ds, table, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}

	profiler := profile.NewProfiler(table)
	columns, err := profiler.ColumnInfos(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to profile columns")
	}

	if sampleRows < 1 {
		sampleRows = DefaultOverviewRows
	}
	if sampleRows > MaxOverviewRows {
		sampleRows = MaxOverviewRows
	}
	if sampleRows > len(table.Rows) {
		sampleRows = len(table.Rows)
	}

	return &Overview{
		Dataset:     ds,
		Columns:     columns,
		Quality:     profiler.Quality(),
		Validation:  profiler.Validate(),
		Missing:     profiler.MissingReport(),
		Suggestions: profiler.SuggestAnalyses(),
		Headers:     table.Headers,
		SampleRows:  table.Rows[:sampleRows],
	}, nil
}

// Summary returns describe-style statistics for all numeric columns
func (s *DatasetService) Summary(ctx context.Context, id core.DatasetID) ([]profile.ColumnBrief, error) {
	_, table, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	return profile.NewProfiler(table).Describe(ctx)
}

// Correlation returns the pairwise Pearson correlation matrix
func (s *DatasetService) Correlation(ctx context.Context, id core.DatasetID) (*profile.CorrelationMatrix, error) {
	_, table, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	return profile.NewProfiler(table).Correlation()
}

// ChartSuggestions returns visualization suggestions for a dataset
func (s *DatasetService) ChartSuggestions(ctx context.Context, id core.DatasetID) ([]viz.Suggestion, error) {
	_, table, err := s.Table(ctx, id)
	if err != nil {
		return nil, err
	}
	return viz.Suggest(table), nil
}
