// Package dataset wires the core engine to uploads, storage and
// persistence: it decodes uploaded files into matrices, owns the
// DataFile lifecycle (transforms fork a new matrix and bump the file
// version), and memoizes per-column summaries keyed by that version.
package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/shanky2010/batch-visual-insights/adapters/excel"
	"github.com/shanky2010/batch-visual-insights/domain/core"
	"github.com/shanky2010/batch-visual-insights/domain/table"
	"github.com/shanky2010/batch-visual-insights/internal/compare"
	"github.com/shanky2010/batch-visual-insights/internal/describe"
	apperrors "github.com/shanky2010/batch-visual-insights/internal/errors"
	"github.com/shanky2010/batch-visual-insights/internal/export"
	"github.com/shanky2010/batch-visual-insights/internal/impute"
	"github.com/shanky2010/batch-visual-insights/internal/logging"
	"github.com/shanky2010/batch-visual-insights/internal/outlier"
	"github.com/shanky2010/batch-visual-insights/ports"
)

// Upload carries one incoming file and its metadata.
type Upload struct {
	File     io.Reader
	Filename string
	MimeType string
	UserID   core.UserID
}

// Selection names one file's chosen columns for comparison or export.
type Selection struct {
	FileID  core.FileID
	Columns []int
}

// summaryKey keys the memoization cache. Version participates so a
// transform that replaces the matrix invalidates by key mismatch.
type summaryKey struct {
	fileID  core.FileID
	col     int
	version int
}

// Service handles upload processing and analysis over stored files.
type Service struct {
	repository  ports.FileRepository
	fileStorage FileStorage
	excelReader *excel.Reader
	maxFileSize int64
	uploadSem   *semaphore.Weighted
	log         *logging.Logger

	cacheMu      sync.RWMutex
	summaryCache map[summaryKey]describe.Summary
}

// NewService creates a new dataset service
func NewService(repository ports.FileRepository, fileStorage FileStorage, maxFileSize, maxUploads int64) *Service {
	if maxFileSize <= 0 {
		maxFileSize = 50 * 1024 * 1024
	}
	if maxUploads <= 0 {
		maxUploads = 4
	}
	return &Service{
		repository:   repository,
		fileStorage:  fileStorage,
		excelReader:  excel.NewReader(),
		maxFileSize:  maxFileSize,
		uploadSem:    semaphore.NewWeighted(maxUploads),
		log:          logging.New("FileProcessor"),
		summaryCache: make(map[summaryKey]describe.Summary),
	}
}

// ProcessUpload decodes an uploaded file into a matrix, validates it
// and stores the resulting DataFile record. Validation issues never
// fail the upload; only undecodable input does.
func (s *Service) ProcessUpload(ctx context.Context, upload Upload) (*table.DataFile, error) {
	s.log.Info("Starting processing for file: %s", upload.Filename)

	if err := s.uploadSem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire upload slot: %w", err)
	}
	defer s.uploadSem.Release(1)

	if err := validateUpload(upload); err != nil {
		return nil, apperrors.UploadRejected("upload validation failed", err)
	}

	// Bound the read one byte past the limit so oversize is detectable.
	content, err := io.ReadAll(io.LimitReader(upload.File, s.maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxFileSize {
		return nil, fmt.Errorf("%w: limit %d bytes", core.ErrFileTooLarge, s.maxFileSize)
	}

	f := table.NewDataFile(upload.UserID, upload.Filename)
	f.MimeType = resolveMimeType(upload.Filename, upload.MimeType)
	f.FileSize = int64(len(content))

	if s.fileStorage != nil {
		filePath, err := s.fileStorage.Store(ctx, bytes.NewReader(content), upload.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to store file: %w", err)
		}
		f.FilePath = filePath
	}

	matrix, err := s.decode(upload.Filename, content)
	if err != nil {
		f.Status = table.StatusFailed
		f.ErrorMessage = err.Error()
		if createErr := s.repository.Create(ctx, f); createErr != nil {
			return nil, fmt.Errorf("failed to create failed-file record: %w", createErr)
		}
		return f, nil
	}

	f.SetMatrix(matrix)
	f.Validation = table.Validate(matrix)
	f.Status = table.StatusReady

	if err := s.repository.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.log.Info("Successfully processed %s (%s): %d rows, %d columns, %d issue(s)",
		upload.Filename, f.ID, f.RowCount, f.ColumnCount, len(f.Validation.Issues))
	return f, nil
}

// decode turns raw bytes into a matrix based on the file extension.
func (s *Service) decode(filename string, content []byte) (table.Matrix, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		matrix := table.Parse(string(content))
		if len(matrix) == 0 {
			return nil, fmt.Errorf("%w: parsed matrix has no rows", core.ErrEmptyInput)
		}
		return matrix, nil
	case ".xlsx":
		return s.excelReader.ReadMatrix(bytes.NewReader(content))
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// GetFile retrieves a stored file by ID.
func (s *Service) GetFile(ctx context.Context, id core.FileID) (*table.DataFile, error) {
	return s.repository.GetByID(ctx, id)
}

// ListFiles lists a user's files.
func (s *Service) ListFiles(ctx context.Context, userID core.UserID) ([]*table.DataFile, error) {
	return s.repository.ListByUser(ctx, userID)
}

// DeleteFile removes the record and its stored upload.
func (s *Service) DeleteFile(ctx context.Context, id core.FileID) error {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.fileStorage != nil && f.FilePath != "" {
		if err := s.fileStorage.Delete(ctx, f.FilePath); err != nil {
			s.log.Warn("Failed to delete stored file %s: %v", f.FilePath, err)
		}
	}
	s.pruneCache(id)
	return s.repository.Delete(ctx, id)
}

// OpenOriginal opens the stored upload for download. Files ingested
// without backing storage report not found.
func (s *Service) OpenOriginal(ctx context.Context, id core.FileID) (io.ReadCloser, *table.DataFile, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s.fileStorage == nil || f.FilePath == "" {
		return nil, nil, core.NewNotFoundError("stored upload", id.String())
	}

	if size, err := s.fileStorage.GetFileSize(f.FilePath); err == nil {
		f.FileSize = size
	}
	reader, err := s.fileStorage.GetReader(ctx, f.FilePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open stored upload: %w", err)
	}
	return reader, f, nil
}

// NumericColumns lists the fully numeric columns of a file.
func (s *Service) NumericColumns(ctx context.Context, id core.FileID) ([]table.Column, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return table.NumericColumns(f.Matrix), nil
}

// ColumnSummary computes (or returns the memoized) summary for one
// column of a file. The cache key includes the file version, so entries
// computed against a replaced matrix can never be served.
func (s *Service) ColumnSummary(ctx context.Context, id core.FileID, col int) (describe.Summary, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return describe.Summary{}, err
	}
	if col < 0 || col >= f.ColumnCount {
		return describe.Summary{}, core.NewColumnError(fmt.Sprintf("%d", col), core.ErrColumnNotFound)
	}

	key := summaryKey{fileID: id, col: col, version: f.Version}
	s.cacheMu.RLock()
	if cached, ok := s.summaryCache[key]; ok {
		s.cacheMu.RUnlock()
		s.log.Debug("Summary cache hit for file %s column %d version %d", id, col, f.Version)
		return cached, nil
	}
	s.cacheMu.RUnlock()

	summary := describe.Summarize(f.Matrix, col)

	s.cacheMu.Lock()
	s.summaryCache[key] = summary
	s.cacheMu.Unlock()

	return summary, nil
}

// SummarizeNumeric computes summaries for all numeric columns of a
// file concurrently.
func (s *Service) SummarizeNumeric(ctx context.Context, id core.FileID) (map[string]describe.Summary, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := table.NumericColumns(f.Matrix)
	summaries := make(map[string]describe.Summary, len(columns))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, col := range columns {
		col := col
		g.Go(func() error {
			summary, err := s.ColumnSummary(gctx, id, col.Index)
			if err != nil {
				return err
			}
			mu.Lock()
			summaries[col.Name] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return summaries, nil
}

// Outliers runs the selected detector over one column and resolves the
// detected positions back to matrix rows.
func (s *Service) Outliers(ctx context.Context, id core.FileID, col int, method outlier.Method, zThreshold float64) (outlier.Result, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return outlier.Result{}, err
	}

	ex := table.ExtractNumeric(f.Matrix, col)
	result := outlier.Detect(ex.Values, method, zThreshold)
	return result.WithRows(ex.Rows), nil
}

// RemoveOutlierRows forks the file's matrix without the rows holding
// detected outliers and installs the new matrix, bumping the version.
func (s *Service) RemoveOutlierRows(ctx context.Context, id core.FileID, col int, method outlier.Method, zThreshold float64) (*table.DataFile, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ex := table.ExtractNumeric(f.Matrix, col)
	result := outlier.Detect(ex.Values, method, zThreshold).WithRows(ex.Rows)

	drop := make(map[int]bool, len(result.MatrixRows))
	for _, row := range result.MatrixRows {
		drop[row] = true
	}

	next := table.Matrix{append([]string(nil), f.Matrix.Headers()...)}
	for row := 1; row < len(f.Matrix); row++ {
		if !drop[row] {
			next = append(next, append([]string(nil), f.Matrix[row]...))
		}
	}

	return s.replaceMatrix(ctx, f, next)
}

// ImputeMissing applies a missing-value method and installs the
// resulting matrix, bumping the version.
func (s *Service) ImputeMissing(ctx context.Context, id core.FileID, method impute.Method, replacement string) (*table.DataFile, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := impute.Apply(f.Matrix, method, replacement)
	if err != nil {
		return nil, fmt.Errorf("impute failed: %w", err)
	}

	return s.replaceMatrix(ctx, f, next)
}

func (s *Service) replaceMatrix(ctx context.Context, f *table.DataFile, next table.Matrix) (*table.DataFile, error) {
	f.SetMatrix(next)
	f.Validation = table.Validate(next)
	if err := s.repository.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to update file record: %w", err)
	}
	s.pruneCache(f.ID)
	s.log.Info("Replaced matrix of file %s (version %d, %d rows)", f.ID, f.Version, f.RowCount)
	return f, nil
}

// pruneCache drops stale summaries for a file. Version keying already
// prevents stale reads; pruning keeps the map from growing unbounded.
func (s *Service) pruneCache(id core.FileID) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	for key := range s.summaryCache {
		if key.fileID == id {
			delete(s.summaryCache, key)
		}
	}
}

// Compare resolves the selections and aligns same-named columns across
// the selected files.
func (s *Service) Compare(ctx context.Context, selections []Selection) ([]compare.Result, error) {
	datasets := make([]compare.Dataset, 0, len(selections))
	for _, sel := range selections {
		f, err := s.repository.GetByID(ctx, sel.FileID)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, compare.Dataset{
			ID:      f.ID,
			Name:    f.Name,
			Matrix:  f.Matrix,
			Columns: sel.Columns,
		})
	}
	return compare.Compare(ctx, datasets), nil
}

// StatsEntries builds export entries for the selected columns of a file.
func (s *Service) StatsEntries(ctx context.Context, id core.FileID, columns []int) ([]export.Entry, error) {
	f, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	headers := f.Matrix.Headers()
	entries := make([]export.Entry, 0, len(columns))
	for _, col := range columns {
		if col < 0 || col >= len(headers) {
			continue
		}
		summary, err := s.ColumnSummary(ctx, id, col)
		if err != nil {
			return nil, err
		}
		entries = append(entries, export.Entry{
			ColumnName: headers[col],
			FileName:   f.Name,
			Summary:    summary,
		})
	}
	return entries, nil
}

// validateUpload rejects uploads the decoder cannot handle.
func validateUpload(upload Upload) error {
	if upload.File == nil {
		return fmt.Errorf("no file provided")
	}
	if upload.Filename == "" {
		return fmt.Errorf("no filename provided")
	}

	switch strings.ToLower(filepath.Ext(upload.Filename)) {
	case ".csv", ".xlsx":
		return nil
	default:
		return fmt.Errorf("%w: %s", core.ErrUnsupportedFormat, filepath.Ext(upload.Filename))
	}
}

// resolveMimeType fills in a mime type from the extension when the
// client did not supply one.
func resolveMimeType(filename, mimeType string) string {
	if mimeType != "" {
		return mimeType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
