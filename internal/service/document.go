package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/dto"
	"docvault/internal/mapper"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/query"
	"docvault/internal/repository"
	"docvault/internal/storage"
	"docvault/internal/validation"
)

// UploadRequest is an already validated upload.
type UploadRequest struct {
	Owner string
	Name  string
	Tags  []string
	Body  io.Reader
	Size  int64
}

// ReconcileOptions scope an orphan sweep.
type ReconcileOptions struct {
	Prefix string
	// MinAge protects objects that may belong to an upload still in flight.
	MinAge time.Duration
	DryRun bool
}

// ReconcileReport summarizes an orphan sweep.
type ReconcileReport struct {
	Scanned    int      `json:"scanned"`
	Skipped    int      `json:"skipped"`
	Referenced int      `json:"referenced"`
	Orphans    []string `json:"orphans"`
	// Changed counts objects rewritten or claimed by a record after they were listed.
	Changed int `json:"changed"`
	Removed int `json:"removed"`
	Failed  int `json:"failed"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload stores the file, then records the document with its tags.
	Upload(ctx context.Context, req UploadRequest) (*model.Document, error)

	// Search returns one page of documents matching the optional filters, newest first.
	Search(ctx context.Context, filters dto.SearchFilters, page, size int) (*dto.SearchResponse, error)

	// DownloadURL returns a presigned URL for the document's stored object.
	DownloadURL(ctx context.Context, id string) (*dto.DownloadURLResponse, error)

	// ReconcileOrphans removes stored objects that no document references.
	ReconcileOrphans(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error)
}

// Deps are the collaborators of the document service.
type Deps struct {
	Gateway   *storage.Gateway
	Repo      repository.DocumentRepository
	Validator *validation.Validator
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	gateway   *storage.Gateway
	repo      repository.DocumentRepository
	validator *validation.Validator
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d Deps) DocumentService {
	s := &documentService{
		gateway:   d.Gateway,
		repo:      d.Repo,
		validator: d.Validator,
		log:       d.Logger,
		metrics:   d.Metrics,
		now:       d.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.log = s.log.With(zap.String("component", "document_service"))
	return s
}

// EnsurePDFExtension trims name and appends ".pdf" unless it already ends with it (any case).
func EnsurePDFExtension(name string) string {
	name = strings.TrimSpace(name)
	if model.HasPDFExtension(name) {
		return name
	}
	return name + model.PDFExtension
}

// StoragePath derives the object key for a document.
func StoragePath(owner, name string) (string, error) {
	if strings.TrimSpace(owner) == "" || strings.TrimSpace(name) == "" {
		return "", apperr.InvalidInput("user and file name cannot be empty")
	}
	return owner + "/" + name, nil
}

func (s *documentService) Upload(ctx context.Context, req UploadRequest) (*model.Document, error) {
	if req.Body == nil {
		return nil, apperr.InvalidInput("file is required and cannot be empty")
	}
	name := strings.TrimSpace(req.Name)
	if name != "" {
		name = EnsurePDFExtension(name)
	}
	path, err := StoragePath(req.Owner, name)
	if err != nil {
		s.metrics.Upload(metrics.ResultInvalidInput)
		return nil, err
	}

	log := s.log.With(zap.String("user", req.Owner), zap.String("storage_path", path))

	if err := s.gateway.Store(ctx, req.Body, path, model.PDFContentType, req.Size); err != nil {
		s.metrics.Upload(metrics.ResultStorageError)
		log.Error("upload_storage_failed", zap.Error(err))
		return nil, apperr.UploadFailure("failed to upload document", err)
	}

	doc := &model.Document{
		Owner:       req.Owner,
		Name:        name,
		StoragePath: path,
		Size:        req.Size,
		ContentType: model.PDFContentType,
	}
	for _, t := range req.Tags {
		doc.AddTag(t)
	}

	saved, err := s.repo.Save(ctx, doc)
	if err != nil {
		// The object stays; the path may be shared with an earlier record.
		s.metrics.Upload(metrics.ResultPersistError)
		s.metrics.OrphanCandidate()
		log.Warn("upload_orphan_candidate", zap.Error(err))
		return nil, apperr.UploadFailure("failed to upload document", err)
	}

	s.metrics.Upload(metrics.ResultSuccess)
	log.Info("document_uploaded",
		zap.String("document_id", saved.ID),
		zap.Int64("size", saved.Size),
		zap.Strings("tags", saved.TagNames()),
	)
	return saved, nil
}

func (s *documentService) Search(ctx context.Context, filters dto.SearchFilters, page, size int) (*dto.SearchResponse, error) {
	if err := s.validator.ValidatePagination(page, size); err != nil {
		return nil, err
	}

	pred := query.Build(&query.Criteria{
		User:         filters.User,
		NameContains: filters.Name,
		Tags:         filters.Tags,
	})
	res, err := s.repo.FindPage(ctx, pred, repository.PageRequest{Page: page, Size: size})
	if err != nil {
		return nil, apperr.Unexpected("failed to search documents", err)
	}

	docs, err := mapper.ToDTOs(res.Items)
	if err != nil {
		return nil, err
	}

	s.metrics.Search()
	s.log.Debug("documents_searched",
		zap.Int("conditions", len(pred.Conditions)),
		zap.Int("page", page),
		zap.Int("size", size),
		zap.Int64("total", res.TotalItems),
	)
	return &dto.SearchResponse{
		Metadata: dto.Metadata{
			CurrentPage:  page,
			ItemsPerPage: size,
			CurrentItems: res.CurrentItems(),
			TotalPages:   res.TotalPages(),
			TotalItems:   res.TotalItems,
		},
		Documents: docs,
	}, nil
}

func (s *documentService) DownloadURL(ctx context.Context, id string) (*dto.DownloadURLResponse, error) {
	if err := s.validator.ValidateDocumentID(id); err != nil {
		s.metrics.Download(metrics.ResultInvalidInput)
		return nil, err
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Download(metrics.ResultNotFound)
			return nil, apperr.NotFound(fmt.Sprintf("document not found with id: %s", id))
		}
		s.metrics.Download(metrics.ResultUnexpectedErr)
		return nil, apperr.Unexpected("failed to load document", err)
	}

	u, err := s.gateway.PresignedDownloadURL(ctx, doc.StoragePath)
	if err != nil {
		s.metrics.Download(metrics.ResultStorageError)
		s.log.Error("presign_failed", zap.String("document_id", id), zap.Error(err))
		return nil, err
	}

	s.metrics.Download(metrics.ResultSuccess)
	return &dto.DownloadURLResponse{URL: u}, nil
}

func (s *documentService) ReconcileOrphans(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	objs, err := s.gateway.List(ctx, opts.Prefix)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-opts.MinAge)
	report := &ReconcileReport{Orphans: make([]string, 0)}
	for _, obj := range objs {
		report.Scanned++
		if obj.LastModified.After(cutoff) {
			report.Skipped++
			continue
		}
		referenced, err := s.repo.ExistsByStoragePath(ctx, obj.Key)
		if err != nil {
			return report, apperr.Unexpected("failed to check object reference", err)
		}
		if referenced {
			report.Referenced++
			continue
		}

		if opts.DryRun {
			report.Orphans = append(report.Orphans, obj.Key)
			continue
		}

		orphan, err := s.confirmOrphan(ctx, obj)
		if err != nil {
			report.Orphans = append(report.Orphans, obj.Key)
			report.Failed++
			s.log.Warn("orphan_recheck_failed", zap.String("storage_path", obj.Key), zap.Error(err))
			continue
		}
		if !orphan {
			report.Changed++
			continue
		}
		report.Orphans = append(report.Orphans, obj.Key)
		if err := s.gateway.Remove(ctx, obj.Key); err != nil {
			report.Failed++
			s.log.Warn("orphan_remove_failed", zap.String("storage_path", obj.Key), zap.Error(err))
			continue
		}
		report.Removed++
		s.metrics.OrphanRemoved()
	}

	s.log.Info("orphans_reconciled",
		zap.String("prefix", opts.Prefix),
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("changed", report.Changed),
		zap.Int("removed", report.Removed),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// confirmOrphan re-reads the object and its reference right before deletion. A re-upload to the
// same path since listing either changes the object or commits a record that references it.
// Only the gap between this check and the delete remains; MinAge keeps sweeps away from paths
// that were written recently.
func (s *documentService) confirmOrphan(ctx context.Context, listed storage.ObjectInfo) (bool, error) {
	current, err := s.gateway.Stat(ctx, listed.Key)
	if err != nil {
		return false, err
	}
	if current.ETag != listed.ETag || !current.LastModified.Equal(listed.LastModified) {
		return false, nil
	}
	referenced, err := s.repo.ExistsByStoragePath(ctx, listed.Key)
	if err != nil {
		return false, apperr.Unexpected("failed to check object reference", err)
	}
	return !referenced, nil
}
