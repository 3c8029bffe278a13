package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/a3tai/mcp-pdf-layout/internal/layout"
	"github.com/a3tai/mcp-pdf-layout/internal/pdf/extraction"
	"github.com/a3tai/mcp-pdf-layout/internal/pdf/security"
)

// Service handles PDF file operations by orchestrating extraction, the
// layout engine and file validation
type Service struct {
	maxFileSize int64
	validator   *Validator
	extractor   *extraction.Extractor
	engine      *layout.Engine
	guard       *security.PathGuard
	info        *PDFServerInfo
	documents   *documentCache
	logger      *slog.Logger
}

// ServiceOption customizes a Service
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger     *slog.Logger
	extraction *extraction.Config
	cacheSize  int
}

// DefaultDocumentCacheSize is the number of extracted documents a service
// keeps unless WithDocumentCache says otherwise
const DefaultDocumentCacheSize = 16

// WithLogger sets the logger used by the service and its components
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithExtractionConfig overrides the extraction settings. The axis is
// always taken from the layout configuration.
func WithExtractionConfig(cfg extraction.Config) ServiceOption {
	return func(o *serviceOptions) {
		o.extraction = &cfg
	}
}

// WithDocumentCache sets how many extracted documents are kept. Zero
// disables the cache.
func WithDocumentCache(size int) ServiceOption {
	return func(o *serviceOptions) {
		o.cacheSize = size
	}
}

// NewService creates a new PDF service with all components
func NewService(maxFileSize int64, configuredDirectory string, layoutConfig layout.Config, opts ...ServiceOption) (*Service, error) {
	o := serviceOptions{cacheSize: DefaultDocumentCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	guard, err := security.NewPathGuard(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	engine, err := layout.NewEngine(layoutConfig, layout.WithLogger(o.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create layout engine: %w", err)
	}

	extractionConfig := extraction.DefaultConfig()
	if o.extraction != nil {
		extractionConfig = *o.extraction
	}
	extractionConfig.Axis = engine.Config().Axis
	if err := extractionConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}

	s := &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		extractor:   extraction.NewExtractorWithConfig(extractionConfig, o.logger),
		engine:      engine,
		guard:       guard,
		documents:   newDocumentCache(o.cacheSize),
		logger:      o.logger,
	}
	s.info = NewPDFServerInfo(s)
	return s, nil
}

// PDFReconstructLayout rebuilds the table grid, or paragraph fallback, of
// every page. A document the gate refuses is returned as an error matching
// layout.ErrDocumentRejected.
func (s *Service) PDFReconstructLayout(ctx context.Context, req PDFReconstructLayoutRequest) (*PDFReconstructLayoutResult, error) {
	path, doc, err := s.load(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Reconstruct(ctx, *doc)
	if err != nil {
		if reason, ok := layout.RejectionReason(err); ok {
			s.logger.Info("document rejected", "path", path, "reason", reason)
		}
		return nil, err
	}

	out := &PDFReconstructLayoutResult{
		Path:       path,
		Layout:     result,
		PageCount:  len(result.Pages),
		TableCount: result.TableCount(),
		Assessment: s.engine.Assess(*doc),
	}
	for _, page := range result.Pages {
		if page.Degraded {
			out.Degraded = append(out.Degraded, page.PageNumber)
		}
	}

	s.logger.Info("layout reconstructed",
		"path", path,
		"pages", out.PageCount,
		"tables", out.TableCount,
		"degraded", len(out.Degraded))
	return out, nil
}

// PDFAssessLayout runs only the gate and reports its verdict
func (s *Service) PDFAssessLayout(ctx context.Context, req PDFAssessLayoutRequest) (*PDFAssessLayoutResult, error) {
	path, doc, err := s.load(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	assessment := s.engine.Assess(*doc)
	result := &PDFAssessLayoutResult{
		Path:       path,
		Accepted:   !assessment.Rejected,
		Assessment: assessment,
	}
	if err := assessment.Err(); err != nil {
		result.Message = err.Error()
	}
	return result, nil
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	path, err := s.guard.Resolve(req.Path)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// PDFServerInfo returns server information and usage guidance
func (s *Service) PDFServerInfo(ctx context.Context, _ PDFServerInfoRequest, serverName, version string) (*PDFServerInfoResult, error) {
	return s.info.GetServerInfo(ctx, serverName, version)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// Directory returns the configured directory
func (s *Service) Directory() string {
	return s.guard.Root()
}

// LayoutConfig returns the effective engine thresholds
func (s *Service) LayoutConfig() layout.Config {
	return s.engine.Config()
}

// load confines, validates and extracts the file
func (s *Service) load(ctx context.Context, requested string) (string, *layout.Document, error) {
	path, err := s.guard.Resolve(requested)
	if err != nil {
		return "", nil, fmt.Errorf("security validation failed: %w", err)
	}
	info, err := s.validator.checkFile(path)
	if err != nil {
		return "", nil, err
	}

	key := docKey{path: path, size: info.Size(), modTime: info.ModTime()}
	if doc, ok := s.documents.get(key); ok {
		s.logger.Debug("document cache hit", "path", path)
		return path, doc, nil
	}

	doc, err := s.extractor.Extract(ctx, path)
	if err != nil {
		if errors.Is(err, layout.ErrExtractionFailed) {
			s.logger.Error("extraction failed", "path", path, "error", err)
		}
		return "", nil, err
	}
	s.documents.put(key, doc)
	return path, doc, nil
}
