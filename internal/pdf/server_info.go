package pdf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-layout/internal/descriptions"
)

// errScanLimit stops a directory walk once a limit is reached
var errScanLimit = errors.New("scan limit reached")

// directoryCache keeps recent directory listings for a fixed TTL
type directoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedListing
}

type cachedListing struct {
	files     []FileInfo
	truncated bool
	at        time.Time
}

func newDirectoryCache(ttl time.Duration) *directoryCache {
	return &directoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedListing),
	}
}

func (c *directoryCache) get(dir string) (cachedListing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[dir]
	if !ok || c.now().Sub(entry.at) > c.ttl {
		delete(c.entries, dir)
		return cachedListing{}, false
	}
	return entry, true
}

func (c *directoryCache) set(dir string, files []FileInfo, truncated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dir] = cachedListing{files: files, truncated: truncated, at: c.now()}
}

// directoryScanner lists PDF files below a root within depth, count and
// time limits. Hidden entries and symlinks are skipped.
type directoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

func (s directoryScanner) scan(ctx context.Context, root string) ([]FileInfo, bool, error) {
	start := time.Now()
	files := []FileInfo{}
	truncated := false

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		if path == root {
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			if strings.Count(rel, string(filepath.Separator))+1 >= s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // vanished between listing and stat
		}
		files = append(files, FileInfo{
			Path:         path,
			Name:         d.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})

		if len(files) >= s.fileLimit || time.Since(start) > s.timeLimit {
			truncated = true
			return errScanLimit
		}
		return nil
	})
	if errors.Is(err, errScanLimit) {
		err = nil
	}
	return files, truncated, err
}

// PDFServerInfo answers pdf_server_info requests
type PDFServerInfo struct {
	service *Service
	cache   *directoryCache
	scanner directoryScanner
}

// NewPDFServerInfo creates a server info handler with a five minute listing
// cache, scanning at most 5 levels, 100 files and 3 seconds
func NewPDFServerInfo(service *Service) *PDFServerInfo {
	return &PDFServerInfo{
		service: service,
		cache:   newDirectoryCache(5 * time.Minute),
		scanner: directoryScanner{maxDepth: 5, fileLimit: 100, timeLimit: 3 * time.Second},
	}
}

// GetServerInfo describes the server and lists the configured directory
func (p *PDFServerInfo) GetServerInfo(ctx context.Context, serverName, version string) (*PDFServerInfoResult, error) {
	dir := p.service.Directory()

	listing, ok := p.cache.get(dir)
	if !ok {
		files, truncated, err := p.scanner.scan(ctx, dir)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			files, truncated = []FileInfo{}, false
		}
		p.cache.set(dir, files, truncated)
		listing = cachedListing{files: files, truncated: truncated}
	}

	return &PDFServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		MaxFileSize:       p.service.GetMaxFileSize(),
		Layout:            p.service.LayoutConfig(),
		AvailableTools:    availableTools(),
		DirectoryContents: listing.files,
		Truncated:         listing.truncated,
		DocumentCache:     p.service.documents.stats(),
		UsageGuidance:     p.usageGuidance(),
	}, nil
}

func availableTools() []ToolInfo {
	const pathParam = "path (required): path to the PDF file, absolute or relative to the configured directory"
	return []ToolInfo{
		{
			Name:        "pdf_reconstruct_layout",
			Description: descriptions.GetToolDescription("pdf_reconstruct_layout"),
			Parameters:  pathParam + "; format (optional): markdown, json or yaml",
		},
		{
			Name:        "pdf_assess_layout",
			Description: descriptions.GetToolDescription("pdf_assess_layout"),
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Parameters:  "none",
		},
	}
}

func (p *PDFServerInfo) usageGuidance() string {
	maxFileSizeMB := p.service.GetMaxFileSize() / (1024 * 1024)
	cfg := p.service.LayoutConfig()

	return fmt.Sprintf(`PDF Layout Server Usage Guide:

1. DISCOVER: 'pdf_server_info' lists the PDFs in the configured directory.
2. VALIDATE: 'pdf_validate_file' checks a file opens and reports its pages.
3. ASSESS: 'pdf_assess_layout' tells whether a file suits layout reconstruction.
   Scanned, image-heavy (> %.0f%% image area), text-sparse (< %.0f%% text area)
   and form-like files are refused with a reason.
4. RECONSTRUCT: 'pdf_reconstruct_layout' returns one grid per page, or ordered
   paragraphs flagged as degraded when no grid forms.

NOTES:
- Files up to %dMB are accepted.
- Text repeated in the top or bottom %.0f%% of at least %.0f%% of pages is
  treated as a header or footer and removed from the grids.
- Refused files need a document-intelligence conversion; this server does no OCR.`,
		cfg.Gate.MaxImageRatio*100, cfg.Gate.MinTextRatio*100, maxFileSizeMB,
		cfg.HeaderFooterBandRatio*100, cfg.HeaderFooterMinPages*100)
}
