package pdf

import "github.com/a3tai/mcp-pdf-layout/internal/layout"

// FileInfo represents basic information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFValidateFileResult represents the result of PDF validation
type PDFValidateFileResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Pages   int    `json:"pages,omitempty"`
	Size    int64  `json:"size,omitempty"`
}

// PDFReconstructLayoutRequest represents a request to rebuild the tabular
// layout of a PDF
type PDFReconstructLayoutRequest struct {
	Path string `json:"path"`
}

// PDFReconstructLayoutResult carries the reconstructed layout
type PDFReconstructLayoutResult struct {
	Path       string                 `json:"path" yaml:"path"`
	Layout     *layout.DocumentLayout `json:"layout" yaml:"layout"`
	PageCount  int                    `json:"page_count" yaml:"page_count"`
	TableCount int                    `json:"table_count" yaml:"table_count"`
	Degraded   []int                  `json:"degraded_pages,omitempty" yaml:"degraded_pages,omitempty"`
	Assessment layout.Assessment      `json:"assessment" yaml:"assessment"`
}

// PDFAssessLayoutRequest represents a request to run only the layout gate
type PDFAssessLayoutRequest struct {
	Path string `json:"path"`
}

// PDFAssessLayoutResult reports whether a PDF is suitable for layout
// reconstruction and why
type PDFAssessLayoutResult struct {
	Path       string            `json:"path" yaml:"path"`
	Accepted   bool              `json:"accepted" yaml:"accepted"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	Assessment layout.Assessment `json:"assessment" yaml:"assessment"`
}

// PDFServerInfoRequest represents a request to get server information and capabilities
type PDFServerInfoRequest struct{}

// PDFServerInfoResult represents server information and usage guidance
type PDFServerInfoResult struct {
	ServerName        string        `json:"server_name"`
	Version           string        `json:"version"`
	DefaultDirectory  string        `json:"default_directory"`
	MaxFileSize       int64         `json:"max_file_size"`
	Layout            layout.Config `json:"layout"`
	AvailableTools    []ToolInfo    `json:"available_tools"`
	DirectoryContents []FileInfo    `json:"directory_contents"`
	Truncated         bool          `json:"truncated,omitempty"`
	DocumentCache     CacheStats    `json:"document_cache"`
	UsageGuidance     string        `json:"usage_guidance"`
}

// CacheStats describes the extracted-document cache
type CacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}
