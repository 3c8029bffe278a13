package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-layout/internal/config"
	"github.com/a3tai/mcp-pdf-layout/internal/descriptions"
	"github.com/a3tai/mcp-pdf-layout/internal/layout"
	"github.com/a3tai/mcp-pdf-layout/internal/pdf"
	"github.com/a3tai/mcp-pdf-layout/internal/render"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *slog.Logger

	stdin  io.Reader
	stdout io.Writer
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server's logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStdio replaces the streams used in stdio mode
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(s *Server) {
		s.stdin = in
		s.stdout = out
	}
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool list is fixed
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     slog.New(slog.DiscardHandler),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pathParam := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF file, absolute or relative to the configured directory"),
	)

	reconstructTool := mcp.NewTool(
		"pdf_reconstruct_layout",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_reconstruct_layout")),
		pathParam,
		mcp.WithString("format",
			mcp.Description("Output format: markdown (default), json or yaml"),
			mcp.Enum(string(render.FormatMarkdown), string(render.FormatJSON), string(render.FormatYAML)),
		),
	)
	s.mcpServer.AddTool(reconstructTool, s.handlePDFReconstructLayout)

	assessTool := mcp.NewTool(
		"pdf_assess_layout",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_assess_layout")),
		pathParam,
	)
	s.mcpServer.AddTool(assessTool, s.handlePDFAssessLayout)

	validateTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		pathParam,
	)
	s.mcpServer.AddTool(validateTool, s.handlePDFValidateFile)

	serverInfoTool := mcp.NewTool(
		"pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handlePDFServerInfo)
}

// Handler functions
func (s *Server) handlePDFReconstructLayout(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := render.ParseFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFReconstructLayout(ctx, pdf.PDFReconstructLayoutRequest{Path: path})
	if err != nil {
		s.logger.Debug("reconstruct failed", "path", path, "error", err)
		return mcp.NewToolResultError(formatReconstructError(err)), nil
	}

	var b strings.Builder
	if format == render.FormatMarkdown {
		b.WriteString(formatReconstructSummary(result))
		err = render.Layout(&b, format, result.Layout)
	} else {
		err = render.Value(&b, format, result)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handlePDFAssessLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFAssessLayout(ctx, pdf.PDFAssessLayoutRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatAssessResult(result)), nil
}

func (s *Server) handlePDFValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages, %d bytes)",
			result.Path, result.Pages, result.Size)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.PDFServerInfo(ctx, pdf.PDFServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// Formatting functions

func formatReconstructError(err error) string {
	if reason, ok := layout.RejectionReason(err); ok {
		return fmt.Sprintf("Layout reconstruction refused (%s): %v\n"+
			"Use pdf_assess_layout for the measurements behind this verdict.", reason, err)
	}
	return err.Error()
}

func formatReconstructSummary(result *pdf.PDFReconstructLayoutResult) string {
	text := fmt.Sprintf("Reconstructed layout of %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d, tables: %d", result.PageCount, result.TableCount)
	if len(result.Degraded) > 0 {
		pages := make([]string, len(result.Degraded))
		for i, p := range result.Degraded {
			pages[i] = fmt.Sprint(p)
		}
		text += fmt.Sprintf(", degraded pages: %s", strings.Join(pages, ", "))
	}
	if len(result.Layout.Headers) > 0 || len(result.Layout.Footers) > 0 {
		text += fmt.Sprintf("\nRemoved %d header and %d footer text(s)",
			len(result.Layout.Headers), len(result.Layout.Footers))
	}
	return text + "\n\n"
}

func formatAssessResult(result *pdf.PDFAssessLayoutResult) string {
	a := result.Assessment

	var text string
	if result.Accepted {
		text = fmt.Sprintf("%s is suitable for layout reconstruction\n", result.Path)
	} else {
		text = fmt.Sprintf("%s is not suitable for layout reconstruction: %s\n", result.Path, a.Reason)
		if result.Message != "" {
			text += result.Message + "\n"
		}
	}

	text += fmt.Sprintf("\nPages: %d\nText fragments: %d\n", a.PageCount, a.FragmentCount)
	if !a.MeasurementsAvailable {
		return text + "Page measurements: unavailable\n"
	}
	text += fmt.Sprintf("Image coverage: %.1f%%\n", a.ImageRatio*100)
	text += fmt.Sprintf("Text coverage: %.1f%%\n", a.TextRatio*100)
	text += fmt.Sprintf("Figures: %d\n", a.FigureCount)
	if a.LargestBucketRatio > 0 {
		text += fmt.Sprintf("Largest left-edge cluster: %.1f%% of fragments\n", a.LargestBucketRatio*100)
	}
	return text
}

func formatServerInfoResult(result *pdf.PDFServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	lc := result.Layout
	text += "Layout Thresholds:\n"
	text += fmt.Sprintf("  column tolerance %g pt, font size tolerance %g pt, vertical gap %g pt\n",
		lc.ColumnTolerance, lc.FontSizeTolerance, lc.VerticalGapThreshold)
	text += fmt.Sprintf("  header/footer band %.0f%% on %.0f%% of pages, axis %s, %d workers\n\n",
		lc.HeaderFooterBandRatio*100, lc.HeaderFooterMinPages*100, lc.Axis, lc.Workers)

	if dc := result.DocumentCache; dc.Capacity > 0 {
		text += fmt.Sprintf("Document Cache: %d/%d documents, %d hits, %d misses\n\n",
			dc.Size, dc.Capacity, dc.Hits, dc.Misses)
	}

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		if result.Truncated {
			text += "   (listing truncated)\n"
		}
		text += "\n"
	} else {
		text += "Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance
	return text
}

// Run starts the MCP server in the configured mode and blocks until ctx is
// done or the transport fails
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over the configured streams
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode", "directory", s.config.PDFDirectory)

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server in server mode", "address", addr, "directory", s.config.PDFDirectory)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown failed", "error", err)
		}
		return ctx.Err()
	}
}
