// Package main is the pdf-layout command line tool. It rebuilds the tables
// of text-based PDFs outside of an MCP session, using the same engine and
// thresholds as the server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-pdf-layout/internal/config"
	"github.com/a3tai/mcp-pdf-layout/internal/layout"
	"github.com/a3tai/mcp-pdf-layout/internal/pdf"
	"github.com/a3tai/mcp-pdf-layout/internal/render"
)

// version is set at build time via ldflags.
var version = "dev"

// app carries the state shared by the subcommands of one invocation
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

// newRootCmd builds the command tree writing to out and errOut
func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
		logger: slog.New(slog.DiscardHandler),
	}

	root := &cobra.Command{
		Use:   "pdf-layout",
		Short: "Rebuild tables from text-based PDFs",
		Long: `pdf-layout reconstructs the tabular layout of born-digital PDFs from the
position of their text. Columns are clustered from left edges, rows from
baselines and font sizes, and cells that wrap onto several lines are joined.

Scanned, image-heavy and form-like documents are refused with a reason; use
'pdf-layout assess' to see the measurements behind the verdict.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default: ./pdf-layout.yaml or ~/.config/pdf-layout/config.yaml)")
	flags.String("dir", ".", "directory the PDF paths are confined to")
	flags.StringP("format", "f", string(render.FormatMarkdown), "output format: markdown, json or yaml")
	flags.Int64("maxfilesize", config.DefaultMaxFileSize, "maximum PDF file size in bytes")
	flags.Int("jobs", runtime.GOMAXPROCS(0), "files processed in parallel")
	flags.String("loglevel", "warn", "log level (debug, info, warn, error)")
	config.AddLayoutFlags(flags, layout.DefaultConfig())

	for _, name := range []string{"dir", "format", "maxfilesize", "jobs", "loglevel"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}
	_ = config.BindLayoutFlags(a.v, flags)

	root.AddCommand(
		newReconstructCmd(a),
		newAssessCmd(a),
		newValidateCmd(a),
		newVersionCmd(a),
	)
	return root
}

// initConfig reads the config file and environment into the app's viper
// instance and sets up logging
func (a *app) initConfig(cmd *cobra.Command) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("pdf-layout")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".config", "pdf-layout"))
		}
	}
	config.ConfigureEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("cannot read config file: %w", err)
		}
	}

	level, err := config.ParseLogLevel(a.v.GetString("loglevel"))
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Info("using config file", "path", used)
	}
	return nil
}

// format returns the selected output format
func (a *app) format() (render.Format, error) {
	return render.ParseFormat(a.v.GetString("format"))
}

// service builds a PDF service from the effective settings
func (a *app) service() (*pdf.Service, error) {
	lc, err := config.LayoutFromViper(a.v)
	if err != nil {
		return nil, fmt.Errorf("invalid layout configuration: %w", err)
	}
	dir, err := filepath.Abs(a.v.GetString("dir"))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve directory: %w", err)
	}
	return pdf.NewService(a.v.GetInt64("maxfilesize"), dir, lc, pdf.WithLogger(a.logger))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
