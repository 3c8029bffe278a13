package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-layout/internal/pdf"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.pdf>...",
		Short: "Check that PDFs open and report their page counts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := a.format()
			if err != nil {
				return err
			}
			service, err := a.service()
			if err != nil {
				return err
			}

			outcomes := forEachFile(cmd.Context(), args, a.v.GetInt("jobs"),
				func(_ context.Context, path string) (*pdf.PDFValidateFileResult, error) {
					result, err := service.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
					if err == nil && !result.Valid {
						err = errors.New(result.Message)
					}
					return result, err
				})

			if err := writeOutcomes(a, format, outcomes, writeValidation); err != nil {
				return err
			}
			return failures(outcomes)
		},
	}
}

func writeValidation(w io.Writer, r *pdf.PDFValidateFileResult) error {
	_, err := fmt.Fprintf(w, "%s: valid (%d pages, %d bytes)\n", r.Path, r.Pages, r.Size)
	return err
}
