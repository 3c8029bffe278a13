package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-layout/internal/pdf"
)

func newAssessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assess <file.pdf>...",
		Short: "Tell whether PDFs suit layout reconstruction",
		Long: `Assess runs only the gate. A refused document is a verdict, not an error:
the command fails only when a file cannot be opened or read.`,
		Args: cobra.MinimumNArgs(1),
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
				func(ctx context.Context, path string) (*pdf.PDFAssessLayoutResult, error) {
					return service.PDFAssessLayout(ctx, pdf.PDFAssessLayoutRequest{Path: path})
				})

			if err := writeOutcomes(a, format, outcomes, writeAssessment); err != nil {
				return err
			}
			return failures(outcomes)
		},
	}
}

func writeAssessment(w io.Writer, r *pdf.PDFAssessLayoutResult) error {
	m := r.Assessment
	verdict := "accepted"
	if !r.Accepted {
		verdict = "rejected: " + m.Reason
	}
	_, err := fmt.Fprintf(w, "%s: %s (pages=%d fragments=%d image=%.1f%% text=%.1f%% figures=%d)\n",
		r.Path, verdict, m.PageCount, m.FragmentCount, m.ImageRatio*100, m.TextRatio*100, m.FigureCount)
	return err
}
