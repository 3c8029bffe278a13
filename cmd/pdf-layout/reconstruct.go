package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-pdf-layout/internal/pdf"
	"github.com/a3tai/mcp-pdf-layout/internal/render"
)

func newReconstructCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconstruct <file.pdf>...",
		Short: "Rebuild the tables of one or more PDFs",
		Long: `Reconstruct prints one table per page, or the page's paragraphs when no
grid forms. Headers and footers repeated across pages are removed. Documents
the gate refuses are reported on stderr with the reason and make the command
fail once every file has been processed.`,
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
				func(ctx context.Context, path string) (*pdf.PDFReconstructLayoutResult, error) {
					return service.PDFReconstructLayout(ctx, pdf.PDFReconstructLayoutRequest{Path: path})
				})

			err = writeOutcomes(a, format, outcomes, func(w io.Writer, r *pdf.PDFReconstructLayoutResult) error {
				return render.Layout(w, render.FormatMarkdown, r.Layout)
			})
			if err != nil {
				return err
			}
			return failures(outcomes)
		},
	}
}

// writeOutcomes reports failures on stderr and writes the successful
// results to stdout. Markdown output gets a heading per file when there are
// several; JSON and YAML get a list.
func writeOutcomes[T any](a *app, format render.Format, outcomes []outcome[T], markdown func(io.Writer, T) error) error {
	results := make([]T, 0, len(outcomes))
	var paths []string
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(a.errOut, "%s: %v\n", o.Path, o.Err)
			continue
		}
		results = append(results, o.Result)
		paths = append(paths, o.Path)
	}
	if len(results) == 0 {
		return nil
	}

	if format != render.FormatMarkdown {
		if len(outcomes) == 1 {
			return render.Value(a.out, format, results[0])
		}
		return render.Value(a.out, format, results)
	}

	for i, r := range results {
		if len(outcomes) > 1 {
			fmt.Fprintf(a.out, "# %s\n\n", paths[i])
		}
		if err := markdown(a.out, r); err != nil {
			return err
		}
	}
	return nil
}
