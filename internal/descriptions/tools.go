package descriptions

import "sort"

// Tool descriptions shown to MCP clients, with examples and workflows

const (
	PDFReconstructLayoutDescription = `Rebuild the tables of a text-based PDF as grids, page by page.

**When to use:** The PDF is a born-digital report, invoice, price list or statement whose content is laid out in rows and columns, and you need the cell values rather than a flat stream of text.

**Why it's useful:** Clusters text fragments into columns and rows, joins cells that wrap onto several lines, and drops headers and footers repeated across pages. Pages where no grid forms are returned as ordered paragraphs and flagged as degraded.

**Examples:**
• Price list to table: "Reconstruct the table in supplier-prices.pdf"
• Statement lines: "Get the transaction grid from statement-2024-03.pdf as JSON"
• Multi-page report: "Rebuild every table in quarterly-report.pdf as Markdown"

**Common workflows:**
1. Tabular extraction: pdf_validate_file → pdf_reconstruct_layout → read grid rows
2. Routing: pdf_assess_layout → if rejected, use a document-intelligence conversion instead

**Best practices:** Scanned, image-heavy and form-like PDFs are refused with a reason rather than converted badly. Choose format "json" or "yaml" when cell coordinates are needed.`

	PDFAssessLayoutDescription = `Decide whether a PDF is suitable for heuristic layout reconstruction.

**When to use:** Before converting unknown PDFs in bulk, or to explain why pdf_reconstruct_layout refused a file.

**Why it's useful:** Reports the measurements behind the verdict: image and text coverage of the page area, figure count, and how strongly fragment left edges cluster (a sign of a form).

**Examples:**
• Triage: "Check whether scan-0042.pdf can be converted without OCR"
• Explain a refusal: "Why was brochure.pdf rejected?"

**Common workflows:**
1. Batch triage: pdf_assess_layout on each file → reconstruct accepted files → route the rest elsewhere

**Best practices:** Measurement failures never block a file; measurements_available is false when the verdict was reached without them.`

	PDFValidateFileDescription = `Verify PDF file integrity and readability before processing.

**When to use:** Before attempting to reconstruct any PDF file, especially in automated workflows or when handling user uploads.

**Why it's useful:** Prevents processing errors, identifies corrupted files early and reports the page count.

**Examples:**
• Batch processing safety: "Validate all PDFs in /invoices/ before bulk reconstruction"
• Upload verification: "Check user-uploaded contract.pdf is valid before processing"

**Common workflows:**
1. Automated Processing: Validate → Assess → Reconstruct if accepted

**Best practices:** Always run this first in automated workflows.`

	PDFServerInfoDescription = `Get server capabilities, layout thresholds and the PDFs in the configured directory.

**When to use:** At the start of a session, to discover which files are available and how the layout engine is tuned.

**Why it's useful:** Lists the tools with their parameters, the effective thresholds (column tolerance, header band, gate ratios) and the directory contents without a separate search.

**Examples:**
• Discovery: "What PDFs can you read?"
• Tuning check: "Which column tolerance is the server using?"

**Best practices:** Directory listings are cached briefly and capped; use absolute paths from the listing when calling other tools.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_reconstruct_layout": PDFReconstructLayoutDescription,
	"pdf_assess_layout":      PDFAssessLayoutDescription,
	"pdf_validate_file":      PDFValidateFileDescription,
	"pdf_server_info":        PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all described tools, sorted
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
