package onboarding

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ReportHeader identifies the employee on a checklist report.
type ReportHeader struct {
	Name  string
	Email string
}

// RenderReport lays out the checklist of rec as a single A4 PDF.
func RenderReport(header ReportHeader, rec Record) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Onboarding Checklist")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", header.Name))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", header.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Experience level: %s", rec.ExperienceLevel))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Completion: %d%%", rec.CompletionPercent))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(120, 8, "Document", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 8, "Status", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, req := range rec.RequiredDocs {
		status := "Missing"
		if doc, ok := rec.Uploaded(req.Key); ok {
			status = "Uploaded " + doc.UploadedAt.Format("2006-01-02")
		}
		pdf.CellFormat(120, 7, req.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, status, "1", 1, "L", false, 0, "")
	}
	signature := "Missing"
	if rec.SignatureURL != "" {
		signature = "Signed"
	}
	pdf.CellFormat(120, 7, "Signature", "1", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, signature, "1", 1, "L", false, 0, "")

	if len(rec.OtherDocs) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Other documents")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		for _, doc := range rec.OtherDocs {
			pdf.Cell(0, 7, doc.Name)
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
