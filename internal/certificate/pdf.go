package certificate

import (
	"fmt"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"eventnest/internal/model"
)

// PDFRenderer writes certificate artifacts as A4 landscape PDFs named
// certificate-{id}.pdf in the configured directory.
type PDFRenderer struct {
	dir         string
	frontendURL string
}

func NewPDFRenderer(dir, frontendURL string) *PDFRenderer {
	return &PDFRenderer{dir: dir, frontendURL: frontendURL}
}

func (r *PDFRenderer) ArtifactPath(certificateID int64) string {
	return filepath.Join(r.dir, fmt.Sprintf("certificate-%d.pdf", certificateID))
}

func (r *PDFRenderer) Render(d *model.CertificateDetail) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	w, h := pdf.GetPageSize()

	// Double border frame.
	pdf.SetLineWidth(3)
	pdf.SetDrawColor(16, 185, 129)
	pdf.Rect(8, 8, w-16, h-16, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(5, 150, 105)
	pdf.Rect(12, 12, w-24, h-24, "D")

	pdf.SetFont("Helvetica", "B", 32)
	pdf.SetTextColor(16, 185, 129)
	pdf.SetY(26)
	pdf.CellFormat(0, 14, "EventNest", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 40)
	pdf.SetTextColor(31, 41, 55)
	pdf.SetY(45)
	pdf.CellFormat(0, 18, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.SetLineWidth(0.8)
	pdf.SetDrawColor(16, 185, 129)
	pdf.Line(70, 68, w-70, 68)

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetY(75)
	pdf.CellFormat(0, 8, "This is to certify that", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(31, 41, 55)
	pdf.SetY(87)
	pdf.CellFormat(0, 14, d.RecipientName, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 14)
	pdf.SetTextColor(75, 85, 99)
	pdf.SetY(105)
	pdf.CellFormat(0, 8, "has successfully participated in", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(5, 150, 105)
	pdf.SetY(115)
	pdf.CellFormat(0, 10, d.EventTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(107, 114, 128)
	pdf.SetY(130)
	pdf.CellFormat(0, 7, "Held on "+d.EventDate.Format("January 2, 2006"), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "at "+d.EventLocation, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(156, 163, 175)
	pdf.SetY(152)
	pdf.CellFormat(0, 6, "Issued on: "+d.IssuedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(209, 213, 219)
	pdf.SetY(h - 30)
	pdf.CellFormat(0, 5, fmt.Sprintf("Certificate ID: %d", d.ID), "", 1, "C", false, 0, "")
	pdf.SetTextColor(156, 163, 175)
	pdf.CellFormat(0, 5, fmt.Sprintf("Verify at: %s/verify/%d", r.frontendURL, d.ID), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(r.ArtifactPath(d.ID)); err != nil {
		return fmt.Errorf("failed to write certificate pdf: %w", err)
	}
	return nil
}
