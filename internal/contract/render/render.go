// Package render produces the signed contract PDF: the substituted
// body, both signature images, and an authenticity footer with a QR
// code pointing at the public verification page.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/danielcasamentos/priceus-sub002/internal/contract"
)

const (
	pageMargin   = 20.0
	signatureW   = 60.0
	signatureH   = 25.0
	qrSizeMM     = 30.0
	qrSizePixels = 256
)

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(doc contract.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "C", false)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)

	for _, paragraph := range strings.Split(doc.Body, "\n") {
		if paragraph == "" {
			pdf.Ln(4)
			continue
		}

		pdf.MultiCell(0, 6, tr(paragraph), "", "L", false)
	}

	pdf.Ln(12)

	if err := r.signatures(pdf, tr, doc); err != nil {
		return nil, err
	}

	if err := r.authenticityBlock(pdf, tr, doc); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) signatures(pdf *gofpdf.Fpdf, tr func(string) string, doc contract.Document) error {
	type sig struct {
		name  string
		label string
		image string
	}

	sigs := []sig{
		{name: "sig-user", label: "Contratada", image: doc.UserSignaturePNG},
		{name: "sig-client", label: "Contratante", image: doc.ClientSignaturePNG},
	}

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+signatureH+30 > pageH-pageMargin {
		pdf.AddPage()
	}

	x := pageMargin
	y := pdf.GetY()

	for _, s := range sigs {
		if s.image != "" {
			png, err := decodeSignature(s.image)
			if err != nil {
				return fmt.Errorf("decoding %s signature: %w", s.label, err)
			}

			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(s.name, opts, bytes.NewReader(png))
			pdf.ImageOptions(s.name, x, y, signatureW, signatureH, false, opts, 0, "")
		}

		pdf.Line(x, y+signatureH+2, x+signatureW, y+signatureH+2)
		pdf.SetXY(x, y+signatureH+4)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(signatureW, 5, tr(s.label), "", 0, "C", false, 0, "")

		x += signatureW + 30
	}

	pdf.SetY(y + signatureH + 14)

	if pdf.Err() {
		return fmt.Errorf("rendering signatures: %w", pdf.Error())
	}

	return nil
}

func (r *Renderer) authenticityBlock(pdf *gofpdf.Fpdf, tr func(string) string, doc contract.Document) error {
	qr, err := qrcode.Encode(doc.VerifyURL, qrcode.Medium, qrSizePixels)
	if err != nil {
		return fmt.Errorf("encoding verification qr: %w", err)
	}

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+qrSizeMM+10 > pageH-pageMargin {
		pdf.AddPage()
	}

	y := pdf.GetY()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("verify-qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("verify-qr", pageMargin, y, qrSizeMM, qrSizeMM, false, opts, 0, "")

	pdf.SetXY(pageMargin+qrSizeMM+6, y)
	pdf.SetFont("Helvetica", "", 8)

	lines := []string{
		fmt.Sprintf("Documento assinado eletronicamente em %s (UTC).", doc.SignedAt.Format("02/01/2006 15:04:05")),
		fmt.Sprintf("Identificador: %s", doc.ContractID),
		fmt.Sprintf("IP do signatário: %s", doc.SignerIP),
		fmt.Sprintf("Verifique a autenticidade em: %s", doc.VerifyURL),
	}

	for _, line := range lines {
		pdf.SetX(pageMargin + qrSizeMM + 6)
		pdf.MultiCell(0, 4.5, tr(line), "", "L", false)
	}

	if pdf.Err() {
		return fmt.Errorf("rendering authenticity block: %w", pdf.Error())
	}

	return nil
}

// decodeSignature accepts both raw base64 and data URLs such as
// "data:image/png;base64,...".
func decodeSignature(image string) ([]byte, error) {
	if _, after, ok := strings.Cut(image, "base64,"); ok {
		image = after
	}

	return base64.StdEncoding.DecodeString(image)
}
