package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// VeredictoData carries everything printed on an acceptance or rejection
// dictamen.
type VeredictoData struct {
	Autor        string
	Titulo       string
	Coautores    string
	Modalidad    string
	Calificacion *float64
	Motivo       string
	Fecha        time.Time
	Comentarios  []string
}

// ReferenciaPagoData carries the fields printed on a payment reference sheet.
type ReferenciaPagoData struct {
	Autor      string
	Titulo     string
	Referencia string
	Monto      float64
	Fecha      time.Time
}

// VerdictRenderer renders decision documents. The PDF implementation lives
// below; tests substitute a fake.
type VerdictRenderer interface {
	RenderAceptacion(data VeredictoData) ([]byte, error)
	RenderRechazo(data VeredictoData) ([]byte, error)
}

// PaymentRenderer renders payment reference sheets.
type PaymentRenderer interface {
	RenderReferenciaPago(data ReferenciaPagoData) ([]byte, error)
}

// PDFRenderer produces the dictamen and payment documents with fpdf.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) RenderAceptacion(data VeredictoData) ([]byte, error) {
	pdf, tr := newVerdictPage("Dictamen de Aceptación")

	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"Por medio del presente se notifica a %s que el trabajo \"%s\" ha sido ACEPTADO "+
			"para su presentación en el congreso.",
		data.Autor, data.Titulo)
	pdf.MultiCell(0, 6, tr(body), "", "L", false)
	pdf.Ln(4)

	writeField(pdf, tr, "Coautores", data.Coautores)
	writeField(pdf, tr, "Modalidad", data.Modalidad)
	if data.Calificacion != nil {
		writeField(pdf, tr, "Calificación final", fmt.Sprintf("%.2f", *data.Calificacion))
	}
	writeField(pdf, tr, "Fecha", data.Fecha.Format("02/01/2006"))

	writeComentarios(pdf, tr, data.Comentarios)

	return outputPDF(pdf)
}

func (r *PDFRenderer) RenderRechazo(data VeredictoData) ([]byte, error) {
	pdf, tr := newVerdictPage("Dictamen de Rechazo")

	pdf.SetFont("Helvetica", "", 11)
	body := fmt.Sprintf(
		"Por medio del presente se notifica a %s que el trabajo \"%s\" ha sido RECHAZADO.",
		data.Autor, data.Titulo)
	pdf.MultiCell(0, 6, tr(body), "", "L", false)
	pdf.Ln(4)

	writeField(pdf, tr, "Coautores", data.Coautores)
	writeField(pdf, tr, "Motivo", data.Motivo)
	if data.Calificacion != nil {
		writeField(pdf, tr, "Calificación final", fmt.Sprintf("%.2f", *data.Calificacion))
	}
	writeField(pdf, tr, "Fecha", data.Fecha.Format("02/01/2006"))

	writeComentarios(pdf, tr, data.Comentarios)

	return outputPDF(pdf)
}

func (r *PDFRenderer) RenderReferenciaPago(data ReferenciaPagoData) ([]byte, error) {
	pdf, tr := newVerdictPage("Referencia de Pago")

	pdf.SetFont("Helvetica", "", 11)
	writeField(pdf, tr, "Autor", data.Autor)
	writeField(pdf, tr, "Trabajo", data.Titulo)
	writeField(pdf, tr, "Referencia", data.Referencia)
	writeField(pdf, tr, "Monto", fmt.Sprintf("$%.2f MXN", data.Monto))
	writeField(pdf, tr, "Fecha de emisión", data.Fecha.Format("02/01/2006"))

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, tr("Presente esta referencia al realizar su pago en ventanilla o transferencia."), "", "L", false)

	return outputPDF(pdf)
}

func newVerdictPage(title string) (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Sistema de Gestión de Congresos Académicos"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	return pdf, tr
}

func writeField(pdf *fpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 7, tr(label+":"), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 7, tr(value), "", "L", false)
}

func writeComentarios(pdf *fpdf.Fpdf, tr func(string) string, comentarios []string) {
	if len(comentarios) == 0 {
		return
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr("Comentarios de los revisores:"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for i, comentario := range comentarios {
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%d. %s", i+1, comentario)), "", "L", false)
		pdf.Ln(1)
	}
}

func outputPDF(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
