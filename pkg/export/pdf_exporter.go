package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// ReportCardSubject is one subject row on a printed report card.
type ReportCardSubject struct {
	Name    string
	Exam    string
	CA      string
	Final   string
	Grade   string
	Remarks string
}

// ReportCard carries everything needed to print a student report card.
type ReportCard struct {
	SchoolName   string
	StudentName  string
	AdmissionNo  string
	ClassName    string
	Term         string
	AcademicYear string
	Subjects     []ReportCardSubject
	Average      string
	GeneratedBy  string
}

// PDFExporter renders report cards into printable PDF documents.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderReportCard produces a single-page A4 report card.
func (e *PDFExporter) RenderReportCard(card ReportCard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 15, 12)
	pdf.AddPage()

	school := card.SchoolName
	if school == "" {
		school = "Fredora Academy"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, school, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "Academic Report Card", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	meta := [][2]string{
		{"Student", card.StudentName},
		{"Admission No", card.AdmissionNo},
		{"Class", card.ClassName},
		{"Term", card.Term},
		{"Academic Year", card.AcademicYear},
	}
	for _, kv := range meta {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(40, 6, kv[0], "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, kv[1], "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	headers := []string{"Subject", "Exam %", "CA %", "Final", "Grade", "Remarks"}
	widths := []float64{56, 25, 25, 25, 20, 35}
	pdf.SetFont("Arial", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, subject := range card.Subjects {
		cells := []string{subject.Name, subject.Exam, subject.CA, subject.Final, subject.Grade, subject.Remarks}
		for i, value := range cells {
			pdf.CellFormat(widths[i], 7, value, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall Average: %s", card.Average), "", 1, "", false, 0, "")
	if card.GeneratedBy != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Generated by %s", card.GeneratedBy), "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report card pdf: %w", err)
	}
	return buf.Bytes(), nil
}
