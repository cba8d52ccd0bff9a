// Package writer serializes calculated filing rows into the artifacts the
// EPFO and ESIC portals accept.
//
// The PF artifact is plain text with one member per line and fields joined by
// "#~#". There is no header row and no trailing newline. The ESI artifact is
// an .xlsx workbook whose first sheet holds the contribution rows as text and
// whose second sheet carries the ESIC instructions and reason codes.
package writer

import (
	"bytes"
	"io"
	"strings"

	"challan-service/internal/models"
)

// PFDelimiter separates fields in the PF upload file
const PFDelimiter = "#~#"

// PF artifact and workbook file names offered for download
const (
	PFFileName  = "PF_CHALLAN.txt"
	ESIFileName = "ESI_CHALLAN.xlsx"
)

// PFText renders contribution rows in the EPFO upload format
func PFText(records []models.ContributionRecord) []byte {
	var buf bytes.Buffer
	// writes to a bytes.Buffer never fail
	_ = WritePF(&buf, records)
	return buf.Bytes()
}

// WritePF writes contribution rows in the EPFO upload format
func WritePF(w io.Writer, records []models.ContributionRecord) error {
	for i, record := range records {
		line := strings.Join(record.Fields(), PFDelimiter)
		if i > 0 {
			line = "\n" + line
		}
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
