package constants

import (
	"bytes"
	"strings"
)

// PDFMediaType is the media type expected for uploaded résumés.
const PDFMediaType = "application/pdf"

// pdfMagic is the leading byte signature of every PDF document.
var pdfMagic = []byte("%PDF-")

// IsPDF reports whether data starts with the PDF signature. A positive
// answer does not guarantee the document parses; it only gates the
// extraction pass.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// NormalizeMediaType lowercases a Content-Type header value and strips
// parameters ("application/pdf; charset=binary" -> "application/pdf").
func NormalizeMediaType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
