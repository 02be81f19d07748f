package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Extract converts raw file bytes of a known type into plain UTF-8 text.
// Extraction is best-effort: garbled pages or undecodable byte sequences
// degrade to empty or sanitized text rather than failing the whole call.
func Extract(data []byte, fileType string) (string, error) {
	switch strings.ToLower(fileType) {
	case ".pdf", "pdf":
		return extractPDF(data)
	case ".docx", "docx":
		return extractDOCX(data)
	case ".txt", "txt", ".md", "md":
		return extractPlain(data), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", fileType)
	}
}

func SupportedTypes() []string {
	return []string{".pdf", ".txt", ".md", ".docx"}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page with no extractable text contributes nothing.
			continue
		}
		buf.WriteString(text)
	}

	return buf.String(), nil
}

// docx paragraph markup inside word/document.xml: text lives in <w:t>
// elements, paragraphs end at </w:p>.
func extractDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open DOCX: %w", err)
	}

	var docXML io.ReadCloser
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docXML, err = f.Open()
			if err != nil {
				return "", fmt.Errorf("open document.xml: %w", err)
			}
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("document.xml not found in archive")
	}
	defer docXML.Close()

	var buf strings.Builder
	dec := xml.NewDecoder(docXML)
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}

	return buf.String(), nil
}

// extractPlain decodes bytes as UTF-8, dropping invalid sequences.
func extractPlain(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
