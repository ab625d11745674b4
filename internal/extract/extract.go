// Package extract converts uploaded files into the plain text the pipeline
// consumes as raw input. It accepts .txt, .pdf, .csv, .doc and .docx by
// extension, enforces a 10MB ceiling, and returns extracted text or a
// typed validation error. The extracted text becomes the pipeline's input
// unchanged.
//
// PDF handling is deliberately naive: it scrapes text-showing operators
// out of the raw object stream and falls back to stripping the file down
// to readable ASCII. Image-based or encrypted PDFs are rejected with a
// clear error rather than producing garbage.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxFileSize is the upload ceiling in bytes.
const MaxFileSize = 10 << 20 // 10MB

var (
	// ErrFileTooLarge is returned when the declared or actual size exceeds
	// MaxFileSize.
	ErrFileTooLarge = errors.New("file size must be less than 10MB")

	// ErrUnsupportedType is returned for extensions outside the allowlist.
	ErrUnsupportedType = errors.New("supported formats: .txt, .pdf, .csv, .doc, .docx files")

	// ErrNoText is returned when no usable text could be recovered.
	ErrNoText = errors.New("could not extract text from file")
)

var allowedExtensions = map[string]struct{}{
	".txt": {}, ".pdf": {}, ".csv": {}, ".doc": {}, ".docx": {},
}

// Extract reads the file content from r and returns its text. size is the
// declared upload size; it is validated up front and the read is capped at
// MaxFileSize regardless.
func Extract(filename string, size int64, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; !ok {
		return "", ErrUnsupportedType
	}
	if size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	switch ext {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	case ".doc":
		return fallbackASCII(data)
	default: // .txt, .csv
		return strings.TrimSpace(string(data)), nil
	}
}

// --- PDF ---

var (
	pdfTjRE = regexp.MustCompile(`\(([^)]*)\)\s*Tj`)
	pdfTJRE = regexp.MustCompile(`\[([^\]]*)\]\s*TJ`)
	// pdfParenRE catches bare string literals when no operator matched.
	pdfParenRE = regexp.MustCompile(`\(([^)]{3,})\)`)

	nonASCIIRE   = regexp.MustCompile(`[^\x20-\x7E\n\r\t]`)
	multiSpaceRE = regexp.MustCompile(`\s+`)
)

// extractPDF scrapes text-showing operators out of the raw stream, then
// falls back to readable ASCII when too little was found.
func extractPDF(data []byte) (string, error) {
	raw := string(data)

	var b strings.Builder
	for _, re := range []*regexp.Regexp{pdfTjRE, pdfTJRE, pdfParenRE} {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			clean := unescapePDFString(m[1])
			if len(strings.TrimSpace(clean)) > 2 {
				b.WriteString(clean)
				b.WriteString(" ")
			}
		}
	}

	text := strings.TrimSpace(b.String())
	if len(text) < 50 {
		text = strings.TrimSpace(string(nonASCIIRE.ReplaceAll(data, []byte(" "))))
	}
	text = multiSpaceRE.ReplaceAllString(text, " ")

	if len(text) < 20 {
		return "", fmt.Errorf("%w: the PDF might be image-based or encrypted", ErrNoText)
	}
	return text, nil
}

// unescapePDFString resolves the escape sequences PDF string literals use.
func unescapePDFString(s string) string {
	replacer := strings.NewReplacer(
		`\n`, "\n", `\r`, "\n", `\t`, "\t",
		`\(`, "(", `\)`, ")", `\\`, `\`,
	)
	return replacer.Replace(s)
}

// --- DOCX ---

var xmlTagRE = regexp.MustCompile(`<[^>]+>`)

// extractDocx opens the zip container and strips the markup out of the
// main document part.
func extractDocx(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid .docx archive", ErrNoText)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: unreadable document part", ErrNoText)
		}
		xmlData, err := io.ReadAll(io.LimitReader(rc, MaxFileSize))
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: unreadable document part", ErrNoText)
		}

		// Paragraph closes become newlines before tags are stripped.
		text := strings.ReplaceAll(string(xmlData), "</w:p>", "\n")
		text = xmlTagRE.ReplaceAllString(text, "")
		text = strings.TrimSpace(text)
		if text == "" {
			return "", ErrNoText
		}
		return text, nil
	}
	return "", fmt.Errorf("%w: no document part found", ErrNoText)
}

// fallbackASCII strips a legacy binary format down to readable characters.
func fallbackASCII(data []byte) (string, error) {
	text := string(nonASCIIRE.ReplaceAll(data, []byte(" ")))
	text = strings.TrimSpace(multiSpaceRE.ReplaceAllString(text, " "))
	if len(text) < 20 {
		return "", ErrNoText
	}
	return text, nil
}
