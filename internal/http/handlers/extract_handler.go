// File extraction HTTP handler.
//
// POST /extract accepts a multipart upload (field "file") and returns the
// extracted plain text, ready to be used as pipeline input. Extraction is
// stateless; nothing is persisted.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/automate-gpt/go-workflow-backend/internal/extract"
)

// ExtractResponse carries the text recovered from an uploaded file.
type ExtractResponse struct {
	Filename string `json:"filename"`
	Text     string `json:"text"`
}

// ExtractFile reads the uploaded file and returns its text content.
//
// Error mapping:
//   - missing/unreadable multipart file -> 400 bad_request
//   - extension outside the allowlist   -> 400 unsupported_file_type
//   - file larger than 10MB             -> 413 file_too_large
//   - no recoverable text               -> 422 extraction_failed
func (h *Handlers) ExtractFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, `multipart field "file" is required`)
		return
	}

	f, err := header.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read uploaded file")
		return
	}
	defer f.Close()

	text, err := extract.Extract(header.Filename, header.Size, f)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupportedType):
			fail(c, http.StatusBadRequest, ErrCodeUnsupportedFile, err.Error())
		case errors.Is(err, extract.ErrFileTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeFileTooLarge, err.Error())
		case errors.Is(err, extract.ErrNoText):
			fail(c, http.StatusUnprocessableEntity, ErrCodeExtractionFailed, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "extraction failed unexpectedly")
		}
		return
	}

	ok(c, http.StatusOK, ExtractResponse{Filename: header.Filename, Text: text})
}
