package handler

import (
	"github.com/gin-gonic/gin"

	"cverve/internal/service"
)

// ExtractionHandler handles text extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// ExtractText handles POST /api/v1/extract-text
// @Summary Extract text from uploaded documents
// @Description Extract one combined plain-text representation from PDFs, Word documents and images
// @Tags extraction
// @Accept json
// @Produce json
// @Param request body ExtractTextRequest true "Base64-encoded files"
// @Success 200 {object} Response{data=service.ExtractTextOutput} "Extracted text"
// @Failure 400 {object} ErrorResponseBody "Missing files, bad base64, unusable batch or timeout"
// @Failure 413 {object} ErrorResponseBody "Request too large"
// @Router /extract-text [post]
func (h *ExtractionHandler) ExtractText(c *gin.Context) {
	var input service.ExtractTextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	out, err := h.extractionService.ExtractText(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}
