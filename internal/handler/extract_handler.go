package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"maestroai/internal/domain"
	"maestroai/internal/service"
)

// ExtractHandler handles text extraction endpoints.
type ExtractHandler struct {
	textService service.TextService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(textService service.TextService) *ExtractHandler {
	return &ExtractHandler{textService: textService}
}

// ExtractText handles POST /v2/extract-text
// @Summary Extract text from a screenshot
// @Description Reads the text on the screenshot that answers the query. Returns an empty string when nothing matches.
// @Tags text
// @Accept json
// @Produce json
// @Param body body ExtractTextRequest true "Screenshot and query"
// @Success 200 {object} ExtractTextResponse "Extracted text"
// @Failure 400 {object} ErrorResponse "Invalid image or request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 422 {object} ErrorResponse "Image could not be processed"
// @Failure 503 {object} ErrorResponse "AI service unavailable"
// @Security BearerAuth
// @Router /extract-text [post]
func (h *ExtractHandler) ExtractText(c *gin.Context) {
	var req ExtractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Screen.IsEmpty() && !req.Screen.IsByteArray() {
		HandleError(c, fmt.Errorf("%w: screen is required", domain.ErrValidation))
		return
	}

	text, err := h.textService.ExtractText(c.Request.Context(), req.Screen, *req.Query)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExtractTextResponse{Text: text})
}
