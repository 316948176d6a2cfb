package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"maestroai/internal/domain"
	"maestroai/internal/service"
)

// DefectHandler handles defect detection endpoints.
type DefectHandler struct {
	defectService service.DefectService
}

// NewDefectHandler creates a new DefectHandler.
func NewDefectHandler(defectService service.DefectService) *DefectHandler {
	return &DefectHandler{defectService: defectService}
}

// FindDefects handles POST /v2/find-defects
// @Summary Find UI defects on a screenshot
// @Description Detects visible UI defects and, when an assertion is given, checks it against the screenshot. A failed assertion is reported as an ASSERTION_FAILED defect; an empty list means the screen passed.
// @Tags defects
// @Accept json
// @Produce json
// @Param body body FindDefectsRequest true "Screenshot and optional assertion"
// @Success 200 {object} FindDefectsResponse "Defects found"
// @Failure 400 {object} ErrorResponse "Invalid image or request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 422 {object} ErrorResponse "Image could not be processed"
// @Failure 503 {object} ErrorResponse "AI service unavailable"
// @Security BearerAuth
// @Router /find-defects [post]
func (h *DefectHandler) FindDefects(c *gin.Context) {
	var req FindDefectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if req.Screen.IsEmpty() && !req.Screen.IsByteArray() {
		HandleError(c, fmt.Errorf("%w: screen is required", domain.ErrValidation))
		return
	}

	defects, err := h.defectService.FindDefects(c.Request.Context(), req.Screen, req.Assertion)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, FindDefectsResponse{Defects: defects})
}
