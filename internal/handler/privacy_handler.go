package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hyukudan/enroltimer/internal/models"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
	"github.com/hyukudan/enroltimer/pkg/response"
)

type privacyService interface {
	Export(ctx context.Context, userID int64) (*models.PrivacyExport, error)
	Erase(ctx context.Context, userID int64) error
}

// PrivacyHandler exposes subject-access export and erasure. Routes are
// expected to sit behind the admin role gate.
type PrivacyHandler struct {
	service privacyService
}

// NewPrivacyHandler constructs the handler.
func NewPrivacyHandler(service privacyService) *PrivacyHandler {
	return &PrivacyHandler{service: service}
}

// Export returns everything stored about one user.
func (h *PrivacyHandler) Export(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	export, err := h.service.Export(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, export)
}

// Erase deletes everything stored about one user.
func (h *PrivacyHandler) Erase(c *gin.Context) {
	userID, err := parseUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.service.Erase(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func parseUserID(c *gin.Context) (int64, error) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "userId must be a positive integer")
	}
	return userID, nil
}
