package handler

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hyukudan/enroltimer/internal/models"
	"github.com/hyukudan/enroltimer/internal/repository"
	"github.com/hyukudan/enroltimer/internal/service"
	"github.com/hyukudan/enroltimer/pkg/config"
	appErrors "github.com/hyukudan/enroltimer/pkg/errors"
	"github.com/hyukudan/enroltimer/pkg/response"
)

type widgetBuilder interface {
	Build(ctx context.Context, cache *service.RequestCache, userID, courseID int64, privilegedViewer bool) (*models.WidgetPayload, error)
}

type payloadCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// WidgetHandler serves the countdown payload the page script binds to.
type WidgetHandler struct {
	widgets widgetBuilder
	cache   payloadCache
	cfg     config.WidgetConfig
}

// NewWidgetHandler constructs the handler.
func NewWidgetHandler(widgets widgetBuilder, cache payloadCache, cfg config.WidgetConfig) *WidgetHandler {
	return &WidgetHandler{widgets: widgets, cache: cache, cfg: cfg}
}

// Timer returns the countdown payload for the authenticated viewer, or 204
// when there is nothing to display.
func (h *WidgetHandler) Timer(c *gin.Context) {
	payload, err := h.resolve(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if payload == nil {
		response.NoContent(c)
		return
	}
	response.JSON(c, http.StatusOK, payload)
}

// TimerHTML returns the server-rendered markup block carrying the payload in
// data attributes for the page script to hydrate.
func (h *WidgetHandler) TimerHTML(c *gin.Context) {
	payload, err := h.resolve(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if payload == nil {
		response.NoContent(c)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(renderTimerHTML(payload)))
}

func (h *WidgetHandler) resolve(c *gin.Context) (*models.WidgetPayload, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	courseID, err := strconv.ParseInt(c.Param("courseId"), 10, 64)
	if err != nil || courseID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId must be a positive integer")
	}

	ctx := c.Request.Context()
	key := repository.WidgetKey(claims.UserID, courseID)

	if h.cache != nil && !claims.PrivilegedViewer() {
		var cached models.WidgetPayload
		if err := h.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	payload, err := h.widgets.Build(ctx, service.NewRequestCache(), claims.UserID, courseID, claims.PrivilegedViewer())
	if err != nil {
		return nil, err
	}

	if payload != nil && h.cache != nil {
		// Best effort; a cache write failure is already logged downstream.
		_ = h.cache.Set(ctx, key, payload, h.cfg.CacheTTL)
	}
	return payload, nil
}

// renderTimerHTML emits the hydration block. Unit keys and values live in
// data attributes; labels are display-only text.
func renderTimerHTML(p *models.WidgetPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<div class="enroltimer" data-course-id="%d" data-end-time="%d" data-remaining="%d" data-urgency="%s" data-force-two-digits="%t" data-progress="%.1f">`,
		p.CourseID, p.EndTime, p.RemainingSeconds, p.Urgency, p.ForceTwoDigits, p.Progress)
	b.WriteString("\n")
	for _, unit := range p.Units {
		fmt.Fprintf(&b,
			`  <span class="enroltimer-unit" data-unit="%s" data-value="%d">%s</span>`,
			unit.Unit, unit.Value, html.EscapeString(unit.Label))
		b.WriteString("\n")
	}
	b.WriteString(`</div>`)
	return b.String()
}
