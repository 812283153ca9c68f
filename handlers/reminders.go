package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/reminders"
	"github.com/mamacare/mamacare-api/pkg/middleware"
)

type ReminderHandler struct {
	svc *reminders.Service
}

func NewReminderHandler(svc *reminders.Service) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func (h *ReminderHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	r := rg.Group("/reminders", auth)
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

// List accepts an optional ?type=medication|appointment|custom filter.
func (h *ReminderHandler) List(c *gin.Context) {
	var f reminders.Filter
	if raw := strings.TrimSpace(c.Query("type")); raw != "" {
		f.Type = models.ReminderType(strings.ToLower(raw))
		if !f.Type.Valid() {
			respondError(c, apperr.Validation("Invalid reminder type"))
			return
		}
	}
	list, err := h.svc.List(c.Request.Context(), middleware.Identity(c), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ReminderHandler) Create(c *gin.Context) {
	var in reminders.Input
	if !bindJSON(c, &in) {
		return
	}
	r, err := h.svc.Create(c.Request.Context(), middleware.Identity(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *ReminderHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Update(c *gin.Context) {
	var patch reminders.Patch
	if !bindJSON(c, &patch) {
		return
	}
	r, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.Identity(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.Identity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted"})
}
