package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/wellness"
	"github.com/mamacare/mamacare-api/pkg/middleware"
)

type WellnessHandler struct {
	svc *wellness.Service
}

func NewWellnessHandler(svc *wellness.Service) *WellnessHandler {
	return &WellnessHandler{svc: svc}
}

// Register mounts the owner-scoped wellness log routes behind auth.
func (h *WellnessHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	w := rg.Group("/wellness", auth)
	w.GET("", h.List)
	w.POST("", h.Create)
	w.GET("/:id", h.Get)
	w.PUT("/:id", h.Update)
	w.DELETE("/:id", h.Delete)
}

func (h *WellnessHandler) List(c *gin.Context) {
	logs, err := h.svc.List(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *WellnessHandler) Create(c *gin.Context) {
	var in wellness.Input
	if !bindJSON(c, &in) {
		return
	}
	log, err := h.svc.Create(c.Request.Context(), middleware.Identity(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (h *WellnessHandler) Get(c *gin.Context) {
	log, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *WellnessHandler) Update(c *gin.Context) {
	var patch wellness.Patch
	if !bindJSON(c, &patch) {
		return
	}
	log, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.Identity(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, log)
}

func (h *WellnessHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.Identity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Log deleted"})
}
