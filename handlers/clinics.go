package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/clinics"
)

type ClinicHandler struct {
	svc *clinics.Service
}

func NewClinicHandler(svc *clinics.Service) *ClinicHandler {
	return &ClinicHandler{svc: svc}
}

// Register mounts the public directory and the admin-only mutations.
func (h *ClinicHandler) Register(rg *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	g := rg.Group("/clinics")
	g.GET("", h.List)
	g.POST("", auth, admin, h.Create)
	g.PUT("/:id", auth, admin, h.Update)
	g.DELETE("/:id", auth, admin, h.Delete)
}

func (h *ClinicHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), clinics.Filter{City: c.Query("city"), Type: c.Query("type")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ClinicHandler) Create(c *gin.Context) {
	var in clinics.Input
	if !bindJSON(c, &in) {
		return
	}
	cl, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cl)
}

func (h *ClinicHandler) Update(c *gin.Context) {
	var patch clinics.Patch
	if !bindJSON(c, &patch) {
		return
	}
	cl, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cl)
}

func (h *ClinicHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Clinic deleted"})
}
