package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/content"
	"github.com/mamacare/mamacare-api/internal/pregnancy"
)

const maxMediaBytes = 10 << 20

// ContentHandler serves milestones, guidance and the week guide.
type ContentHandler struct {
	svc *content.Service
}

func NewContentHandler(svc *content.Service) *ContentHandler {
	return &ContentHandler{svc: svc}
}

func (h *ContentHandler) Register(rg *gin.RouterGroup, auth, admin gin.HandlerFunc) {
	p := rg.Group("/pregnancy")
	p.GET("", h.ListMilestones)
	p.POST("", auth, admin, h.CreateMilestone)
	p.GET("/:week", h.GetMilestone)
	p.GET("/:week/guide", h.WeekGuide)

	g := rg.Group("/guidance")
	g.GET("", h.ListGuidance)
	g.GET("/symptoms", h.Symptoms)
	g.POST("", auth, admin, h.CreateGuidance)
	g.POST("/:id/media", auth, admin, h.UploadMedia)
}

func (h *ContentHandler) ListMilestones(c *gin.Context) {
	list, err := h.svc.ListMilestones(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ContentHandler) GetMilestone(c *gin.Context) {
	m, err := h.svc.MilestoneByWeek(c.Request.Context(), c.Param("week"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *ContentHandler) CreateMilestone(c *gin.Context) {
	var in content.MilestoneInput
	if !bindJSON(c, &in) {
		return
	}
	m, err := h.svc.CreateMilestone(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *ContentHandler) WeekGuide(c *gin.Context) {
	g, err := h.svc.WeekGuide(c.Param("week"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *ContentHandler) ListGuidance(c *gin.Context) {
	list, err := h.svc.ListGuidance(c.Request.Context(), c.Query("week"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Symptoms takes repeated ?symptom= parameters.
func (h *ContentHandler) Symptoms(c *gin.Context) {
	symptoms := c.QueryArray("symptom")
	c.JSON(http.StatusOK, gin.H{
		"symptoms": symptoms,
		"known":    pregnancy.KnownSymptoms(),
		"guidance": h.svc.ForSymptoms(symptoms),
	})
}

func (h *ContentHandler) CreateGuidance(c *gin.Context) {
	var in content.GuidanceInput
	if !bindJSON(c, &in) {
		return
	}
	g, err := h.svc.CreateGuidance(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// UploadMedia expects a multipart "file" field.
func (h *ContentHandler) UploadMedia(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.Validation("A media file is required"))
		return
	}
	if fh.Size > maxMediaBytes {
		respondError(c, apperr.Validation("Media file is too large"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, apperr.Server(err, "Could not read upload"))
		return
	}
	defer f.Close()
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	g, err := h.svc.AddMedia(c.Request.Context(), c.Param("id"), fh.Filename, f, fh.Size, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}
