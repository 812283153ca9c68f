package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/pregnancy"
)

// CalculatorHandler exposes the two due-date rule sets without an account.
type CalculatorHandler struct {
	now func() time.Time
}

func NewCalculatorHandler(now func() time.Time) *CalculatorHandler {
	if now == nil {
		now = time.Now
	}
	return &CalculatorHandler{now: now}
}

func (h *CalculatorHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/calculator")
	g.GET("/lmp", h.FromLMP)
	g.GET("/conception", h.FromConception)
}

type lmpResult struct {
	LMP     string `json:"lmp"`
	DueDate string `json:"dueDate"`
	pregnancy.Progress
	DaysRemaining *int   `json:"daysRemaining"`
	BirthClub     string `json:"birthClub"`
	BabySize      string `json:"babySize"`
}

type conceptionResult struct {
	ConceptionDate string `json:"conceptionDate"`
	pregnancy.ConceptionProgress
	DueDate string `json:"dueDate"`
}

// date reads ?date= and rejects dates after today.
func (h *CalculatorHandler) date(c *gin.Context) (time.Time, time.Time, bool) {
	raw := strings.TrimSpace(c.Query("date"))
	if raw == "" {
		respondError(c, apperr.Validation("date is required (YYYY-MM-DD)"))
		return time.Time{}, time.Time{}, false
	}
	d, err := pregnancy.ParseDate(raw)
	if err != nil {
		respondError(c, apperr.Validation("Invalid date, expected YYYY-MM-DD"))
		return time.Time{}, time.Time{}, false
	}
	now := h.now()
	if pregnancy.DaysBetween(d, now) < 0 {
		respondError(c, apperr.Validation("Date cannot be in the future"))
		return time.Time{}, time.Time{}, false
	}
	return d, now, true
}

func (h *CalculatorHandler) FromLMP(c *gin.Context) {
	lmp, now, ok := h.date(c)
	if !ok {
		return
	}
	due := pregnancy.DueDateFromLMP(lmp)
	progress := pregnancy.ProgressFromLMP(&lmp, now)
	c.JSON(http.StatusOK, lmpResult{
		LMP:           pregnancy.FormatDate(lmp),
		DueDate:       pregnancy.FormatDate(due),
		Progress:      progress,
		DaysRemaining: pregnancy.DaysRemaining(&due, now),
		BirthClub:     pregnancy.BirthClub(&due),
		BabySize:      pregnancy.BabySize(*progress.WeeksPregnant),
	})
}

func (h *CalculatorHandler) FromConception(c *gin.Context) {
	conception, now, ok := h.date(c)
	if !ok {
		return
	}
	p := pregnancy.FromConception(&conception, now)
	c.JSON(http.StatusOK, conceptionResult{
		ConceptionDate:     pregnancy.FormatDate(conception),
		ConceptionProgress: p,
		DueDate:            pregnancy.FormatDate(*p.DueDate),
	})
}
