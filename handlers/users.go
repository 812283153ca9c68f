package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/users"
	"github.com/mamacare/mamacare-api/pkg/middleware"
)

// UserHandler serves registration, login and the caller's own profile.
type UserHandler struct {
	svc *users.Service
}

func NewUserHandler(svc *users.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Register mounts the routes on rg; auth guards the private ones.
func (h *UserHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	u := rg.Group("/users")
	u.POST("/register", h.SignUp)
	u.POST("/login", h.Login)
	u.POST("/refresh", h.Refresh)
	u.POST("/logout", auth, h.Logout)
	u.GET("/profile", auth, h.GetProfile)
	u.PUT("/profile", auth, h.UpdateProfile)
	u.DELETE("/profile", auth, h.DeleteProfile)
}

func (h *UserHandler) SignUp(c *gin.Context) {
	var in users.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *UserHandler) Login(c *gin.Context) {
	var in loginRequest
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var in refreshRequest
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *UserHandler) Logout(c *gin.Context) {
	var in refreshRequest
	if !bindJSON(c, &in) {
		return
	}
	var expires time.Time
	if claims := middleware.Claims(c); claims != nil {
		expires = claims.Expiry()
	}
	if err := h.svc.Logout(c.Request.Context(), middleware.AccessToken(c), expires, in.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.svc.Profile(c.Request.Context(), middleware.Identity(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var patch users.ProfilePatch
	if !bindJSON(c, &patch) {
		return
	}
	p, err := h.svc.UpdateProfile(c.Request.Context(), middleware.Identity(c).ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UserHandler) DeleteProfile(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.Identity(c).ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
