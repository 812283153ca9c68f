package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mamacare/mamacare-api/internal/forum"
	"github.com/mamacare/mamacare-api/pkg/middleware"
)

type ForumHandler struct {
	svc *forum.Service
}

func NewForumHandler(svc *forum.Service) *ForumHandler {
	return &ForumHandler{svc: svc}
}

// Register mounts the forum. Every route requires a signed-in user.
func (h *ForumHandler) Register(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	f := rg.Group("/forum", auth)
	f.GET("", h.ListPosts)
	f.POST("", h.CreatePost)
	f.GET("/:id", h.GetPost)
	f.PUT("/:id", h.UpdatePost)
	f.DELETE("/:id", h.DeletePost)
	f.POST("/:id/flag", h.FlagPost)
	f.GET("/:id/comments", h.ListComments)
	f.POST("/:id/comments", h.AddComment)
	f.DELETE("/:id/comments/:commentId", h.DeleteComment)
	f.POST("/:id/comments/:commentId/flag", h.FlagComment)
}

func (h *ForumHandler) ListPosts(c *gin.Context) {
	posts, err := h.svc.ListPosts(c.Request.Context(), middleware.Identity(c), c.Query("birthClub"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (h *ForumHandler) CreatePost(c *gin.Context) {
	var in forum.PostInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.CreatePost(c.Request.Context(), middleware.Identity(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ForumHandler) GetPost(c *gin.Context) {
	p, err := h.svc.GetPost(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ForumHandler) UpdatePost(c *gin.Context) {
	var patch forum.PostPatch
	if !bindJSON(c, &patch) {
		return
	}
	p, err := h.svc.UpdatePost(c.Request.Context(), c.Param("id"), middleware.Identity(c), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ForumHandler) DeletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), c.Param("id"), middleware.Identity(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *ForumHandler) FlagPost(c *gin.Context) {
	p, err := h.svc.FlagPost(c.Request.Context(), c.Param("id"), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ForumHandler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *ForumHandler) AddComment(c *gin.Context) {
	var in forum.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	cm, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), middleware.Identity(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cm)
}

func (h *ForumHandler) DeleteComment(c *gin.Context) {
	err := h.svc.DeleteComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

func (h *ForumHandler) FlagComment(c *gin.Context) {
	cm, err := h.svc.FlagComment(c.Request.Context(), c.Param("id"), c.Param("commentId"), middleware.Identity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cm)
}
