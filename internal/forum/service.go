// Package forum implements the community board: posts grouped by birth
// club, comments, and moderation flags.
package forum

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mamacare/mamacare-api/internal/access"
	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/pregnancy"
	"github.com/mamacare/mamacare-api/internal/store"
	"github.com/mamacare/mamacare-api/pkg/logger"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const (
	minPostLength = 3

	msgContentTooShort = "Content too short"
	msgCommentRequired = "Comment required"
	msgPostNotFound    = "Post not found"
	msgCommentNotFound = "Comment not found"
	msgForbidden       = "Forbidden"
	msgServer          = "Server error"
)

// IdentityResolver looks up users for author projection. A nil identity
// means the author no longer exists.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id string) (*models.Identity, error)
}

type PostInput struct {
	Content   string `json:"content"`
	Anonymous bool   `json:"anonymous"`
}

// PostPatch lists the fields an author may change.
type PostPatch struct {
	Content   *string `json:"content"`
	Anonymous *bool   `json:"anonymous"`
}

type CommentInput struct {
	Content string `json:"content"`
}

// PostView is a post as returned to clients. Anonymous posts carry no
// author and hide userId from everyone but their author.
type PostView struct {
	models.ForumPost
	Author *models.Author `json:"author,omitempty"`
}

type CommentView struct {
	models.Comment
	Author *models.Author `json:"author,omitempty"`
}

type Service struct {
	posts    store.Collection
	comments store.Collection
	users    IdentityResolver
	now      func() time.Time
}

func NewService(posts, comments store.Collection, users IdentityResolver) *Service {
	return &Service{posts: posts, comments: comments, users: users, now: time.Now}
}

// authors memoises author lookups for one response.
type authors struct {
	users IdentityResolver
	seen  map[string]*models.Author
}

func (s *Service) newAuthors() *authors {
	return &authors{users: s.users, seen: map[string]*models.Author{}}
}

func (a *authors) get(ctx context.Context, id string) *models.Author {
	if a.users == nil || id == "" {
		return nil
	}
	if author, ok := a.seen[id]; ok {
		return author
	}
	var author *models.Author
	identity, err := a.users.ResolveIdentity(ctx, id)
	if err != nil {
		logger.Warnf("forum: resolve author %s: %v", id, err)
	} else if identity != nil {
		author = &models.Author{ID: identity.ID, Name: identity.Name}
	}
	a.seen[id] = author
	return author
}

func (s *Service) viewPost(ctx context.Context, a *authors, p *models.ForumPost, viewer *models.Identity) *PostView {
	v := &PostView{ForumPost: *p}
	if p.Anonymous {
		if viewer == nil || viewer.ID != p.UserID {
			v.UserID = ""
		}
		return v
	}
	v.Author = a.get(ctx, p.UserID)
	return v
}

func (s *Service) viewComment(ctx context.Context, a *authors, c *models.Comment) *CommentView {
	return &CommentView{Comment: *c, Author: a.get(ctx, c.UserID)}
}

// CreatePost publishes a post in the author's birth club.
func (s *Service) CreatePost(ctx context.Context, author *models.Identity, in PostInput) (*PostView, error) {
	content := strings.TrimSpace(in.Content)
	if len([]rune(content)) < minPostLength {
		return nil, apperr.Validation(msgContentTooShort)
	}
	now := s.now().UTC()
	p := &models.ForumPost{
		ID:        store.NewID(),
		UserID:    author.ID,
		Content:   content,
		Anonymous: in.Anonymous,
		BirthClub: pregnancy.BirthClub(author.DueDate),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.posts.Insert(ctx, p.ID, p); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("forum_post").Inc()
	return s.viewPost(ctx, s.newAuthors(), p, author), nil
}

// ListPosts returns posts newest first, restricted to birthClub when set.
func (s *Service) ListPosts(ctx context.Context, viewer *models.Identity, birthClub string) ([]*PostView, error) {
	filter := store.Filter{}
	if bc := strings.TrimSpace(birthClub); bc != "" {
		filter["birthClub"] = bc
	}
	var posts []*models.ForumPost
	q := store.Query{Filter: filter, Sort: []store.SortField{store.Desc("createdAt")}}
	if err := s.posts.Find(ctx, q, &posts); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	a := s.newAuthors()
	out := make([]*PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, s.viewPost(ctx, a, p, viewer))
	}
	return out, nil
}

func (s *Service) loadPost(ctx context.Context, id string) (*models.ForumPost, error) {
	var p models.ForumPost
	if err := s.posts.FindByID(ctx, id, &p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgPostNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return &p, nil
}

// GetPost is readable by any authenticated user.
func (s *Service) GetPost(ctx context.Context, id string, viewer *models.Identity) (*PostView, error) {
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.viewPost(ctx, s.newAuthors(), p, viewer), nil
}

// UpdatePost lets the author edit content or the anonymous flag.
func (s *Service) UpdatePost(ctx context.Context, id string, requester *models.Identity, patch PostPatch) (*PostView, error) {
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanAccess(requester, p) {
		return nil, apperr.Forbidden(msgForbidden)
	}
	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if len([]rune(content)) < minPostLength {
			return nil, apperr.Validation(msgContentTooShort)
		}
		p.Content = content
	}
	if patch.Anonymous != nil {
		p.Anonymous = *patch.Anonymous
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.posts.Replace(ctx, p.ID, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgPostNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	return s.viewPost(ctx, s.newAuthors(), p, requester), nil
}

// DeletePost removes a post and its comments.
func (s *Service) DeletePost(ctx context.Context, id string, requester *models.Identity) error {
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanAccess(requester, p) {
		return apperr.Forbidden(msgForbidden)
	}
	if _, err := s.comments.DeleteMany(ctx, store.Filter{"postId": p.ID}); err != nil {
		return apperr.Server(err, msgServer)
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Server(err, msgServer)
	}
	return nil
}

// FlagPost marks a post for moderation. Any authenticated user may flag.
func (s *Service) FlagPost(ctx context.Context, id string, viewer *models.Identity) (*PostView, error) {
	p, err := s.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Flagged = true
	p.UpdatedAt = s.now().UTC()
	if err := s.posts.Set(ctx, p.ID, store.Filter{"flagged": true, "updatedAt": p.UpdatedAt}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgPostNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	logger.Infof("forum: post %s flagged by %s", p.ID, viewer.ID)
	return s.viewPost(ctx, s.newAuthors(), p, viewer), nil
}

// AddComment attaches a comment to an existing post.
func (s *Service) AddComment(ctx context.Context, postID string, author *models.Identity, in CommentInput) (*CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.Validation(msgCommentRequired)
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &models.Comment{
		ID:        store.NewID(),
		PostID:    postID,
		UserID:    author.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Insert(ctx, c.ID, c); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	metrics.RecordsCreated.WithLabelValues("comment").Inc()
	return s.viewComment(ctx, s.newAuthors(), c), nil
}

// ListComments returns a post's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, postID string) ([]*CommentView, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}
	var comments []*models.Comment
	q := store.Query{Filter: store.Filter{"postId": postID}, Sort: []store.SortField{store.Asc("createdAt")}}
	if err := s.comments.Find(ctx, q, &comments); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	a := s.newAuthors()
	out := make([]*CommentView, 0, len(comments))
	for _, c := range comments {
		out = append(out, s.viewComment(ctx, a, c))
	}
	return out, nil
}

func (s *Service) loadComment(ctx context.Context, postID, commentID string) (*models.Comment, error) {
	var c models.Comment
	if err := s.comments.FindByID(ctx, commentID, &c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound(msgCommentNotFound)
		}
		return nil, apperr.Server(err, msgServer)
	}
	if c.PostID != postID {
		return nil, apperr.NotFound(msgCommentNotFound)
	}
	return &c, nil
}

// DeleteComment lets a commenter remove their own comment.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID string, requester *models.Identity) error {
	c, err := s.loadComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if !access.CanAccess(requester, c) {
		return apperr.Forbidden(msgForbidden)
	}
	if err := s.comments.Delete(ctx, c.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Server(err, msgServer)
	}
	return nil
}

// FlagComment marks a comment for moderation.
func (s *Service) FlagComment(ctx context.Context, postID, commentID string, viewer *models.Identity) (*CommentView, error) {
	c, err := s.loadComment(ctx, postID, commentID)
	if err != nil {
		return nil, err
	}
	c.Flagged = true
	c.UpdatedAt = s.now().UTC()
	if err := s.comments.Set(ctx, c.ID, store.Filter{"flagged": true, "updatedAt": c.UpdatedAt}); err != nil {
		return nil, apperr.Server(err, msgServer)
	}
	logger.Infof("forum: comment %s flagged by %s", c.ID, viewer.ID)
	return s.viewComment(ctx, s.newAuthors(), c), nil
}

// DeleteByUser removes a user's posts (with every comment on them) and the
// user's comments on other posts.
func (s *Service) DeleteByUser(ctx context.Context, userID string) error {
	var posts []*models.ForumPost
	if err := s.posts.Find(ctx, store.Query{Filter: store.Filter{"userId": userID}}, &posts); err != nil {
		return err
	}
	for _, p := range posts {
		if _, err := s.comments.DeleteMany(ctx, store.Filter{"postId": p.ID}); err != nil {
			return err
		}
	}
	if _, err := s.posts.DeleteMany(ctx, store.Filter{"userId": userID}); err != nil {
		return err
	}
	_, err := s.comments.DeleteMany(ctx, store.Filter{"userId": userID})
	return err
}
