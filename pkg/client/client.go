// Package client is a typed Go client for the MamaCare API. Authenticated
// calls take the caller's *Session explicitly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/mamacare/mamacare-api/internal/models"
)

// FallbackMessage is shown when an error response carries no message.
const FallbackMessage = "Something went wrong. Please try again."

// ErrNoSession is returned by authenticated calls made without a token.
var ErrNoSession = errors.New("not signed in")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Kind    string
	Details string
}

func (e *APIError) Error() string { return e.Message }

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var e *APIError
	return errors.As(err, &e) && e.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// New targets baseURL, e.g. "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, sess *Session, method, path string, query url.Values, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		body = bytes.NewReader(b)
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if sess != nil {
		if !sess.Valid() {
			return ErrNoSession
		}
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); err == nil {
		_ = json.Unmarshal(b, &body)
	}
	e.Message = strings.TrimSpace(body.Message)
	if e.Message == "" {
		e.Message = FallbackMessage
	}
	e.Kind = body.Error
	e.Details = body.Details
	return e
}

// Profile is the signed-in user with pregnancy progress.
type Profile struct {
	models.User
	WeeksPregnant   *int    `json:"weeksPregnant"`
	Trimester       *string `json:"trimester"`
	ProgressPercent *int    `json:"progressPercent"`
	DaysRemaining   *int    `json:"daysRemaining"`
	BirthClub       string  `json:"birthClub,omitempty"`
	Token           string  `json:"token,omitempty"`
	RefreshToken    string  `json:"refreshToken,omitempty"`
}

func (p *Profile) session() *Session {
	return &Session{Token: p.Token, RefreshToken: p.RefreshToken, UserID: p.ID, Name: p.Name, IsAdmin: p.IsAdmin}
}

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	LMP       string `json:"lmp"`
	DOB       string `json:"dob,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Language  string `json:"language,omitempty"`
}

// Register creates an account and returns the new session.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*Profile, *Session, error) {
	var p Profile
	if err := c.do(ctx, nil, http.MethodPost, "/users/register", nil, in, &p); err != nil {
		return nil, nil, err
	}
	return &p, p.session(), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Profile, *Session, error) {
	var p Profile
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, nil, http.MethodPost, "/users/login", nil, in, &p); err != nil {
		return nil, nil, err
	}
	return &p, p.session(), nil
}

// Refresh exchanges the session's refresh token and updates sess in place.
func (c *Client) Refresh(ctx context.Context, sess *Session) error {
	if sess == nil || sess.RefreshToken == "" {
		return ErrNoSession
	}
	var out struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	in := map[string]string{"refreshToken": sess.RefreshToken}
	if err := c.do(ctx, nil, http.MethodPost, "/users/refresh", nil, in, &out); err != nil {
		return err
	}
	sess.Token = out.Token
	if out.RefreshToken != "" {
		sess.RefreshToken = out.RefreshToken
	}
	return nil
}

func (c *Client) Logout(ctx context.Context, sess *Session) error {
	if !sess.Valid() {
		return ErrNoSession
	}
	in := map[string]string{"refreshToken": sess.RefreshToken}
	return c.do(ctx, sess, http.MethodPost, "/users/logout", nil, in, nil)
}

func (c *Client) Profile(ctx context.Context, sess *Session) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, sess, http.MethodGet, "/users/profile", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile sends patch as given; empty values leave fields unchanged on
// the server. The fresh token in the response is copied into sess.
func (c *Client) UpdateProfile(ctx context.Context, sess *Session, patch map[string]string) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, sess, http.MethodPut, "/users/profile", nil, patch, &p); err != nil {
		return nil, err
	}
	if p.Token != "" {
		sess.Token = p.Token
	}
	sess.Name = p.Name
	return &p, nil
}

func (c *Client) DeleteAccount(ctx context.Context, sess *Session) error {
	return c.do(ctx, sess, http.MethodDelete, "/users/profile", nil, nil, nil)
}

type WellnessEntry struct {
	Date            string   `json:"date,omitempty"`
	Mood            string   `json:"mood,omitempty"`
	Symptoms        []string `json:"symptoms,omitempty"`
	SleepHours      *float64 `json:"sleepHours,omitempty"`
	HydrationLiters *float64 `json:"hydrationLiters,omitempty"`
	NutritionNotes  string   `json:"nutritionNotes,omitempty"`
}

func (c *Client) ListWellness(ctx context.Context, sess *Session) ([]models.WellnessLog, error) {
	var out []models.WellnessLog
	if err := c.do(ctx, sess, http.MethodGet, "/wellness", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateWellness(ctx context.Context, sess *Session, in WellnessEntry) (*models.WellnessLog, error) {
	var out models.WellnessLog
	if err := c.do(ctx, sess, http.MethodPost, "/wellness", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteWellness(ctx context.Context, sess *Session, id string) error {
	return c.do(ctx, sess, http.MethodDelete, "/wellness/"+url.PathEscape(id), nil, nil, nil)
}

type ReminderEntry struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	DateTime     string `json:"dateTime"`
	ReminderType string `json:"reminderType,omitempty"`
}

// ListReminders returns reminders soonest first; typ may be empty.
func (c *Client) ListReminders(ctx context.Context, sess *Session, typ string) ([]models.Reminder, error) {
	var q url.Values
	if typ != "" {
		q = url.Values{"type": {typ}}
	}
	var out []models.Reminder
	if err := c.do(ctx, sess, http.MethodGet, "/reminders", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReminder(ctx context.Context, sess *Session, in ReminderEntry) (*models.Reminder, error) {
	var out models.Reminder
	if err := c.do(ctx, sess, http.MethodPost, "/reminders", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteReminder(ctx context.Context, sess *Session, id string) error {
	return c.do(ctx, sess, http.MethodDelete, "/reminders/"+url.PathEscape(id), nil, nil, nil)
}

// Post is a forum post as the API renders it.
type Post struct {
	models.ForumPost
	Author *models.Author `json:"author,omitempty"`
}

type Comment struct {
	models.Comment
	Author *models.Author `json:"author,omitempty"`
}

// ListPosts returns posts newest first, optionally for one birth club.
func (c *Client) ListPosts(ctx context.Context, sess *Session, birthClub string) ([]Post, error) {
	var q url.Values
	if birthClub != "" {
		q = url.Values{"birthClub": {birthClub}}
	}
	var out []Post
	if err := c.do(ctx, sess, http.MethodGet, "/forum", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreatePost(ctx context.Context, sess *Session, content string, anonymous bool) (*Post, error) {
	var out Post
	in := map[string]interface{}{"content": content, "anonymous": anonymous}
	if err := c.do(ctx, sess, http.MethodPost, "/forum", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddComment(ctx context.Context, sess *Session, postID, content string) (*Comment, error) {
	var out Comment
	in := map[string]string{"content": content}
	if err := c.do(ctx, sess, http.MethodPost, "/forum/"+url.PathEscape(postID)+"/comments", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListComments(ctx context.Context, sess *Session, postID string) ([]Comment, error) {
	var out []Comment
	if err := c.do(ctx, sess, http.MethodGet, "/forum/"+url.PathEscape(postID)+"/comments", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FlagPost(ctx context.Context, sess *Session, postID string) error {
	return c.do(ctx, sess, http.MethodPost, "/forum/"+url.PathEscape(postID)+"/flag", nil, nil, nil)
}

// Clinics is public; city and typ may be empty.
func (c *Client) Clinics(ctx context.Context, city, typ string) ([]models.Clinic, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if typ != "" {
		q.Set("type", typ)
	}
	var out []models.Clinic
	if err := c.do(ctx, nil, http.MethodGet, "/clinics", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Milestones(ctx context.Context) ([]models.PregnancyMilestone, error) {
	var out []models.PregnancyMilestone
	if err := c.do(ctx, nil, http.MethodGet, "/pregnancy", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Guidance returns entries for week, or every entry when week < 0.
func (c *Client) Guidance(ctx context.Context, week int) ([]models.GuidanceEntry, error) {
	var q url.Values
	if week >= 0 {
		q = url.Values{"week": {fmt.Sprint(week)}}
	}
	var out []models.GuidanceEntry
	if err := c.do(ctx, nil, http.MethodGet, "/guidance", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
