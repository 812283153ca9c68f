package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mamacare/mamacare-api/internal/apperr"
	"github.com/mamacare/mamacare-api/internal/config"
	"github.com/mamacare/mamacare-api/internal/models"
	"github.com/mamacare/mamacare-api/internal/pregnancy"
	"github.com/mamacare/mamacare-api/internal/sessions"
	"github.com/mamacare/mamacare-api/internal/tokens"
	"github.com/mamacare/mamacare-api/pkg/logger"
	"github.com/mamacare/mamacare-api/pkg/metrics"
)

const (
	msgRequiredFields = "Please fill all required fields"
	msgUserExists     = "User already exists"
	msgLoginRequired  = "Email and password are required"
	msgBadCredentials = "Invalid email or password"
	msgUserNotFound   = "User not found"
	msgInvalidRefresh = "Invalid or expired refresh token"
	msgServerError    = "Server error"
	defaultAccessTTL  = 30 * 24 * time.Hour
	defaultRefreshTTL = 60 * 24 * time.Hour
)

// Purger removes every record a user owns in one collection.
type Purger interface {
	DeleteByUser(ctx context.Context, userID string) error
}

// Options wires the optional collaborators of Service.
type Options struct {
	// Sessions issues refresh tokens; nil disables refresh/logout sessions.
	Sessions *sessions.Service
	// Blacklist revokes access tokens on logout; nil disables revocation.
	Blacklist *sessions.Blacklist
	// Purgers run, in order, before an account is deleted.
	Purgers []Purger
	Now     func() time.Time
}

// Service encapsulates user-related business logic
type Service struct {
	repo      UserRepository
	cfg       *config.Config
	sessions  *sessions.Service
	blacklist *sessions.Blacklist
	purgers   []Purger
	now       func() time.Time
}

func NewService(r UserRepository, cfg *config.Config, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:      r,
		cfg:       cfg,
		sessions:  opts.Sessions,
		blacklist: opts.Blacklist,
		purgers:   opts.Purgers,
		now:       now,
	}
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	LMP       string `json:"lmp"`
	DOB       string `json:"dob"`
	Phone     string `json:"phone"`
	Language  string `json:"language"`
}

// ProfilePatch lists the profile fields a user may change. Nil or empty
// values leave the stored field untouched.
type ProfilePatch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	DOB      *string `json:"dob"`
	LMP      *string `json:"lmp"`
	Phone    *string `json:"phone"`
	Language *string `json:"language"`
	Password *string `json:"password"`
}

// Profile is a user plus derived pregnancy progress, optionally with tokens.
type Profile struct {
	*models.User
	pregnancy.Progress
	DaysRemaining *int   `json:"daysRemaining"`
	BirthClub     string `json:"birthClub,omitempty"`
	Token         string `json:"token,omitempty"`
	RefreshToken  string `json:"refreshToken,omitempty"`
}

// Tokens is the result of a refresh.
type Tokens struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := pregnancy.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return nil, apperr.Validation("Invalid " + field + " date")
	}
	return &t, nil
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Profile, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	email := normalizeEmail(in.Email)
	if first == "" || last == "" || email == "" || in.Password == "" || strings.TrimSpace(in.LMP) == "" {
		return nil, apperr.Validation(msgRequiredFields)
	}
	lmp, err := parseOptionalDate("lmp", in.LMP)
	if err != nil {
		return nil, err
	}
	dob, err := parseOptionalDate("dob", in.DOB)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if existing != nil {
		return nil, apperr.Validation(msgUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	due := pregnancy.DueDateFromLMP(*lmp)
	u := &models.User{
		Name:     first + " " + last,
		Email:    email,
		Password: string(hash),
		DOB:      dob,
		LMP:      lmp,
		DueDate:  &due,
		Phone:    strings.TrimSpace(in.Phone),
		Language: strings.TrimSpace(in.Language),
		IsAdmin:  s.cfg.Admin.IsAdminEmail(email),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Validation(msgUserExists)
		}
		return nil, apperr.Server(err, msgServerError)
	}
	metrics.RecordsCreated.WithLabelValues("user").Inc()
	logger.Infof("registered user %s", u.ID)
	return s.signIn(ctx, u)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*Profile, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation(msgLoginRequired)
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if u == nil {
		return nil, apperr.Validation(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, apperr.Validation(msgBadCredentials)
	}
	return s.signIn(ctx, u)
}

func (s *Service) signIn(ctx context.Context, u *models.User) (*Profile, error) {
	p := s.profileOf(u)
	token, err := tokens.GenerateAccessToken(s.cfg, u, s.accessTTL())
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	p.Token = token
	if s.sessions != nil {
		refresh, err := s.sessions.CreateSession(ctx, u.ID, s.refreshTTL())
		if err != nil {
			return nil, apperr.Server(err, msgServerError)
		}
		p.RefreshToken = refresh
	}
	return p, nil
}

func (s *Service) accessTTL() time.Duration {
	if s.cfg.JWT.AccessTokenTTL > 0 {
		return s.cfg.JWT.AccessTokenTTL
	}
	return defaultAccessTTL
}

func (s *Service) refreshTTL() time.Duration {
	if s.cfg.JWT.RefreshTokenTTL > 0 {
		return s.cfg.JWT.RefreshTokenTTL
	}
	return defaultRefreshTTL
}

func (s *Service) profileOf(u *models.User) *Profile {
	now := s.now()
	return &Profile{
		User:          u,
		Progress:      pregnancy.ProgressFromLMP(u.LMP, now),
		DaysRemaining: pregnancy.DaysRemaining(u.DueDate, now),
		BirthClub:     pregnancy.BirthClub(u.DueDate),
	}
}

// Profile returns the stored profile with progress fields.
func (s *Service) Profile(ctx context.Context, id string) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	return s.profileOf(u), nil
}

// UpdateProfile applies patch and returns the profile with a fresh token.
func (s *Service) UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}

	if v := trimmed(patch.Name); v != "" {
		u.Name = v
	}
	if v := normalizeEmail(deref(patch.Email)); v != "" && v != u.Email {
		other, err := s.repo.GetByEmail(ctx, v)
		if err != nil {
			return nil, apperr.Server(err, msgServerError)
		}
		if other != nil && other.ID != u.ID {
			return nil, apperr.Validation(msgUserExists)
		}
		u.Email = v
	}
	if dob, err := parseOptionalDate("dob", deref(patch.DOB)); err != nil {
		return nil, err
	} else if dob != nil {
		u.DOB = dob
	}
	if lmp, err := parseOptionalDate("lmp", deref(patch.LMP)); err != nil {
		return nil, err
	} else if lmp != nil {
		due := pregnancy.DueDateFromLMP(*lmp)
		u.LMP = lmp
		u.DueDate = &due
	}
	if v := trimmed(patch.Phone); v != "" {
		u.Phone = v
	}
	if v := trimmed(patch.Language); v != "" {
		u.Language = v
	}
	if v := deref(patch.Password); v != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(v), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperr.Server(err, msgServerError)
		}
		u.Password = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Validation(msgUserExists)
		}
		return nil, apperr.Server(err, msgServerError)
	}
	p := s.profileOf(u)
	token, err := tokens.GenerateAccessToken(s.cfg, u, s.accessTTL())
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	p.Token = token
	return p, nil
}

// Refresh exchanges a refresh token for a new access token, rotating the
// refresh token.
func (s *Service) Refresh(ctx context.Context, refresh string) (*Tokens, error) {
	if s.sessions == nil {
		return nil, apperr.Unauthenticated(msgInvalidRefresh)
	}
	sess, err := s.sessions.ValidateRefresh(ctx, refresh)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if sess == nil {
		return nil, apperr.Unauthenticated(msgInvalidRefresh)
	}
	u, err := s.repo.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if u == nil {
		_ = s.sessions.DeleteRefresh(ctx, refresh)
		return nil, apperr.Unauthenticated("Not authorized, user not found")
	}
	token, err := tokens.GenerateAccessToken(s.cfg, u, s.accessTTL())
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if err := s.sessions.DeleteRefresh(ctx, refresh); err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	next, err := s.sessions.CreateSession(ctx, u.ID, s.refreshTTL())
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	return &Tokens{Token: token, RefreshToken: next}, nil
}

// Logout revokes the presented access token until it expires and drops the
// refresh session, when given.
func (s *Service) Logout(ctx context.Context, accessToken string, expiresAt time.Time, refresh string) error {
	if accessToken != "" {
		if err := s.blacklist.Revoke(ctx, accessToken, expiresAt.Sub(s.now())); err != nil {
			return apperr.Server(err, msgServerError)
		}
	}
	if refresh != "" && s.sessions != nil {
		if err := s.sessions.DeleteRefresh(ctx, refresh); err != nil {
			return apperr.Server(err, msgServerError)
		}
	}
	return nil
}

// Delete removes the account and everything it owns.
func (s *Service) Delete(ctx context.Context, id string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return apperr.Server(err, msgServerError)
	}
	if u == nil {
		return apperr.NotFound(msgUserNotFound)
	}
	for _, p := range s.purgers {
		if err := p.DeleteByUser(ctx, id); err != nil {
			return apperr.Server(err, msgServerError)
		}
	}
	if s.sessions != nil {
		if err := s.sessions.DeleteUserSessions(ctx, id); err != nil {
			return apperr.Server(err, msgServerError)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Server(err, msgServerError)
	}
	logger.Infof("deleted user %s", id)
	return nil
}

// Promote grants the admin flag to the account registered under email.
func (s *Service) Promote(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	if u == nil {
		return nil, apperr.NotFound(msgUserNotFound)
	}
	if u.IsAdmin {
		return u, nil
	}
	u.IsAdmin = true
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, apperr.Server(err, msgServerError)
	}
	logger.Infof("promoted user %s to admin", u.ID)
	return u, nil
}

// ResolveIdentity loads the safe projection of a user; (nil, nil) when the
// user no longer exists.
func (s *Service) ResolveIdentity(ctx context.Context, id string) (*models.Identity, error) {
	return RepositoryResolver{Repo: s.repo}.ResolveIdentity(ctx, id)
}

// RepositoryResolver resolves identities without a Service, for collaborators
// that the Service itself depends on.
type RepositoryResolver struct {
	Repo UserRepository
}

func (r RepositoryResolver) ResolveIdentity(ctx context.Context, id string) (*models.Identity, error) {
	u, err := r.Repo.GetByID(ctx, id)
	if err != nil || u == nil {
		return nil, err
	}
	return u.Identity(), nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func trimmed(p *string) string {
	return strings.TrimSpace(deref(p))
}
