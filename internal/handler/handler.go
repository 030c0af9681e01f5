// Package handler exposes the portal over HTTP.
package handler

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"schoolportal/internal/academics"
	"schoolportal/internal/apperr"
	"schoolportal/internal/attendance"
	"schoolportal/internal/auth"
	"schoolportal/internal/clock"
	"schoolportal/internal/dashboard"
	"schoolportal/internal/report"
	"schoolportal/internal/session"
	"schoolportal/internal/store"
	"schoolportal/internal/users"
)

// Deps are the services behind the routes.
type Deps struct {
	DB         *store.DB
	Users      *users.Service
	Attendance *attendance.Service
	Academics  *academics.Service
	Dashboard  *dashboard.Reader
	Sessions   *session.Manager
	Reports    *report.Exporter
}

// NewDeps wires the domain services over db and a session store.
func NewDeps(db *store.DB, sessions session.Store, clk clock.Clock, opts session.Options) Deps {
	userSvc := users.NewService(users.NewRepository(db.Client))
	ledger := attendance.NewRepository(db.Client)
	att := attendance.NewService(ledger, userSvc, clk)
	acad := academics.NewService(academics.NewRepository(db.Client), userSvc, clk)
	return Deps{
		DB:         db,
		Users:      userSvc,
		Attendance: att,
		Academics:  acad,
		Dashboard:  dashboard.NewReader(userSvc, att, acad),
		Sessions:   session.NewManager(userSvc, sessions, opts),
		Reports:    report.NewExporter(ledger),
	}
}

// Config holds the HTTP-level settings.
type Config struct {
	CookieName      string
	CookieSecure    bool
	TemplateDir     string
	RateLimitPerMin int
	AllowedOrigins  []string
	TrustedProxies  []string
}

// Handler serves pages and the JSON API.
type Handler struct {
	Deps
	cfg Config
}

func New(deps Deps, cfg Config) *Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "portal_session"
	}
	return &Handler{Deps: deps, cfg: cfg}
}

// numeric accepts JSON numbers as well as numeric strings, since browser forms post strings.
type numeric string

func (n *numeric) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*n = numeric(strings.TrimSpace(s))
	return nil
}

func (n numeric) int64(field string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
	if err != nil {
		return 0, apperr.Invalid(field, field+" must be an integer")
	}
	return v, nil
}

func (n numeric) int(field string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(n)))
	if err != nil {
		return 0, apperr.Invalid(field, field+" must be an integer")
	}
	return v, nil
}

func ok(c *gin.Context, message string) {
	if browserForm(c) {
		backToDashboard(c, "notice", message)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

func fail(c *gin.Context, status int, message string) {
	if browserForm(c) {
		backToDashboard(c, "alert", message)
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// browserForm reports a plain HTML form post from a page, as opposed to a fetch or API client.
func browserForm(c *gin.Context) bool {
	return c.Request.Method == http.MethodPost &&
		c.ContentType() == gin.MIMEPOSTForm &&
		strings.Contains(c.GetHeader("Accept"), gin.MIMEHTML)
}

// backToDashboard answers a form post with a redirect to the caller's dashboard carrying message.
func backToDashboard(c *gin.Context, key, message string) {
	target := auth.IdentityFrom(c).Home() + "?" + url.Values{key: {message}}.Encode()
	c.Redirect(http.StatusSeeOther, target)
	c.Abort()
}

// writeError maps domain errors to API responses. Anything unexpected is logged and hidden.
func writeError(c *gin.Context, err error) {
	if verr, isValidation := apperr.AsValidation(err); isValidation {
		fail(c, http.StatusBadRequest, verr.Error())
		return
	}
	switch {
	case errors.Is(err, users.ErrDuplicateEmail):
		fail(c, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, users.ErrSelfDeletion):
		fail(c, http.StatusBadRequest, "Cannot delete your own account")
	case errors.Is(err, users.ErrNotFound):
		fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, auth.ErrAuthenticationRequired):
		fail(c, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, auth.ErrAccessDenied):
		fail(c, http.StatusForbidden, "Access Denied")
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// render answers with the template or, when the client asks for JSON, with the bare view.
func render(c *gin.Context, tmpl, title string, view any) {
	c.Negotiate(http.StatusOK, gin.Negotiate{
		Offered:  []string{gin.MIMEHTML, gin.MIMEJSON},
		HTMLName: tmpl,
		HTMLData: gin.H{
			"title":  title,
			"user":   auth.IdentityFrom(c),
			"view":   view,
			"notice": c.Query("notice"),
			"alert":  c.Query("alert"),
		},
		JSONData: view,
	})
}

func pageError(c *gin.Context, err error) {
	log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	if wantsJSON(c) {
		fail(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.String(http.StatusInternalServerError, "Internal server error")
	c.Abort()
}
