package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"schoolportal/internal/auth"
	"schoolportal/internal/metrics"
	"schoolportal/internal/session"
)

const invalidLogin = "Invalid email or password"

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Home sends users to their dashboard and everyone else to the login form.
func (h *Handler) Home(c *gin.Context) {
	c.Redirect(http.StatusFound, auth.IdentityFrom(c).Home())
}

// LoginPage shows the login form.
func (h *Handler) LoginPage(c *gin.Context) {
	if !auth.IdentityFrom(c).IsAnonymous() {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"title": "Login"})
}

// Login checks credentials and starts a session.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c)
		return
	}

	token, ident, err := h.Sessions.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, session.ErrInvalidCredentials) {
		h.loginFailed(c)
		return
	}
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.LoginError).Inc()
		pageError(c, err)
		return
	}
	metrics.Logins.WithLabelValues(metrics.LoginSuccess).Inc()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, int(h.Sessions.TTL().Seconds()), "/", "", h.cfg.CookieSecure, true)

	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful", "redirect": ident.Home(), "user": ident})
		return
	}
	c.Redirect(http.StatusFound, ident.Home())
}

// Unknown emails and wrong passwords produce the same response.
func (h *Handler) loginFailed(c *gin.Context) {
	metrics.Logins.WithLabelValues(metrics.LoginFailure).Inc()
	if wantsJSON(c) {
		fail(c, http.StatusUnauthorized, invalidLogin)
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"title": "Login", "error": invalidLogin})
}

// Logout destroys the session and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cfg.CookieName); err == nil && token != "" {
		if err := h.Sessions.Logout(c.Request.Context(), token); err != nil {
			pageError(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
	c.Redirect(http.StatusFound, "/login")
}

// StudentDashboard shows the signed-in student's records.
func (h *Handler) StudentDashboard(c *gin.Context) {
	view, err := h.Dashboard.Student(c.Request.Context(), auth.IdentityFrom(c).ID)
	if err != nil {
		pageError(c, err)
		return
	}
	render(c, "student.tmpl", "Student Dashboard", view)
}

// FacultyDashboard shows the roster and today's attendance.
func (h *Handler) FacultyDashboard(c *gin.Context) {
	view, err := h.Dashboard.Faculty(c.Request.Context())
	if err != nil {
		pageError(c, err)
		return
	}
	render(c, "faculty.tmpl", "Faculty Dashboard", view)
}

// AdminDashboard lists every user.
func (h *Handler) AdminDashboard(c *gin.Context) {
	view, err := h.Dashboard.Admin(c.Request.Context())
	if err != nil {
		pageError(c, err)
		return
	}
	render(c, "admin.tmpl", "Admin Dashboard", view)
}

// Healthz reports database and session store reachability.
func (h *Handler) Healthz(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := h.DB.Healthy(ctx)
	sessionsHealthy := h.Sessions.Ping(ctx) == nil
	status, code := "ok", http.StatusOK
	if !dbHealthy || !sessionsHealthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "db": dbHealthy, "sessions": sessionsHealthy})
}
