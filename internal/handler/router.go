package handler

import (
	"embed"
	"html/template"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"schoolportal/internal/apperr"
	"schoolportal/internal/auth"
	"schoolportal/internal/httpmiddleware"
	"schoolportal/internal/users"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

func init() {
	if v, isValidator := binding.Validator.Engine().(*validator.Validate); isValidator {
		v.RegisterTagNameFunc(apperr.JSONTagName)
	}
}

// Router builds the gin engine with every route and middleware.
// CORS is only enabled for the configured origins; without any the portal is same-origin only.
func (h *Handler) Router() (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(h.cfg.TrustedProxies); err != nil {
		return nil, errors.Wrap(err, "trusted proxies")
	}
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	if len(h.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     h.cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{httpmiddleware.RequestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           24 * time.Hour,
		}))
	}
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(httpmiddleware.NewRateLimiter(h.cfg.RateLimitPerMin).Middleware())
	r.Use(httpmiddleware.Instrument())

	if err := h.loadTemplates(r); err != nil {
		return nil, err
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	r.Use(auth.Gate(h.Sessions, h.cfg.CookieName))

	r.GET("/", h.Home)
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	r.GET("/student", auth.RequireRole(users.RoleStudent), h.StudentDashboard)
	r.GET("/faculty", auth.RequireRole(users.RoleFaculty), h.FacultyDashboard)
	r.GET("/admin", auth.RequireRole(users.RoleAdmin), h.AdminDashboard)

	api := r.Group("/api", auth.RequireAuth())
	api.POST("/mark-attendance", auth.RequireRole(users.RoleFaculty), h.MarkAttendance)
	api.POST("/submit-marks", auth.RequireRole(users.RoleFaculty), h.SubmitMarks)
	api.POST("/add-user", auth.RequireRole(users.RoleAdmin), h.AddUser)
	api.POST("/delete-user", auth.RequireRole(users.RoleAdmin), h.DeleteUser)
	api.GET("/reports/attendance.xlsx", auth.RequireRole(users.RoleAdmin, users.RoleFaculty), h.AttendanceReport)

	return r, nil
}

func (h *Handler) loadTemplates(r *gin.Engine) error {
	if h.cfg.TemplateDir != "" {
		matches, err := filepath.Glob(filepath.Join(h.cfg.TemplateDir, "*.tmpl"))
		if err != nil || len(matches) == 0 {
			return errors.Errorf("no templates in %s", h.cfg.TemplateDir)
		}
		r.LoadHTMLFiles(matches...)
		return nil
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return errors.Wrap(err, "parse templates")
	}
	r.SetHTMLTemplate(tmpl)
	return nil
}
