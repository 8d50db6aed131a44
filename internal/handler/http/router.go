package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/devcamper/internal/domain"
	"github.com/utafrali/devcamper/internal/service"
	"github.com/utafrali/devcamper/pkg/health"
	"github.com/utafrali/devcamper/pkg/middleware"
)

const serviceName = "devcamper"

// Services are the controllers the router dispatches to.
type Services struct {
	Bootcamps *service.BootcampService
	Courses   *service.CourseService
	Reviews   *service.ReviewService
	Users     *service.UserService
}

// RouterConfig holds the edge settings of the router.
type RouterConfig struct {
	CORS         middleware.CORSConfig
	RateLimit    middleware.RateLimitConfig
	MaxBodyBytes int64
	MaxUpload    int64
	PprofCIDRs   []string

	// Uploads serves stored photos under /uploads. Nil disables the route.
	Uploads http.Handler
}

// NewRouter creates a chi router with all devcamper routes registered. ctx
// bounds the lifetime of the rate limiter's background sweeper.
func NewRouter(
	ctx context.Context,
	svcs Services,
	validate middleware.TokenValidator,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Recovery())
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.Metrics(serviceName))
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	middleware.MountPprof(r, cfg.PprofCIDRs, logger)

	if cfg.Uploads != nil {
		r.With(middleware.CacheControl(3600)).Handle("/uploads/*", http.StripPrefix("/uploads/", cfg.Uploads))
	}

	bootcamps := NewBootcampHandler(svcs.Bootcamps, cfg.MaxUpload, logger)
	courses := NewCourseHandler(svcs.Courses, logger)
	reviews := NewReviewHandler(svcs.Reviews, logger)
	authH := NewAuthHandler(svcs.Users, logger)
	users := NewUserHandler(svcs.Users, logger)

	authenticated := middleware.Auth(validate)
	publishers := middleware.RequireRole(string(domain.RolePublisher), string(domain.RoleAdmin))
	reviewers := middleware.RequireRole(string(domain.RoleUser), string(domain.RoleAdmin))
	admins := middleware.RequireRole(string(domain.RoleAdmin))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(ctx, cfg.RateLimit, logger))
		r.Use(ContentTypeJSON)
		r.Use(LimitJSONBody(cfg.MaxBodyBytes))

		r.Route("/bootcamps", func(r chi.Router) {
			r.Get("/", bootcamps.List)
			r.Get("/radius/{zipcode}/{distance}", bootcamps.SearchByRadius)
			r.With(authenticated, publishers).Post("/", bootcamps.Create)

			r.Route("/{bootcampId}", func(r chi.Router) {
				r.Get("/", bootcamps.Get)
				r.With(authenticated, publishers).Put("/", bootcamps.Update)
				r.With(authenticated, publishers).Delete("/", bootcamps.Delete)
				r.With(authenticated, publishers).Put("/photo", bootcamps.UploadPhoto)

				r.Get("/courses", courses.List)
				r.With(authenticated, publishers).Post("/courses", courses.Create)

				r.Get("/reviews", reviews.List)
				r.With(authenticated, reviewers).Post("/reviews", reviews.Create)
			})
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", courses.List)
			r.Get("/{id}", courses.Get)
			r.With(authenticated, publishers).Put("/{id}", courses.Update)
			r.With(authenticated, publishers).Delete("/{id}", courses.Delete)
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviews.List)
			r.Get("/{id}", reviews.Get)
			r.With(authenticated, reviewers).Put("/{id}", reviews.Update)
			r.With(authenticated, reviewers).Delete("/{id}", reviews.Delete)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authH.Register)
			r.Post("/login", authH.Login)
			r.With(authenticated).Get("/me", authH.Me)
			r.With(authenticated).Put("/updatedetails", authH.UpdateDetails)
			r.With(authenticated).Put("/updatepassword", authH.UpdatePassword)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authenticated, admins)
			r.Get("/", users.List)
			r.Post("/", users.Create)
			r.Get("/{id}", users.Get)
			r.Put("/{id}", users.Update)
			r.Delete("/{id}", users.Delete)
		})
	})

	return r
}
