package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmuralla/taskhive-backend/api/controllers"
	"github.com/jmuralla/taskhive-backend/api/middleware"
	"github.com/jmuralla/taskhive-backend/internal/activity"
	"github.com/jmuralla/taskhive-backend/internal/auth"
	"github.com/jmuralla/taskhive-backend/internal/notifications"
	"github.com/jmuralla/taskhive-backend/internal/tasks"
	"github.com/jmuralla/taskhive-backend/internal/teams"
	"github.com/jmuralla/taskhive-backend/internal/users"
	"github.com/jmuralla/taskhive-backend/pkg/auth/session"
	"github.com/jmuralla/taskhive-backend/pkg/config"
	"github.com/jmuralla/taskhive-backend/pkg/logger"
	"github.com/jmuralla/taskhive-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the HTTP surface needs. The websocket feed
// pieces are optional; when Hub is nil the route is not mounted.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Redis         *redis.Client
	Sessions      sessionManager
	AuthService   auth.Service
	Register      auth.RegisterService
	Users         users.Service
	Teams         teams.Service
	Tasks         tasks.Service
	Notifications notifications.Service
	Activity      activity.Service
	FeedHub       *notifications.Hub
	FeedWatcher   *notifications.Watcher
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.Sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Sessions, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		if deps.Redis != nil {
			r.Use(middleware.Idempotency(deps.Redis, logg))
		}

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/", controllers.UserDirectory(deps.Users, logg))
			r.Get("/me", controllers.MyProfile(deps.Users, logg))
			r.Put("/me", controllers.UpdateMyProfile(deps.Users, logg))
			r.Get("/me/logins", controllers.MyLoginHistory(deps.Users, logg))
			r.Post("/me/avatar/presign", controllers.PresignAvatar(deps.Users, logg))
		})

		r.Route("/v1/teams", func(r chi.Router) {
			r.With(middleware.RequireHead(logg)).Post("/", controllers.CreateTeam(deps.Teams, logg))
			r.Get("/", controllers.ListMyTeams(deps.Teams, logg))
			r.Get("/{teamId}", controllers.GetTeam(deps.Teams, logg))
		})

		r.Route("/v1/tasks", func(r chi.Router) {
			r.With(middleware.RequireHead(logg)).Post("/", controllers.CreateTask(deps.Tasks, logg))
			r.Get("/", controllers.ListTasks(deps.Tasks, logg))
			r.Get("/summary", controllers.TaskSummary(deps.Tasks, logg))
			r.Route("/{taskId}", func(r chi.Router) {
				r.Get("/", controllers.GetTask(deps.Tasks, logg))
				r.With(middleware.RequireHead(logg)).Patch("/", controllers.UpdateTask(deps.Tasks, logg))
				r.With(middleware.RequireHead(logg)).Delete("/", controllers.DeleteTask(deps.Tasks, logg))
				r.Post("/start", controllers.StartTask(deps.Tasks, logg))
				r.Post("/complete", controllers.CompleteTask(deps.Tasks, logg))
				r.Post("/restart", controllers.RestartTask(deps.Tasks, logg))
			})
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationFeed(deps.Notifications, logg))
			r.Post("/{recordId}/ack", controllers.AcknowledgeNotification(deps.Notifications, logg))
			if deps.FeedHub != nil {
				r.Get("/feed", controllers.NotificationFeedSocket(deps.FeedHub, deps.FeedWatcher, logg))
			}
		})

		r.Get("/v1/activity", controllers.ActivityTrail(deps.Activity, logg))
	})

	return r
}
