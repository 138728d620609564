// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	attendancefeature "github.com/staffhub/staffhub/internal/app/features/attendance"
	healthfeature "github.com/staffhub/staffhub/internal/app/features/health"
	leavesfeature "github.com/staffhub/staffhub/internal/app/features/leaves"
	loginfeature "github.com/staffhub/staffhub/internal/app/features/login"
	mefeature "github.com/staffhub/staffhub/internal/app/features/me"
	projectsfeature "github.com/staffhub/staffhub/internal/app/features/projects"
	tasksfeature "github.com/staffhub/staffhub/internal/app/features/tasks"
	teamsfeature "github.com/staffhub/staffhub/internal/app/features/teams"
	usersfeature "github.com/staffhub/staffhub/internal/app/features/users"
	attendancestore "github.com/staffhub/staffhub/internal/app/store/attendance"
	leavestore "github.com/staffhub/staffhub/internal/app/store/leaves"
	projectstore "github.com/staffhub/staffhub/internal/app/store/projects"
	taskstore "github.com/staffhub/staffhub/internal/app/store/tasks"
	teamstore "github.com/staffhub/staffhub/internal/app/store/teams"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. StaffHub exposes a JSON API: a public
// health check and login endpoint, and bearer-token-guarded resources for
// users, teams, projects, tasks, attendance, and leave requests.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.TokenKey, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	// Stores share the user store so list/get responses can embed
	// owner, leader, and assignee summaries.
	users := userstore.New(deps.MongoDatabase)
	teams := teamstore.New(deps.MongoDatabase, users)
	projects := projectstore.New(deps.MongoDatabase, users)
	tasks := taskstore.New(deps.MongoDatabase, users)
	attendance := attendancestore.New(deps.MongoDatabase, users)
	leaves := leavestore.New(deps.MongoDatabase, users)

	errLog := httperr.NewErrorLogger(logger)
	loginLimiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Global auth middleware: resolves a bearer token into the request
	// context when present. Route groups decide whether one is required.
	r.Use(auth.Verifier(tokens))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Route("/api", func(api chi.Router) {
		loginHandler := loginfeature.NewHandler(users, tokens, loginLimiter, errLog, logger)
		api.Mount("/auth", loginfeature.Routes(loginHandler))

		meHandler := mefeature.NewHandler(users, errLog, logger)
		api.Mount("/me", mefeature.Routes(meHandler))

		usersHandler := usersfeature.NewHandler(users, errLog, logger)
		api.Mount("/users", usersfeature.Routes(usersHandler))

		teamsHandler := teamsfeature.NewHandler(teams, errLog, logger)
		api.Mount("/teams", teamsfeature.Routes(teamsHandler))

		projectsHandler := projectsfeature.NewHandler(projects, errLog, logger)
		api.Mount("/projects", projectsfeature.Routes(projectsHandler))

		tasksHandler := tasksfeature.NewHandler(tasks, teams, users, errLog, logger)
		api.Mount("/tasks", tasksfeature.Routes(tasksHandler))

		attendanceHandler := attendancefeature.NewHandler(attendance, errLog, logger)
		api.Mount("/attendance", attendancefeature.Routes(attendanceHandler))

		leavesHandler := leavesfeature.NewHandler(leaves, errLog, logger)
		api.Mount("/leaves", leavesfeature.Routes(leavesHandler))
	})

	return r, nil
}
