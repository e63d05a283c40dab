package rest

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/authz"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/employee"
	"github.com/ogurasousui/taskdesk-http-clean-arch/internal/core/task"
)

// Dependencies はルーター構築に必要な依存をまとめます。
type Dependencies struct {
	Logger         *slog.Logger
	Policy         *authz.Policy
	Sessions       *SessionVerifier
	Employees      employee.UseCase
	Tasks          task.UseCase
	AllowedOrigins []string
}

// NewRouter はページと API のルーティングを組み立てます。
// 社員 API は管理者のみ、タスク API は認証済みの全員に公開されます。
func NewRouter(deps Dependencies) *gin.Engine {
	engine := gin.New()
	engine.Use(
		gin.Recovery(),
		requestLogger(deps.Logger),
		cors.New(corsConfig(deps.AllowedOrigins)),
		sessionMiddleware(deps.Sessions, deps.Policy),
	)

	engine.GET("/", landingPage)
	engine.GET("/sign-in", signInPage)
	engine.GET("/sign-up", signUpPage)

	pages := engine.Group("/", pageGate())
	pages.GET("/dashboard", dashboardPage)
	pages.GET("/admin/dashboard", adminDashboardPage)
	pages.GET("/employee/dashboard", employeeDashboardPage)

	employeeHandler := NewEmployeeHandler(deps.Employees)
	taskHandler := NewTaskHandler(deps.Tasks)
	syncHandler := NewSyncHandler(deps.Employees)

	api := engine.Group("/api", requireSession())

	employees := api.Group("/employees", requireAdmin())
	employees.GET("", employeeHandler.List)
	employees.POST("", employeeHandler.Create)
	employees.GET("/:id", employeeHandler.Get)
	employees.PUT("/:id", employeeHandler.Update)
	employees.DELETE("/:id", employeeHandler.Delete)

	tasks := api.Group("/tasks")
	tasks.GET("", taskHandler.List)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PUT("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)

	api.POST("/sync-user", syncHandler.Sync)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
