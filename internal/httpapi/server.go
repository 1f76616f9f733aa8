// Package httpapi exposes the REST surface: auth, profile and task CRUD.
// Handlers translate service errors into the {status, msg} envelope the
// clients expect; scheduling itself happens inside the task service.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"task-reminder/internal/repository"
	"task-reminder/internal/service"
)

// Server wires the gin router to the services.
type Server struct {
	router *gin.Engine
	log    zerolog.Logger
}

func New(tokens *service.TokenService, auth *service.AuthService, tasks *service.TaskService, users *repository.UserRepository, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), cors.Default())

	s := &Server{
		router: router,
		log:    log.With().Str("component", "http").Logger(),
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/signup", s.handleSignup(auth))
		authGroup.POST("/login", s.handleLogin(auth, tokens))
		authGroup.POST("/otp", s.handleVerifyOTP(auth, tokens))
		authGroup.POST("/otp/resend", s.handleResendOTP(auth))
		authGroup.POST("/reset-password", s.handleResetPassword(auth))
	}

	authed := router.Group("/api", AuthRequired(tokens, users))
	{
		authed.GET("/profile", s.handleProfile())
		authed.PUT("/profile/telegram", s.handleLinkTelegram(users))

		authed.GET("/tasks", s.handleListTasks(tasks))
		authed.GET("/tasks/:taskId", s.handleGetTask(tasks))
		authed.POST("/tasks", s.handleCreateTask(tasks))
		authed.PUT("/tasks/:taskId", s.handleUpdateTask(tasks))
		authed.DELETE("/tasks/:taskId", s.handleDeleteTask(tasks))
		authed.PATCH("/tasks/:taskId/complete", s.handleCompleteTask(tasks))
	}

	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Info().Str("addr", addr).Msg("listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
