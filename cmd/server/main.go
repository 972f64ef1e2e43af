package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/crewlog/crewlog/internal/config"
	"github.com/crewlog/crewlog/internal/domain/activity"
	"github.com/crewlog/crewlog/internal/domain/comment"
	"github.com/crewlog/crewlog/internal/domain/file"
	"github.com/crewlog/crewlog/internal/domain/group"
	"github.com/crewlog/crewlog/internal/domain/membership"
	"github.com/crewlog/crewlog/internal/domain/project"
	"github.com/crewlog/crewlog/internal/domain/task"
	"github.com/crewlog/crewlog/internal/sqlite"
	"github.com/crewlog/crewlog/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	membershipRepo := sqlite.NewMembershipRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	groupRepo := sqlite.NewGroupRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	commentRepo := sqlite.NewCommentRepository(db)
	fileRepo := sqlite.NewFileRepository(db)
	activityRepo := sqlite.NewActivityRepository(db)
	tokenRepo := sqlite.NewTokenRepository(db)

	resolver := membership.NewService(membershipRepo, projectRepo, groupRepo, logger)
	recorder := activity.NewRecorder(activityRepo, projectRepo, time.Now)

	projectSvc := project.NewService(projectRepo, membershipRepo, userRepo, resolver, recorder, db, logger, nil)
	groupSvc := group.NewService(groupRepo, membershipRepo, resolver, recorder, db, logger, nil)
	taskSvc := task.NewService(taskRepo, resolver, recorder, db, logger, nil)
	commentSvc := comment.NewService(commentRepo, taskRepo, resolver, recorder, db, logger, nil)
	fileSvc := file.NewService(fileRepo, taskRepo, resolver, recorder, db, logger, nil)
	activitySvc := activity.NewService(activityRepo, resolver, taskRepo, logger)

	router := transport.NewRouter(transport.Services{
		Projects: projectSvc,
		Groups:   groupSvc,
		Tasks:    taskSvc,
		Comments: commentSvc,
		Files:    fileSvc,
		Activity: activitySvc,
	}, transport.AuthMiddleware(tokenRepo), logger)

	addr := cfg.Server.Addr()
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
