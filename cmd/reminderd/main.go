package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/coursedesk/reminder-engine/internal/alert"
	"github.com/coursedesk/reminder-engine/internal/api"
	"github.com/coursedesk/reminder-engine/internal/cache"
	"github.com/coursedesk/reminder-engine/internal/client"
	"github.com/coursedesk/reminder-engine/internal/config"
	"github.com/coursedesk/reminder-engine/internal/dedup"
	"github.com/coursedesk/reminder-engine/internal/evaluator"
	"github.com/coursedesk/reminder-engine/internal/repo"
	"github.com/coursedesk/reminder-engine/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("reminder engine starting",
		"addr", cfg.Server.Address,
		"actor", cfg.Actor.ID,
		"batch", cfg.Messages.BatchSize,
		"redis", cfg.Redis.Enabled,
	)

	db, err := sql.Open("pgx", cfg.Database.PostgresURL)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	var dispatchLog cache.DispatchLog = cache.NopLog{}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		dispatchLog = cache.NewRedisLog(rdb, cfg.Redis.TTL)
	}

	tasks := repo.NewPostgresTaskRepo(db)
	courses := repo.NewPostgresCourseRepo(db)
	enrollments := repo.NewPostgresEnrollmentRepo(db)

	feed := alert.NewFeed()
	seen := dedup.NewSet()
	webhook := client.NewWebhookClient(cfg.Webhook.URL)

	taskDue := evaluator.NewTaskDue(
		tasks, seen, feed, cfg.Actor.ID,
		cfg.TaskDue.LookBack, cfg.TaskDue.LookAhead,
	)
	messages := evaluator.NewScheduledMessages(
		tasks, webhook, dispatchLog,
		cfg.Messages.BatchSize, cfg.Webhook.ContentMax,
	)
	reminders := evaluator.NewCourseReminders(
		courses, enrollments, webhook, dispatchLog,
		cfg.BusinessHours.StartHour, cfg.BusinessHours.EndHour,
		cfg.BusinessHours.Location,
	)

	evaluators, err := buildSchedulers(cfg, taskDue, messages, reminders)
	if err != nil {
		slog.Error("failed to build schedulers", "error", err)
		os.Exit(1)
	}

	for _, s := range evaluators {
		s.Start()
	}

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: loggingMiddleware(api.Router(api.NewHandler(evaluators, tasks, feed))),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}

		// Stop waits for each in-flight pass to finish its writes.
		for _, s := range evaluators {
			s.Stop()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("engine exited with error", "error", err)
		os.Exit(1)
	}

	slog.Info("reminder engine stopped")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func buildSchedulers(
	cfg *config.Config,
	taskDue *evaluator.TaskDue,
	messages *evaluator.ScheduledMessages,
	reminders *evaluator.CourseReminders,
) (map[string]*scheduler.Scheduler, error) {
	out := make(map[string]*scheduler.Scheduler, 3)

	taskDueSched, err := scheduler.New("taskdue", cfg.TaskDue.Interval, taskDue.Run)
	if err != nil {
		return nil, err
	}
	out["taskdue"] = taskDueSched

	messagesSched, err := scheduler.New("messages", cfg.Messages.Interval, messages.Run)
	if err != nil {
		return nil, err
	}
	out["messages"] = messagesSched

	remindersSched, err := scheduler.New("reminders", cfg.Reminders.Interval, reminders.Run)
	if err != nil {
		return nil, err
	}
	out["reminders"] = remindersSched

	return out, nil
}
