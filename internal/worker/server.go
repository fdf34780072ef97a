package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/service"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/tasks"
)

// WorkerServer wraps the asynq server running the background handlers: session
// finalization and the periodic presence sweep.
type WorkerServer struct {
	server          *asynq.Server
	log             *logrus.Entry
	sessionService  *service.SessionService
	presenceService *service.PresenceService
}

func NewWorkerServer(
	redisOpt asynq.RedisClientOpt,
	sessionService *service.SessionService,
	presenceService *service.PresenceService,
	logger *logrus.Logger,
) *WorkerServer {
	if sessionService == nil {
		panic("SessionService cannot be nil for WorkerServer")
	}
	if presenceService == nil {
		panic("PresenceService cannot be nil for WorkerServer")
	}
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				taskID := ""
				if rw := task.ResultWriter(); rw != nil {
					taskID = rw.TaskID()
				}
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_id":   taskID,
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:          server,
		log:             logEntry,
		sessionService:  sessionService,
		presenceService: presenceService,
	}
}

// Start runs the worker server. Call from its own goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionFinalize, NewSessionFinalizeHandler(ws.sessionService).ProcessTask)
	mux.HandleFunc(tasks.TypePresencePrune, NewPresencePruneHandler(ws.presenceService).ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown stops the worker server gracefully.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
