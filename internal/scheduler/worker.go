package scheduler

import (
	"context"
	"errors"
	"fmt"

	leadsservice "intake_backend/internal/leads/service"
	"intake_backend/platform/config"
	"intake_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  *leadsservice.Service
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads *leadsservice.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		leads:  leads,
		log:    log,
	}

	mux.HandleFunc(TaskLeadFollowUp, w.handleLeadFollowUp)

	return w, nil
}

// handleLeadFollowUp re-pings the roster with assignment links when a lead
// is still unclaimed at reminder time.
func (w *Worker) handleLeadFollowUp(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	assigned, err := w.leads.IsAssigned(ctx, leadID)
	if errors.Is(err, leadsservice.ErrLeadNotFound) {
		w.log.Warn("follow-up for unknown lead", "leadId", payload.LeadID)
		return nil
	}
	if err != nil {
		return err
	}

	if assigned {
		w.log.Info("lead already assigned, follow-up skipped", "leadId", payload.LeadID)
		return nil
	}

	w.log.Info("lead still unassigned, re-pinging roster",
		"leadId", payload.LeadID,
		"sessionId", payload.SessionID)
	w.leads.SendAssignmentLinks(ctx, leadID)
	return nil
}

// Run starts the worker and blocks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()
	return w.server.Run(w.mux)
}
