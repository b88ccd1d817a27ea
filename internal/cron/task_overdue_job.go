package cron

import (
	"context"
	"fmt"

	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// TaskOverdueJobParams configure the overdue sweep.
type TaskOverdueJobParams struct {
	Logger   *logger.Logger
	Detector overdueDetector
}

type overdueDetector interface {
	DetectOverdue(ctx context.Context) (int, error)
}

// NewTaskOverdueJob constructs the job that moves running tasks past
// their due date to overdue.
func NewTaskOverdueJob(params TaskOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Detector == nil {
		return nil, fmt.Errorf("overdue detector required")
	}
	return &taskOverdueJob{
		logg:     params.Logger,
		detector: params.Detector,
	}, nil
}

type taskOverdueJob struct {
	logg     *logger.Logger
	detector overdueDetector
}

func (j *taskOverdueJob) Name() string { return "task-overdue-sweep" }

func (j *taskOverdueJob) Run(ctx context.Context) error {
	moved, err := j.detector.DetectOverdue(ctx)
	if err != nil {
		return fmt.Errorf("overdue sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "tasks_moved", moved)
	j.logg.Info(logCtx, "overdue sweep complete")
	return nil
}
