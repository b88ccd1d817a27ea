package cron

import (
	"context"
	"fmt"

	"github.com/jmuralla/taskhive-backend/pkg/logger"
)

// NotificationReapJobParams configure the read-receipt reaper.
type NotificationReapJobParams struct {
	Logger *logger.Logger
	Reaper notificationReaper
}

type notificationReaper interface {
	ReapPass(ctx context.Context) (int, error)
}

// NewNotificationReapJob constructs the job that deletes notification
// records once every addressed party has acknowledged them.
func NewNotificationReapJob(params NotificationReapJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reaper == nil {
		return nil, fmt.Errorf("notification reaper required")
	}
	return &notificationReapJob{
		logg:   params.Logger,
		reaper: params.Reaper,
	}, nil
}

type notificationReapJob struct {
	logg   *logger.Logger
	reaper notificationReaper
}

func (j *notificationReapJob) Name() string { return "notification-reap" }

func (j *notificationReapJob) Run(ctx context.Context) error {
	reaped, err := j.reaper.ReapPass(ctx)
	if err != nil {
		return fmt.Errorf("notification reap: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "records_reaped", reaped)
	j.logg.Info(logCtx, "notification reap complete")
	return nil
}
