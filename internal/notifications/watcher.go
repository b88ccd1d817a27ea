package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/jmuralla/taskhive-backend/pkg/logger"
	redisclient "github.com/jmuralla/taskhive-backend/pkg/redis"
)

type changeSubscriber interface {
	Subscribe(ctx context.Context, channels ...string) (*redislib.PubSub, error)
}

// Watcher drives the live feed: it subscribes to the notification change
// channel and, on every change ping (or periodic resync), re-reads the
// collection, reaps what is fully acknowledged, re-projects each
// connected viewer's items and pushes them through the hub.
//
// A failed refresh is logged and the watcher stays subscribed; the next
// ping or resync tick retries naturally.
type Watcher struct {
	repo       Repository
	service    Service
	hub        *Hub
	subscriber changeSubscriber
	logg       *logger.Logger
	resync     time.Duration
}

// NewWatcher wires the feed watcher.
func NewWatcher(repo Repository, svc Service, hub *Hub, subscriber changeSubscriber, logg *logger.Logger, resync time.Duration) *Watcher {
	if resync <= 0 {
		resync = 30 * time.Second
	}
	return &Watcher{
		repo:       repo,
		service:    svc,
		hub:        hub,
		subscriber: subscriber,
		logg:       logg,
		resync:     resync,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	pubsub, err := w.subscriber.Subscribe(ctx, redisclient.NotificationChannel)
	if err != nil {
		return err
	}
	defer func() { _ = pubsub.Close() }()

	ticker := time.NewTicker(w.resync)
	defer ticker.Stop()

	changes := pubsub.Channel()

	if w.logg != nil {
		w.logg.Info(ctx, "notification feed watcher started")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			w.refresh(ctx)
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

// RefreshViewer recomputes and pushes one viewer's feed, used for the
// initial snapshot right after a connection subscribes.
func (w *Watcher) RefreshViewer(ctx context.Context, viewerID uuid.UUID) {
	items, err := w.service.Feed(ctx, viewerID)
	if err != nil {
		if w.logg != nil {
			w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "feed snapshot failed")
		}
		return
	}
	w.hub.Publish(viewerID, items)
}

func (w *Watcher) refresh(ctx context.Context) {
	viewers := w.hub.Viewers()
	if len(viewers) == 0 {
		return
	}

	if _, err := w.service.ReapPass(ctx); err != nil && w.logg != nil {
		w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "feed reap pass failed")
	}

	records, err := w.repo.ListAll(ctx)
	if err != nil {
		if w.logg != nil {
			w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "feed refresh failed")
		}
		return
	}

	for _, viewerID := range viewers {
		w.hub.Publish(viewerID, Project(records, viewerID))
	}
}
