package presence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultHeartbeat is how often a session refreshes its record.
const DefaultHeartbeat = 30 * time.Second

type tracker interface {
	Track(ctx context.Context, key string, userID string) error
	Untrack(ctx context.Context, key string, userID string)
}

// Heartbeat tracks one session immediately on start and then every interval,
// and untracks it when stopped.
type Heartbeat struct {
	tracker  tracker
	key      string
	userID   string
	interval time.Duration
	log      *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewHeartbeat(t tracker, key string, userID string, interval time.Duration, log *zap.Logger) *Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeat
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Heartbeat{tracker: t, key: key, userID: userID, interval: interval, log: log}
}

// Start launches the heartbeat loop bound to ctx. Call it once.
func (h *Heartbeat) Start(ctx context.Context) {
	ctx, h.cancel = context.WithCancel(ctx)
	h.done = make(chan struct{})
	go h.run(ctx)
}

// Stop cancels the loop and waits until the session is untracked.
func (h *Heartbeat) Stop() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *Heartbeat) run(ctx context.Context) {
	defer close(h.done)
	defer func() {
		untrackCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.tracker.Untrack(untrackCtx, h.key, h.userID)
	}()

	h.beat(ctx)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.beat(ctx)
		}
	}
}

func (h *Heartbeat) beat(ctx context.Context) {
	if err := h.tracker.Track(ctx, h.key, h.userID); err != nil && ctx.Err() == nil {
		h.log.Warn("presence heartbeat failed", zap.String("user_id", h.userID), zap.Error(err))
	}
}
