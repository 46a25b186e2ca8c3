package presence

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultStaleAfter is how long a record survives without a heartbeat.
const DefaultStaleAfter = 45 * time.Second

type Config struct {
	Heartbeat  time.Duration
	StaleAfter time.Duration
}

// Service is the presence facade used by sessions and handlers.
type Service struct {
	channel *Channel
	mirror  *CacheMirror
	cfg     Config
	now     func() time.Time
	log     *zap.Logger
}

// NewService wires a channel and an optional cache mirror.
func NewService(channel *Channel, mirror *CacheMirror, cfg Config, log *zap.Logger) *Service {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = DefaultHeartbeat
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		channel: channel,
		mirror:  mirror,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
}

// Track records a heartbeat {user, online_at} for the session key.
func (s *Service) Track(ctx context.Context, key string, userID string) error {
	r := Record{UserID: userID, OnlineAt: s.now()}
	s.channel.Track(key, r)
	if s.mirror == nil {
		return nil
	}
	return s.mirror.Touch(ctx, userID, key, r.OnlineAt)
}

// Untrack drops the session key locally and from the mirror.
func (s *Service) Untrack(ctx context.Context, key string, userID string) {
	s.channel.Untrack(key)
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Clear(ctx, userID, key); err != nil {
		s.log.Warn("presence mirror clear failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// IsOnline checks local channel state first, then the shared mirror.
func (s *Service) IsOnline(ctx context.Context, userID string) (bool, error) {
	if Online(s.channel.State(), userID) {
		return true, nil
	}
	if s.mirror == nil {
		return false, nil
	}
	return s.mirror.Online(ctx, userID)
}

// Watch reports presence changes of userID.
func (s *Service) Watch(userID string, onChange func(online bool)) (*Watcher, error) {
	return Watch(s.channel, userID, onChange)
}

// StartHeartbeat tracks the session until ctx ends or the returned
// heartbeat is stopped.
func (s *Service) StartHeartbeat(ctx context.Context, key string, userID string) *Heartbeat {
	hb := NewHeartbeat(s, key, userID, s.cfg.Heartbeat, s.log)
	hb.Start(ctx)
	return hb
}

// RunSweeper untracks stale records until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context) {
	interval := s.cfg.StaleAfter / 3
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if keys := s.channel.Sweep(s.now(), s.cfg.StaleAfter); len(keys) > 0 {
				s.log.Info("presence swept stale sessions", zap.Int("count", len(keys)))
			}
		}
	}
}
