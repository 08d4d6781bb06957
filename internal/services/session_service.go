package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crestline-ir/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidSession = errors.New("invalid session token")

type sessionData struct {
	UserID    uint
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
}

// SessionService keeps login sessions in memory with a periodic expiry sweep.
type SessionService struct {
	sessions map[string]sessionData
	mutex    sync.RWMutex
	ttl      time.Duration
	logger   *zap.Logger
	metrics  *metrics.MetricsCollector
	stopChan chan struct{}
}

func NewSessionService(ttl time.Duration, logger *zap.Logger, metricsCollector *metrics.MetricsCollector) *SessionService {
	ss := &SessionService{
		sessions: make(map[string]sessionData),
		ttl:      ttl,
		logger:   logger.With(zap.String("service", "session_service")),
		metrics:  metricsCollector,
		stopChan: make(chan struct{}),
	}

	go ss.startBackgroundCleanup(context.Background())

	return ss
}

func (ss *SessionService) startBackgroundCleanup(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ss.stopChan:
			return
		case <-ticker.C:
			ss.cleanupExpired()
		}
	}
}

func (ss *SessionService) cleanupExpired() {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	now := time.Now()
	for token, session := range ss.sessions {
		if now.After(session.ExpiresAt) {
			delete(ss.sessions, token)
			ss.metrics.IncrementCounter("sessions.expired", nil)
		}
	}
}

func (ss *SessionService) Create(userID uint, ipAddress, userAgent string) string {
	token := uuid.New().String()
	ss.mutex.Lock()
	ss.sessions[token] = sessionData{
		UserID:    userID,
		ExpiresAt: time.Now().Add(ss.ttl),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	ss.mutex.Unlock()

	ss.logger.Info("Created new session",
		zap.Uint("user_id", userID),
		zap.String("token", token[:8]+"..."),
		zap.String("ip_address", ipAddress))
	return token
}

func (ss *SessionService) Validate(token string) (uint, bool) {
	ss.mutex.RLock()
	sd, exists := ss.sessions[token]
	ss.mutex.RUnlock()
	if !exists || time.Now().After(sd.ExpiresAt) {
		return 0, false
	}
	return sd.UserID, true
}

func (ss *SessionService) Destroy(token string) {
	ss.mutex.Lock()
	delete(ss.sessions, token)
	ss.mutex.Unlock()
}

func (ss *SessionService) Stop() {
	close(ss.stopChan)
}
