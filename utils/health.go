package utils

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything that can report reachability, such as a Redis or Mongo client wrapper.
type Pinger func(ctx context.Context) error

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Status    string          `json:"status"`
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor keeps the latest health snapshot of the named dependencies.
type HealthMonitor struct {
	pingers map[string]Pinger
	mu      sync.RWMutex
	current HealthStatus
}

func NewHealthMonitor(pingers map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{
		pingers: pingers,
		current: HealthStatus{Status: "ok", Services: map[string]bool{}},
	}
}

// Status returns latest stored health snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Check pings every dependency once and stores the result.
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	services := make(map[string]bool, len(h.pingers))
	status := "ok"
	for name, ping := range h.pingers {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := ping(pctx)
		cancel()
		services[name] = err == nil
		if err != nil {
			status = "degraded"
			GetLogger().Warn("Health check failed", zap.String("service", name), zap.Error(err))
		}
	}

	snapshot := HealthStatus{Status: status, Services: services, CheckedAt: time.Now().UTC()}
	h.mu.Lock()
	h.current = snapshot
	h.mu.Unlock()
	return snapshot
}

// Start performs periodic health checks until ctx is done.
func (h *HealthMonitor) Start(ctx context.Context, every time.Duration) {
	go func() {
		h.Check(ctx)
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}
