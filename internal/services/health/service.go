package health

import (
	"context"
	"time"
)

// Status values reported by the health endpoint.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
}

// NewService constructs a new health service. db may be nil when the
// submissions archive runs in memory.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status returns the health payload and whether every dependency answered.
func (s *Service) Status(ctx context.Context) (map[string]string, bool) {
	out := map[string]string{"status": StatusHealthy}
	if s == nil || s.DB == nil {
		return out, true
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		out["status"] = StatusDegraded
		out["database"] = "unreachable"
		return out, false
	}
	out["database"] = "ok"
	return out, true
}
