package app

import (
	"context"
	"fmt"
	"time"

	"projectjs/internal/shared/observability"
)

// Health reports the state of the last load and the history store.
func (a *App) Health(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	a.mu.RLock()
	reg, lastErr, lastLoad := a.current, a.lastErr, a.lastLoad
	a.mu.RUnlock()

	switch {
	case lastErr != nil:
		status.Status = "degraded"
		status.Components["registry"] = fmt.Sprintf("last load failed: %v", lastErr)
	case reg == nil:
		status.Status = "degraded"
		status.Components["registry"] = "not loaded"
	default:
		status.Components["registry"] = fmt.Sprintf("ok (%d packages, %d classes, loaded %s)",
			reg.Len(), reg.ClassCount(), lastLoad.UTC().Format(time.RFC3339))
	}

	if a.history != nil {
		status.Components["history"] = "ok"
	} else {
		status.Components["history"] = "disabled"
	}
	return status
}
