// internal/workers/calls/process-call-event/config.go
package processcallevent

import (
	"time"

	"call-intake-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	timeout := config.GetDuration(wc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Timeout:      timeout,
		MaxBodyBytes: 1 << 20,
	}
}
