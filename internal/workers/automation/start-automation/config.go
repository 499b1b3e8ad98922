package startautomation

import (
	"time"

	"service-automation/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig reads the worker section. Queuing a job only touches the
// stores, so the default timeout is short.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{Timeout: timeout}
}
