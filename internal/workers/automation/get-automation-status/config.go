package getautomationstatus

import (
	"time"

	"service-automation/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	// LogTail caps how many of the newest log lines are returned.
	LogTail int
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Config{Timeout: timeout, LogTail: 20}
}
