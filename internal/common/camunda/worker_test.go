package camunda

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"service-automation/internal/common/config"
	"service-automation/internal/common/logger"
)

func TestWorkers_SkipsDisabledWorker(t *testing.T) {
	w := NewWorkers(nil, logger.NewTestLogger(t))

	assert.False(t, w.Start("start-automation", config.WorkerConfig{Enabled: false}, nil))
	assert.Empty(t, w.opened)

	w.Close()
}
