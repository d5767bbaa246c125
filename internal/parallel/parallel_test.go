package parallel

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor_VisitsEveryIndexOnce(t *testing.T) {
	configs := map[string]Config{
		"sequential": {Enabled: false},
		"parallel":   {Enabled: true, NumWorkers: 4, MinChunkSize: 8},
		"default":    DefaultConfig(),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			const n = 1000
			hits := make([]int32, n)
			For(n, func(i int) {
				atomic.AddInt32(&hits[i], 1)
			}, cfg)
			for i, h := range hits {
				assert.Equal(t, int32(1), h, "index %d", i)
			}
		})
	}
}

func TestForRange_Empty(t *testing.T) {
	called := false
	ForRange(0, func(int, int) { called = true }, DefaultConfig())
	assert.False(t, called)
}

func TestWithWorkers(t *testing.T) {
	cfg := DefaultConfig().WithWorkers(1)
	assert.False(t, cfg.Enabled)
	cfg = cfg.WithWorkers(8)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 8, cfg.NumWorkers)
}
