package logging

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/outguard/internal/config"
)

func TestNewSampledCore_Disabled(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	assert.Equal(t, core, newSampledCore(core, SamplingConfig{Enabled: false}))
}

func TestNewSampledCore_ErrorsNeverSampled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled: true,
		Tick:    config.Duration(time.Second),
		Levels:  DefaultLevelSamplingConfig(),
	})
	logger := &Logger{zap: zap.New(sampled), config: NewDefaultConfig()}

	for i := 0; i < 200; i++ {
		logger.Error(context.Background(), "incident log write failed")
	}

	assert.Equal(t, 200, observed.FilterMessage("incident log write failed").Len())
}

func TestNewSampledCore_InfoSampled(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	sampled := newSampledCore(core, SamplingConfig{
		Enabled: true,
		Tick:    config.Duration(time.Minute),
		Levels: map[zapcore.Level]LevelSamplingConfig{
			zapcore.InfoLevel: {Initial: 5, Thereafter: 0},
		},
	})
	logger := &Logger{zap: zap.New(sampled), config: NewDefaultConfig()}

	for i := 0; i < 50; i++ {
		logger.Info(context.Background(), "scan complete")
	}

	assert.Equal(t, 5, observed.FilterMessage("scan complete").Len())
}

func TestLevelFilterCore(t *testing.T) {
	core, _ := observer.New(TraceLevel)

	below := &levelFilterCore{Core: core, maxLevel: zapcore.WarnLevel, hasMax: true}
	assert.True(t, below.Enabled(zapcore.DebugLevel))
	assert.True(t, below.Enabled(zapcore.WarnLevel))
	assert.False(t, below.Enabled(zapcore.ErrorLevel))

	above := &levelFilterCore{Core: core, minLevel: zapcore.ErrorLevel, hasMin: true}
	assert.False(t, above.Enabled(zapcore.WarnLevel))
	assert.True(t, above.Enabled(zapcore.ErrorLevel))

	child, ok := above.With([]zapcore.Field{zap.String("k", "v")}).(*levelFilterCore)
	assert.True(t, ok)
	assert.False(t, child.Enabled(zapcore.InfoLevel))
}
