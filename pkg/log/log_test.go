package log

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithCorrelationID(t *testing.T) {
	ctx, id := WithCorrelationID(context.Background())

	assert.NotEmpty(t, id)
	assert.Equal(t, id, GetCorrelationID(ctx))
	assert.Empty(t, GetCorrelationID(context.Background()))
}

func TestConfigureFallsBackToInfo(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)

	Configure("not-a-level")
	assert.Equal(t, logrus.InfoLevel, logrus.GetLevel())

	Configure("debug")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
