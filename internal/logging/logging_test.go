package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/diewo77/go-records/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "records.log")
	logger, closer, err := New(config.LogConfig{Level: "debug", Format: "json", Path: path})
	require.NoError(t, err)

	logger.WithField("client_id", 7).Info("Updated client")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"client_id":7`)
	assert.Contains(t, string(b), "Updated client")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewRejectsLevel(t *testing.T) {
	_, _, err := New(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	fallback := Discard()
	entry := FromContext(context.Background(), fallback)
	assert.Same(t, fallback, entry.Logger)

	scoped := logrus.NewEntry(fallback).WithField("request_id", "abc")
	ctx := WithEntry(context.Background(), scoped)
	assert.Equal(t, "abc", FromContext(ctx, fallback).Data["request_id"])
}
