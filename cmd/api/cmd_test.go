package main

import (
	"context"
	"testing"

	"pawpals/internal/adapters/broker/rabbitmq"
	"pawpals/internal/config"
	"pawpals/internal/platform/logger"
	"pawpals/internal/ports/moderation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "worker"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	assert.NotNil(t, serveCmd.Flags().Lookup("migrate"))
}

func TestBuildModerator_DefaultsToAllowAll(t *testing.T) {
	m, err := buildModerator(config.ModerationConfig{}, logger.NewNop())
	require.NoError(t, err)
	assert.IsType(t, moderation.AllowAll{}, m)

	_, err = buildModerator(config.ModerationConfig{WordListPath: "/nonexistent/words.yaml"}, logger.NewNop())
	assert.Error(t, err)
}

func TestLogDue(t *testing.T) {
	assert.NoError(t, logDue(context.Background(), rabbitmq.ReminderDue{ReminderID: "r1"}))
}
