package clog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestAttributesHandlerAppendsContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewAttributesHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := ContextWithSlog(context.Background())
	AddAttribute(ctx, "actor_id", "user-1")
	AddAttributes(ctx, map[string]any{"task_id": "t1"})

	logger.InfoContext(ctx, "moved")

	m := logLine(t, &buf)
	assert.Equal(t, "moved", m["msg"])
	assert.Equal(t, "user-1", m["actor_id"])
	assert.Equal(t, "t1", m["task_id"])
}

func TestAttributesHandlerWithoutArmedContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewAttributesHandler(slog.NewJSONHandler(&buf, nil)))

	// AddAttribute on an unarmed context is a no-op, not a panic.
	ctx := context.Background()
	AddAttribute(ctx, "ignored", true)
	logger.InfoContext(ctx, "plain")

	m := logLine(t, &buf)
	assert.Equal(t, "plain", m["msg"])
	_, ok := m["ignored"]
	assert.False(t, ok)
}

func TestAddErrorAndStack(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewAttributesHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := ContextWithSlog(context.Background())
	AddError(ctx, errors.New("boom"))
	AddStack(ctx, "goroutine 1 [running]")

	logger.ErrorContext(ctx, "request failed")

	m := logLine(t, &buf)
	_, ok := m[ErrorAttributeKey]
	assert.True(t, ok)
	assert.Equal(t, "goroutine 1 [running]", m[StackAttributeKey])
}
