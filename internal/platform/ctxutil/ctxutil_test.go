// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/sec"
)

/*
TestContext_RequestID verifies that Request IDs can be injected and retrieved.
*/
func TestContext_RequestID(t *testing.T) {
	ctx := context.Background()

	// 1. Initially should be empty
	assert.Empty(t, ctxutil.GetRequestID(ctx))

	// 2. Inject and retrieve
	ctx = ctxutil.WithRequestID(ctx, "0190f3b2-6f7c-7cc0-8a1e-3f2b5d6c7e8f")
	assert.Equal(t, "0190f3b2-6f7c-7cc0-8a1e-3f2b5d6c7e8f", ctxutil.GetRequestID(ctx))
}

/*
TestContext_Logger falls back to the default logger, including for a stored nil.
*/
func TestContext_Logger(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctx))
	assert.Same(t, logger, ctxutil.GetLogger(ctxutil.WithLogger(ctx, logger)))
	assert.Same(t, slog.Default(), ctxutil.GetLogger(ctxutil.WithLogger(ctx, nil)))
}

/*
TestContext_AuthUser verifies that access claims can be stored in context.
*/
func TestContext_AuthUser(t *testing.T) {
	ctx := context.Background()

	// 1. Anonymous
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	_, ok := ctxutil.AccountID(ctx)
	assert.False(t, ok)

	// 2. Authenticated
	ctx = ctxutil.WithAuthUser(ctx, &sec.AccessClaims{AccountID: 42, Email: "admin@madhouse.test"})

	retrieved := ctxutil.GetAuthUser(ctx)
	require.NotNil(t, retrieved)
	assert.Equal(t, "admin@madhouse.test", retrieved.Email)

	id, ok := ctxutil.AccountID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
