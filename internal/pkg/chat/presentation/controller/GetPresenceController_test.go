package controller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type presenceFunc func(ctx context.Context, userID string) (bool, error)

func (f presenceFunc) IsOnline(ctx context.Context, userID string) (bool, error) { return f(ctx, userID) }

func TestPresenceLookupFailureReadsOffline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.WarnLevel)
	ctl := NewGetPresenceController(presenceFunc(func(context.Context, string) (bool, error) {
		return true, errors.New("redis: connection refused")
	}), zap.New(core))

	r := gin.New()
	r.GET("/presence/:userId", ctl.Handle())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/presence/bob", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":"bob","online":false}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "presence lookup failed", logs.All()[0].Message)
}
