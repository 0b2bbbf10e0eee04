package idempotency

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func openStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "idem.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_ClaimReservesKeyOnce(t *testing.T) {
	store := openStore(t, 0)

	rec, claimed, err := store.Claim("k")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Nil(t, rec)

	rec, claimed, err = store.Claim("k")
	require.NoError(t, err)
	assert.False(t, claimed)
	require.NotNil(t, rec)
	assert.True(t, rec.InFlight)

	require.NoError(t, store.Complete("k", Record{Status: 200, Body: []byte("first")}))

	rec, claimed, err = store.Claim("k")
	require.NoError(t, err)
	assert.False(t, claimed)
	require.NotNil(t, rec)
	assert.False(t, rec.InFlight)
	assert.Equal(t, "first", string(rec.Body))
}

func TestStore_ReleaseFreesKey(t *testing.T) {
	store := openStore(t, 0)

	_, claimed, err := store.Claim("k")
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, store.Release("k"))

	_, claimed, err = store.Claim("k")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestStore_ExpiredRecordIgnored(t *testing.T) {
	store := openStore(t, time.Minute)

	require.NoError(t, store.Complete("k", Record{Status: 200, StoredAt: time.Now().Add(-time.Hour)}))

	rec, err := store.Get("k")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, claimed, err := store.Claim("k")
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestMiddleware_ReplaysResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := openStore(t, 0)

	calls := 0
	r := gin.New()
	r.Use(Middleware(store, nil, zap.NewNop()))
	r.POST("/bookings/:id/confirm", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"success": true, "calls": calls})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/bookings/1/confirm", nil)
		req.Header.Set(HeaderKey, "abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	second := send()

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderReplayed))
}

func TestMiddleware_DoesNotRecordServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := openStore(t, 0)

	calls := 0
	r := gin.New()
	r.Use(Middleware(store, nil, zap.NewNop()))
	r.POST("/x", func(c *gin.Context) {
		calls++
		c.Status(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderKey, "abc")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}

func TestMiddleware_ConcurrentDuplicateRunsOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := openStore(t, 0)

	var calls atomic.Int32
	entered := make(chan struct{})
	unblock := make(chan struct{})

	r := gin.New()
	r.Use(Middleware(store, nil, zap.NewNop()))
	r.POST("/contracts/1/payments", func(c *gin.Context) {
		if calls.Add(1) == 1 {
			close(entered)
			<-unblock
		}
		c.JSON(http.StatusCreated, gin.H{"success": true})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/contracts/1/payments", nil)
		req.Header.Set(HeaderKey, "pay-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() { firstDone <- send() }()
	<-entered

	duplicate := send()
	assert.Equal(t, http.StatusConflict, duplicate.Code)
	assert.Contains(t, duplicate.Body.String(), "CONFLICT")

	close(unblock)
	first := <-firstDone
	assert.Equal(t, http.StatusCreated, first.Code)

	replay := send()
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get(HeaderReplayed))
	assert.Equal(t, int32(1), calls.Load())
}

func TestMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := openStore(t, 0)

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, _ any) {
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	r.Use(Middleware(store, nil, zap.NewNop()))
	r.POST("/x", func(c *gin.Context) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set(HeaderKey, "abc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	rec, err := store.Get("/x|abc")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
