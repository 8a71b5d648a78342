package lastfm

import (
	"context"
	"io"
	"net/http"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForToken_ReceivesToken(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		tokens := make(chan string, 1)
		go func() {
			time.Sleep(2 * time.Minute)
			tokens <- "delayed-token"
		}()

		token, err := waitForToken(context.Background(), tokens, 5*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "delayed-token", token)
	})
}

func TestWaitForToken_Timeout(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		start := time.Now()
		token, err := waitForToken(context.Background(), make(chan string), 5*time.Minute)
		require.ErrorIs(t, err, ErrAuthTimeout)
		assert.Empty(t, token)
		assert.Equal(t, 5*time.Minute, time.Since(start))
	})
}

func TestWaitForToken_Cancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(time.Second)
			cancel()
		}()
		_, err := waitForToken(ctx, make(chan string), 5*time.Minute)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestAuthServer_Callback(t *testing.T) {
	as, err := StartAuthServer("127.0.0.1:0")
	require.NoError(t, err)
	defer as.Shutdown()

	resp, err := http.Get(as.CallbackURL() + "?token=abc123")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "Authorization Successful")

	token, err := as.WaitForToken(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestAuthServer_CallbackWithoutToken(t *testing.T) {
	as, err := StartAuthServer("127.0.0.1:0")
	require.NoError(t, err)
	defer as.Shutdown()

	resp, err := http.Get(as.CallbackURL())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "Authorization Failed")
}

func TestGetAuthURL(t *testing.T) {
	c := New("key", "secret")
	assert.Equal(t, "https://www.last.fm/api/auth/?api_key=key&token=tok", c.GetAuthURL("tok", ""))
	assert.Equal(t,
		"https://www.last.fm/api/auth/?api_key=key&token=tok&cb=http://localhost:9847/callback",
		c.GetAuthURL("tok", "http://localhost:9847/callback"))
	assert.False(t, c.IsAuthenticated())
	c.SetSessionKey("sk")
	assert.True(t, c.IsAuthenticated())
}
