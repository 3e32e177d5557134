package httputil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenRejectsIncompleteTLS(t *testing.T) {
	srv := NewServer(&Config{Addr: "127.0.0.1:0", TLS: TLSConfig{Enabled: true}}, http.NotFoundHandler())

	assert.Error(t, srv.Listen())
}

func TestListenReturnsNilAfterShutdown(t *testing.T) {
	srv := NewServer(&Config{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second}, http.NotFoundHandler())

	done := make(chan error, 1)
	go func() { done <- srv.Listen() }()

	// Shutdown may race the listener start; retry until Listen returns
	require.Eventually(t, func() bool {
		_ = srv.Shutdown(context.Background())
		select {
		case err := <-done:
			assert.NoError(t, err)
			return true
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
