package server_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShutdownEndsSessionEventStreams(t *testing.T) {
	c := newConsole(t, true)
	c.login(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: c.server}
	srv.RegisterOnShutdown(c.server.Stop)
	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(ln)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+ln.Addr().String()+"/session/events?path=%2Fdashboard", nil)
	require.NoError(t, err)
	resp, err := c.http.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	require.NoError(t, srv.Shutdown(shutdownCtx))
	require.ErrorIs(t, <-served, http.ErrServerClosed)

	rest, err := io.ReadAll(reader)
	if err != nil {
		require.False(t, errors.Is(err, context.DeadlineExceeded), "stream was not closed")
	}
	require.NotContains(t, string(rest), "event: redirect")
	require.True(t, c.session.Snapshot().IsAuthenticated)
}
