package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-console/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web console",
	RunE: func(cmd *cobra.Command, args []string) error {
		for {
			err := run()
			if !errors.Is(err, errPanicRecovered) {
				if err != nil {
					return err
				}
				break
			}
			log.Err(err).Msg("Error running server, restarting")
			time.Sleep(1 * time.Second)
		}
		log.Info().Msg("Server stopped")
		return nil
	},
}

var errPanicRecovered = errors.New("panic recovered")

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errPanicRecovered
		}
	}()

	c, err := newConsole()
	if err != nil {
		return err
	}
	displayAppname(c.config.GetAppName())

	handler, err := server.New(c.config, c.client, c.session, c.gate, server.WithMetrics(c.metrics, c.registry))
	if err != nil {
		return err
	}

	// Pages show the loading screen until the stored session is resolved
	go c.gate.Initialize(context.Background(), c.store, c.client)

	srv := &http.Server{Addr: c.config.GetPort(), Handler: handler}
	srv.RegisterOnShutdown(handler.Stop)
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(srv)
	}()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
