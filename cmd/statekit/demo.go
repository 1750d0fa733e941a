package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/statekit-dev/statekit/pkg/devtools"
	"github.com/statekit-dev/statekit/pkg/observe"
	"github.com/statekit-dev/statekit/pkg/runloop"
	"github.com/statekit-dev/statekit/pkg/state"
	"github.com/statekit-dev/statekit/pkg/viewmodel"
)

// demoState is the shared truth for the demo.
type demoState struct {
	Count int       `json:"count"`
	Since time.Time `json:"since"`
}

// demoView is what a counter screen would render.
type demoView struct {
	Count int
	Label string
}

// demoAction bumps the counter by Delta.
type demoAction struct {
	Delta int
}

// demoContext hands the store to the view model.
type demoContext struct {
	store *state.Store[demoState]
}

func (c demoContext) Store() *state.Store[demoState] { return c.store }

// demoScope projects the counter and handles bump actions.
type demoScope struct {
	logger *slog.Logger
}

func (s demoScope) ProjectStoreState(st demoState, v demoView) demoView {
	v.Count = st.Count
	v.Label = fmt.Sprintf("count is %d", st.Count)
	return v
}

func (s demoScope) HandleAction(a demoAction, v demoView) (demoView, func(*demoState)) {
	v.Count += a.Delta
	v.Label = fmt.Sprintf("count is %d (pending)", v.Count)
	return v, func(st *demoState) { st.Count += a.Delta }
}

func (s demoScope) StateDidChange(change state.Change[demoView]) {
	s.logger.Info("view state changed",
		"trigger", change.Trigger.String(),
		"label", change.New.Label)
}

func demoCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an example counter store with the devtools inspector",
		Long: `Run a counter store that bumps itself on an interval, together
with the devtools inspection server and a Prometheus /metrics endpoint.

Inspect the store while it runs:

  curl http://localhost:6060/stores
  curl http://localhost:6060/stores/counter
  curl http://localhost:6060/metrics

Examples:
  statekit demo
  statekit demo --addr=:7070 --interval=250ms`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(addr, interval)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":6060", "Address for the devtools server")
	cmd.Flags().DurationVarP(&interval, "interval", "i", time.Second, "Interval between demo actions")

	return cmd
}

func runDemo(addr string, interval time.Duration) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store := state.New(demoState{Since: time.Now()},
		state.WithName[demoState]("counter"),
		state.WithLogger[demoState](logger),
		state.WithInstrument[demoState](observe.Multi(
			observe.Prometheus(),
			observe.Tracing(),
		)),
	)

	loop := runloop.New(runloop.WithLogger(logger))
	defer loop.Close()

	vm := viewmodel.New[demoState, demoView, demoAction](
		demoContext{store: store},
		demoScope{logger: logger},
		viewmodel.WithName[demoState, demoView, demoAction]("counter-screen"),
		viewmodel.WithDispatcher[demoState, demoView, demoAction](loop),
		viewmodel.WithLogger[demoState, demoView, demoAction](logger),
	)
	defer vm.Close()

	srv := devtools.NewServer(devtools.WithServerLogger(logger))
	if err := devtools.Attach(srv, "counter", store); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", srv.Handler())

	httpSrv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("demo server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("demo server failed", "error", err)
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			// Actions run on the designated context, like a UI thread would.
			loop.Dispatch(func() { vm.OnAction(demoAction{Delta: 1}) })
		case <-sigCh:
			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn("devtools shutdown", "error", err)
			}
			return httpSrv.Shutdown(ctx)
		}
	}
}
