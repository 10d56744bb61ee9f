// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/kjhaus/memtrack/diag"
	"github.com/kjhaus/memtrack/internal/metrics"
	"github.com/kjhaus/memtrack/layer"
	"github.com/kjhaus/memtrack/sim"
	"github.com/kjhaus/memtrack/track"
)

// serveCommand exposes the live memtrack tracker's state as Prometheus
// metrics, polled on a ticker per SPEC_FULL.md §2's metrics addition.
func serveCommand(snk **diag.Sink) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run a tracker and serve its metrics over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: ":9090", Usage: "listen address for /metrics"},
			&cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "metrics refresh interval"},
		},
		Action: func(c *cli.Context) error {
			d := sim.New()
			tr := track.New(*snk)
			_ = layer.New(tr, d)

			ticker := time.NewTicker(c.Duration("interval"))
			defer ticker.Stop()
			stop := make(chan struct{})
			go func() {
				for {
					select {
					case <-ticker.C:
						metrics.Refresh(tr)
					case <-stop:
						return
					}
				}
			}()
			defer close(stop)

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: c.String("addr"), Handler: mux}
			fmt.Printf("serving metrics on %s/metrics\n", c.String("addr"))
			err := srv.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
}

// shutdown stops a running server deterministically rather than
// waiting on Ctrl-C. Nothing in this package calls it.
func shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}
