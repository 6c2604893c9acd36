package server

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arabica-labs/arabica/errors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/sync/errgroup"
)

const (
	flagBind    = "bind"
	flagMetrics = "metrics"
	flagDebug   = "debug"
)

type startFlags struct {
	bind    string
	metrics string
	debug   bool
}

func parseFlags(args []string) (startFlags, error) {
	var f startFlags
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	fs.StringVar(&f.bind, flagBind, "tcp://localhost:46658", "address server listens on")
	fs.StringVar(&f.metrics, flagMetrics, "localhost:9102", "address of the metrics and health endpoints, empty to disable")
	fs.BoolVar(&f.debug, flagDebug, false, "call stack returned on error")
	if err := fs.Parse(args); err != nil {
		return f, errors.Wrap(errors.ErrInput, err.Error())
	}
	return f, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags.
type AppGenerator func(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error)

// StartCmd runs the ABCI socket server and, unless disabled, an http
// server exposing metrics and health. It blocks until a signal is
// received or a server fails.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, gen, logger, home, args)
}

func run(ctx context.Context, gen AppGenerator, logger log.Logger, home string, args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())

	// Generate the app in the proper dir
	app, err := gen(home, logger, f.debug, reg)
	if err != nil {
		return err
	}

	logger.Info("Starting ABCI app", "bind", f.bind)
	svr, err := server.NewServer(f.bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "creating listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := svr.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		return svr.Stop()
	})

	if f.metrics != "" {
		hs := &http.Server{
			Addr:              f.metrics,
			Handler:           NewRouter(app, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		logger.Info("Starting http server", "bind", f.metrics)
		g.Go(func() error {
			if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(shutdown)
		})
	}

	err = g.Wait()
	logger.Info("Stopped", "err", err)
	return err
}

// NewRouter returns the http handler serving
//
//	/metrics   prometheus metrics of the application
//	/healthz   liveness probe
//	/abci_info height and app hash of the last commit
func NewRouter(app abci.Application, reg prometheus.Gatherer) *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/abci_info", func(w http.ResponseWriter, _ *http.Request) {
		info := app.Info(abci.RequestInfo{})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(info)
	}).Methods(http.MethodGet)
	return r
}
