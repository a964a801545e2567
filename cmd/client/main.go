// Package main starts the interactive job board client: it restores the
// saved session, wires the API gateway and view controllers and runs the shell.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/jobboard/internal/client/api"
	"github.com/atinyakov/jobboard/internal/client/controller"
	"github.com/atinyakov/jobboard/internal/client/navigation"
	"github.com/atinyakov/jobboard/internal/client/notify"
	"github.com/atinyakov/jobboard/internal/client/session"
	"github.com/atinyakov/jobboard/internal/client/shell"
	"github.com/atinyakov/jobboard/internal/client/storage"
	"github.com/atinyakov/jobboard/internal/config"
	"github.com/atinyakov/jobboard/internal/logger"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if options.Version {
		fmt.Printf("Job board client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := storage.Open(ctx, options)
	if err != nil {
		zapLogger.Fatal("cannot open session storage", zap.String("storage", options.Storage), zap.Error(err))
	}
	defer func() { _ = kv.Close() }()

	httpClient, err := api.NewHTTPClient(options.CAFile, options.Timeout)
	if err != nil {
		zapLogger.Fatal("cannot build http client", zap.Error(err))
	}

	var sess *session.Store
	gateway := api.NewClient(options.APIURL, httpClient, api.TokenSourceFunc(func() string { return sess.Token() }), zapLogger)
	sess = session.New(gateway, kv, zapLogger)
	sess.OnChange(func(st session.State) {
		zapLogger.Debug("session changed", zap.Stringer("state", st))
	})
	sess.Hydrate(ctx)

	notifications := notify.NewChannel(func(n notify.Notification, visible bool) {
		if visible {
			fmt.Printf("\n[%s] %s\n", n.Severity, n.Message)
		}
	})

	deps := controller.Deps{
		Gateway:  gateway,
		Notifier: notifications,
		Log:      zapLogger,
	}
	sh := shell.New(os.Stdin, os.Stdout, deps, sess)

	zapLogger.Info("client started", zap.String("api", options.APIURL), zap.String("storage", options.Storage))
	if err := sh.Run(ctx, navigation.PathHome); err != nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}
