// Package main provides the payconf command line entry point: one
// conformance run against a payment gateway sandbox, driven by a Postman
// environment file.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"payconf"
	"payconf/circuit/memory"
	"payconf/config"
	"payconf/diag"
	"payconf/event"
	"payconf/expectation"
	"payconf/gateway"
	"payconf/input"
	lockredis "payconf/lock/redis"
	promet "payconf/metrics/prometheus"
	"payconf/store/mysql"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		envPath      = flag.String("env", "", "path to the Postman environment file (required)")
		currency     = flag.String("currency", "", "currency to drive, USD or GBP (required)")
		amount       = flag.Int64("amount", 100, "simulated amount in minor units")
		refund       = flag.Bool("refund", false, "refund after settlement")
		cancel       = flag.Bool("cancel", false, "race a cancellation against settlement")
		interactive  = flag.Bool("interactive", false, "prompt for card, profile, and billing inputs")
		expectations = flag.String("expectations", "", "path to a JSON expectation table overriding the builtin one")
		traceDir     = flag.String("trace-dir", "traces", "directory for diagnostic traces")
		redisAddr    = flag.String("redis", "", "redis address for the account run lock (optional)")
		mysqlDSN     = flag.String("mysql", "", "mysql DSN for run history (optional)")
		metricsAddr  = flag.String("metrics-addr", "", "listen address for /metrics (optional)")
	)
	flag.Parse()

	if *envPath == "" || *currency == "" {
		flag.Usage()
		return 2
	}
	cur := strings.ToUpper(*currency)

	env, err := config.Load(*envPath)
	if err != nil {
		log.Printf("payconf: %v", err)
		return 2
	}
	accountID, err := env.AccountID(cur)
	if err != nil {
		log.Printf("payconf: %v", err)
		return 2
	}

	registry := expectation.Builtin()
	if *expectations != "" {
		registry, err = expectation.Load(*expectations)
		if err != nil {
			log.Printf("payconf: %v", err)
			return 2
		}
	}

	traces, err := diag.NewFileStore(*traceDir)
	if err != nil {
		log.Printf("payconf: %v", err)
		return 2
	}

	bus := event.NewMemoryEventBus()
	if err := bus.SubscribeAll(logSubscriber); err != nil {
		log.Printf("payconf: %v", err)
		return 2
	}

	opts := []payconf.OrchestratorOption{
		payconf.WithClassifier(payconf.NewClassifier(registry)),
		payconf.WithEventBus(bus),
		payconf.WithTraceStore(traces),
	}

	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		opts = append(opts, payconf.WithMetrics(promet.New(promet.Config{Registry: reg})))
		go serveMetrics(*metricsAddr, reg)
	}

	if *redisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: *redisAddr})
		defer client.Close()
		opts = append(opts, payconf.WithLocker(lockredis.NewRedisLocker(client)))
	}

	if *mysqlDSN != "" {
		db, err := sql.Open("mysql", *mysqlDSN)
		if err != nil {
			log.Printf("payconf: open mysql: %v", err)
			return 2
		}
		defer db.Close()
		opts = append(opts, payconf.WithRunStore(mysql.New(db)))
	}

	if *interactive {
		opts = append(opts, payconf.WithInputProvider(input.NewPromptProvider(os.Stdin, os.Stderr)))
	}

	client := gateway.NewHTTPClient(env.BaseURL, env.PublicKey, env.PrivateKey,
		gateway.WithBreaker(memory.NewMemoryBreaker()))

	orchestrator, err := payconf.NewOrchestrator(gateway.NewAPI(client), opts...)
	if err != nil {
		log.Printf("payconf: %v", err)
		return 2
	}

	session, err := payconf.NewSession(cur, *amount).
		WithAccountID(accountID).
		WithRefund(*refund).
		WithCancel(*cancel).
		Build()
	if err != nil {
		log.Printf("payconf: %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, runErr := orchestrator.Run(ctx, session)
	if report != nil {
		report.Render(os.Stdout)
	}
	if runErr != nil {
		log.Printf("payconf: run failed: %v", runErr)
	}
	if report != nil && report.Failed() {
		return 1
	}
	return 0
}

// logSubscriber renders lifecycle events to the standard logger.
func logSubscriber(_ context.Context, e event.Event) error {
	switch {
	case e.Error != nil:
		log.Printf("[%s] run=%s stage=%s error=%v", e.Type, e.RunID, e.Stage, e.Error)
	case e.Stage != "":
		log.Printf("[%s] run=%s stage=%s %v", e.Type, e.RunID, e.Stage, e.Data)
	default:
		log.Printf("[%s] run=%s %v", e.Type, e.RunID, e.Data)
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("payconf: metrics server: %v", err)
	}
}
