package main

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"talos/api/httpserver"
	"talos/config"
	"talos/infra/archive"
	"talos/infra/kafka"
	"talos/infra/sequence"
	"talos/jobs/broadcaster"
	"talos/service"
	"talos/util"
)

func main() {
	log, err := util.NewLogger()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// ---------------- Config ----------------

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("config invalid", zap.Error(err))
	}

	// ---------------- Sequencer ----------------

	ring, err := sequence.NewRing(cfg.Engine.RingCapacity, sequence.DefaultWaitStrategy())
	if err != nil {
		log.Fatal("sequencer init failed", zap.Error(err))
	}

	// ---------------- Publishers ----------------

	hub := httpserver.NewHub(log)
	pubs := []service.Publisher{hub}

	if len(cfg.Kafka.Brokers) > 0 {
		feed := kafka.NewSnapshotFeed(cfg.Kafka.Brokers, cfg.Kafka.SnapshotTopic)
		defer feed.Close()
		pubs = append(pubs, feed)

		trades, err := broadcaster.New(cfg.Kafka.Brokers, cfg.Kafka.TradeTopic, log)
		if err != nil {
			log.Fatal("trade feed init failed", zap.Error(err))
		}
		defer trades.Close()
		pubs = append(pubs, trades)
	}

	if cfg.Archive.Dir != "" {
		store, err := archive.Open(cfg.Archive.Dir)
		if err != nil {
			log.Fatal("archive init failed", zap.Error(err))
		}
		defer store.Close()
		pubs = append(pubs, store)
	}

	// ---------------- Service ----------------

	svc, err := service.NewOrderService(
		ring,
		cfg.Engine.SnapshotDepth,
		cfg.Engine.TradeHistory,
		service.NewMultiPublisher(log, pubs...),
		log,
	)
	if err != nil {
		log.Fatal("service init failed", zap.Error(err))
	}

	svc.Start()
	defer svc.Stop()

	// ---------------- HTTP ----------------

	srv := httpserver.NewServer(svc, hub, cfg.HTTP.AllowedOrigins, log)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.HTTP.Addr) }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error("http server exited", zap.Error(err))
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}
}
