package main

import (
	"context"
	"flag"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"chordring/internal/chord"
	"chordring/internal/config"
	"chordring/internal/discovery"
	"chordring/internal/discovery/route53"
	"chordring/internal/logger"
	"chordring/internal/logger/zapadapter"
	"chordring/internal/telemetry"
	"chordring/internal/transport/grpcpeer"

	"google.golang.org/grpc"
)

var defaultConfigPath = "config/chordnode/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapadapter.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()
		lgr = zapadapter.NewZapAdapter(zapLog)
	} else {
		lgr = logger.NopLogger{}
	}
	cfg.LogConfig(lgr)

	lis, err := net.Listen("tcp", cfg.Node.Bind+":"+strconv.Itoa(cfg.Node.Port))
	if err != nil {
		lgr.Error("failed to listen", logger.F("err", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = lis.Close() }()

	selfAddress := cfg.Node.Address()
	lgr = lgr.Named("node").With(logger.F("self", selfAddress))
	lgr.Info("node starting")

	shutdownTracing := telemetry.InitTracer(cfg.Telemetry.Tracing, "chordring-node", chord.HashEndpoint(selfAddress))
	defer func() { _ = shutdownTracing(context.Background()) }()

	dialer := grpcpeer.NewDialer(telemetry.ClientDialOptions(cfg.Telemetry.Tracing)...)
	defer func() { _ = dialer.Close() }()

	svc := chord.New(selfAddress,
		chord.WithLogger(lgr.Named("chord")),
		chord.WithDialer(dialer),
		chord.WithFingerCount(cfg.Chord.FingerCount),
		chord.WithSuccessorListSize(cfg.Chord.SuccessorListSize),
		chord.WithRPCTimeout(cfg.Chord.RPCTimeout),
	)
	lgr.Info("chord engine initialized", logger.F("id", svc.Self().ID))

	var grpcOpts []grpc.ServerOption
	if h := telemetry.ServerStatsHandler(cfg.Telemetry.Tracing); h != nil {
		grpcOpts = append(grpcOpts, grpc.StatsHandler(h))
	}
	grpcServer := grpc.NewServer(grpcOpts...)
	grpcpeer.NewServer(svc).Register(grpcServer)

	serveErr := make(chan error, 1)
	go func() { serveErr <- grpcServer.Serve(lis) }()
	lgr.Info("grpc server started", logger.F("addr", lis.Addr().String()))

	var bootstrap discovery.Bootstrap
	switch cfg.Bootstrap.Mode {
	case "route53":
		bootstrap, err = route53.New(cfg.Bootstrap.Route53)
	default:
		bootstrap = discovery.NewStaticBootstrap(cfg.Bootstrap.Peers)
	}
	if err != nil {
		lgr.Error("failed to initialize bootstrap", logger.F("err", err.Error()))
		grpcServer.Stop()
		os.Exit(1)
	}

	joinCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	peers, err := bootstrap.Discover(joinCtx)
	cancel()
	if err != nil {
		lgr.Error("failed to resolve bootstrap peers", logger.F("err", err.Error()))
		grpcServer.Stop()
		os.Exit(1)
	}

	if len(peers) == 0 {
		lgr.Info("no existing ring found, starting a new one")
	} else {
		joinCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := svc.Join(joinCtx, chord.NewHandle(peers[0]))
		cancel()
		if err != nil {
			lgr.Error("failed to join ring", logger.F("err", err.Error()))
			grpcServer.Stop()
			os.Exit(1)
		}
		lgr.Info("joined ring", logger.F("bootstrap", peers[0]))
	}

	regCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = bootstrap.Register(regCtx, selfAddress)
	cancel()
	if err != nil {
		lgr.Warn("failed to register with bootstrap", logger.F("err", err.Error()))
	}

	runner := chord.NewTaskRunner(svc, chord.TaskRunnerConfig{
		StabilizeInterval:        cfg.Chord.StabilizeInterval,
		PredecessorCheckInterval: cfg.Chord.PredecessorCheckInterval,
		FixFingersInterval:       cfg.Chord.FixFingersInterval,
	}, lgr.Named("taskrunner"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	runner.Start(ctx)

	select {
	case <-ctx.Done():
		lgr.Info("shutdown signal received")
	case err := <-serveErr:
		lgr.Error("grpc server terminated unexpectedly", logger.F("err", err.Error()))
	}

	stop()
	runner.Stop()

	deregCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := bootstrap.Deregister(deregCtx, selfAddress); err != nil {
		lgr.Warn("failed to deregister from bootstrap", logger.F("err", err.Error()))
	}
	cancel()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
		lgr.Info("grpc server stopped gracefully")
	case <-time.After(5 * time.Second):
		lgr.Warn("graceful stop timed out, forcing shutdown")
		grpcServer.Stop()
	}
}
