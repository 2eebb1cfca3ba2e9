package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"shopfloor-console/cmd/config"
	adminhttp "shopfloor-console/internal/adminops/httpapi"
	adminusecases "shopfloor-console/internal/adminops/usecases"
	"shopfloor-console/internal/auth"
	"shopfloor-console/internal/backend"
	dashhttp "shopfloor-console/internal/dashboard/httpapi"
	dashusecases "shopfloor-console/internal/dashboard/usecases"
	"shopfloor-console/internal/infra/async"
	"shopfloor-console/internal/infra/cache"
	"shopfloor-console/internal/infra/httpserver"
	"shopfloor-console/internal/infra/mqtt"
	"shopfloor-console/internal/infra/sql"
	floorhttp "shopfloor-console/internal/shopfloor/httpapi"
	floorusecases "shopfloor-console/internal/shopfloor/usecases"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

var (
	logLevelMapping = map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
)

func main() {
	config := config.LoadConfig()

	level := logLevelMapping[config.General.LogLevel]
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true, Level: level, ReplaceAttr: slogReplaceAttr})
	slog.SetDefault(slog.New(handler))
	slog.Info("🏭 shopfloor console is initializing")
	slog.Debug("config loaded", "data", config)

	shutdownOtel := startOTel()

	appCtx, cancelFn := context.WithCancel(context.Background())

	orm, err := sql.NewSQLiteORM(config.Storage.Path)
	if err != nil {
		slog.Error("opening local storage", slog.Any("error", err))
		panic(err)
	}

	sessionStore, err := auth.NewStore(orm)
	if err != nil {
		slog.Error("initializing session store", slog.Any("error", err))
		panic(err)
	}
	sessions := auth.NewManager(sessionStore)
	if err := sessions.Rehydrate(appCtx); err != nil {
		slog.Warn("rehydrating session", slog.Any("error", err))
	}

	client := backend.NewClient(backend.ClientOpts{
		BaseURL:  config.Backend.BaseURL,
		Timeout:  config.Backend.Timeout,
		Sessions: sessions,
	})

	queryCache := newQueryCache(config.Cache)
	internalBroker := async.NewLocalBroker()

	journal, err := floorusecases.NewJournal(orm)
	if err != nil {
		slog.Error("initializing action journal", slog.Any("error", err))
		panic(err)
	}

	queueService := floorusecases.NewQueueService(client, queryCache)
	actionService := floorusecases.NewTaskActionService(client, queueService, journal)

	machineService := adminusecases.NewMachineService(client, queryCache)
	orderService := adminusecases.NewOrderService(client, queryCache)
	stepService := adminusecases.NewStepService(client, queryCache)
	downtimeService := adminusecases.NewDowntimeService(client, queryCache)
	jobLogService := adminusecases.NewJobLogService(client, queryCache)
	userService := adminusecases.NewUserService(client, queryCache)
	scheduleService := adminusecases.NewScheduleService(client, queryCache)

	summaryService := dashusecases.NewSummaryService(
		machineService, scheduleService, orderService, downtimeService, jobLogService, queryCache)
	analyticsService := dashusecases.NewAnalyticsService(client, queryCache)

	httpServer := httpserver.NewServer(
		httpserver.ServerOpts{
			Addr:           config.Server.Addr,
			AllowedOrigins: config.Server.AllowedOrigins,
		},
		adminhttp.NewAuthController(sessions, client),
		adminhttp.NewMachineController(sessions, machineService),
		adminhttp.NewOrderController(sessions, orderService),
		adminhttp.NewStepController(sessions, stepService),
		adminhttp.NewDowntimeController(sessions, downtimeService),
		adminhttp.NewJobLogController(sessions, jobLogService),
		adminhttp.NewUserController(sessions, userService),
		adminhttp.NewScheduleController(sessions, scheduleService),
		floorhttp.NewOperatorController(sessions, queueService, actionService, journal),
		floorhttp.NewQueueWebSocketController(internalBroker, queueService),
		dashhttp.NewDashboardController(sessions, summaryService, analyticsService, config.Dashboard.DefaultTimezone),
	)
	go httpServer.Run()

	var wg sync.WaitGroup
	var workers []async.Worker

	pollWorker := floorusecases.NewQueuePollWorker(
		time.NewTicker(config.Operator.PollInterval),
		config.Operator.Machines,
		queueService,
		internalBroker,
	)
	workers = append(workers, pollWorker)

	var mqttClient *mqtt.SimpleClient
	if config.MQTTClient.Enabled {
		mqttClient, err = mqtt.NewSimpleClient(mqtt.SimpleClientOpts{
			Broker:   config.MQTTClient.Broker,
			ClientID: config.MQTTClient.ClientID,
			Username: config.MQTTClient.Username,
			Password: config.MQTTClient.Password, //pragma: allowlist secret
		})
		if err != nil {
			slog.Error("connecting andon publisher", slog.Any("error", err))
			panic(err)
		}
		workers = append(workers, floorusecases.NewAndonWorker(internalBroker, mqttClient))
	}

	workers = append(workers, dashusecases.NewRefreshWorker(
		config.Refresh.DashboardSchedule,
		config.Refresh.AnalyticsSchedule,
		config.Dashboard.DefaultTimezone,
		summaryService,
		analyticsService,
		scheduleService,
	))

	for _, worker := range workers {
		wg.Add(1)
		go worker.Run(appCtx, wg.Done)
	}

	signalChannel := make(chan os.Signal, 2)
	signal.Notify(signalChannel, os.Interrupt, syscall.SIGTERM)

	<-signalChannel
	shutdownOtel()

	cancelFn()
	for _, worker := range workers {
		worker.Shutdown()
	}
	wg.Wait()

	httpServer.Shutdown()
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	slog.Info("good bye!!!")
	os.Exit(0)
}

func newQueryCache(cfg config.CacheConfig) cache.Cache {
	if cfg.Kind == "redis" {
		redisConfig := cache.DefaultRedisConfig()
		redisConfig.Addr = cfg.Redis.Addr
		redisConfig.Password = cfg.Redis.Password
		redisConfig.DB = cfg.Redis.DB

		redisCache, err := cache.NewRedisCache(redisConfig)
		if err != nil {
			slog.Error("initializing redis cache", slog.Any("error", err))
			panic(err)
		}
		return redisCache
	}

	ristrettoCache, err := cache.New(cache.DefaultConfig())
	if err != nil {
		slog.Error("initializing in-process cache", slog.Any("error", err))
		panic(err)
	}
	return ristrettoCache
}

func slogReplaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		source := a.Value.Any().(*slog.Source)
		source.File = filepath.Base(source.File)
		return slog.Any(a.Key, source)
	}
	return a
}

type ShutdownFunc func() error

const (
	_defaultEndpoint = "localhost:4317"
	_collectPeriod   = 30 * time.Second
	_collectTimeout  = 35 * time.Second
	_minimumInterval = time.Minute
)

var (
	_histogramBuckets = []float64{5, 10, 25, 50, 75, 100, 250, 500, 750, 1000, 2500, 5000, 7500, 10000, 25000, 50000, 100000}
)

func startOTel() ShutdownFunc {
	slog.Info("starting OTel providers")
	shutdown, err := otelStart(context.Background())
	if err != nil {
		panic(err)
	}

	return shutdown
}

func otelStart(ctx context.Context) (ShutdownFunc, error) {
	metricsShutdownFunc, err := startMetricsProvider(ctx)
	if err != nil {
		return nil, err
	}

	traceShutdownFunc, err := startTraceProvider(ctx)
	if err != nil {
		return nil, err
	}

	return func() error {
		if err := metricsShutdownFunc(); err != nil {
			return err
		}
		if err := traceShutdownFunc(); err != nil {
			return err
		}
		return nil
	}, nil
}

func startTraceProvider(ctx context.Context) (ShutdownFunc, error) {
	exp, err := newTraceExporter(ctx)
	if err != nil {
		return nil, err
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exp),
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("shopfloor-console"),
		)),
	)
	otel.SetTracerProvider(tp)

	return func() error {
		return tp.Shutdown(ctx)
	}, nil
}

func newTraceExporter(ctx context.Context) (trace.SpanExporter, error) {
	endpoint := _defaultEndpoint
	if value, ok := os.LookupEnv("SHOPFLOOR_CONSOLE_OTELCOL_ENDPOINT"); ok {
		endpoint = value
	}

	return otlptracegrpc.New(
		ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
}

func startMetricsProvider(ctx context.Context) (ShutdownFunc, error) {
	exp, err := newMetricExporter(ctx)
	if err != nil {
		return nil, err
	}

	mp := newMeterProvider(exp)
	otel.SetMeterProvider(mp)

	err = runtime.Start(runtime.WithMinimumReadMemStatsInterval(_minimumInterval))
	if err != nil {
		return nil, err
	}

	return func() error {
		return mp.Shutdown(ctx)
	}, nil
}

func newMetricExporter(ctx context.Context) (metric.Exporter, error) {
	endpoint := _defaultEndpoint
	if value, ok := os.LookupEnv("SHOPFLOOR_CONSOLE_OTELCOL_ENDPOINT"); ok {
		endpoint = value
	}

	return otlpmetricgrpc.New(
		ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
}

func newMeterProvider(metricExporter metric.Exporter) *metric.MeterProvider {
	return metric.NewMeterProvider(
		metric.WithReader(
			metric.NewPeriodicReader(
				metricExporter,
				metric.WithTimeout(_collectTimeout),
				metric.WithInterval(_collectPeriod))),
		metric.WithView(metric.NewView(
			metric.Instrument{
				Name: "*",
				Kind: metric.InstrumentKindHistogram,
			},
			metric.Stream{
				Aggregation: metric.AggregationExplicitBucketHistogram{
					Boundaries: _histogramBuckets,
				},
			},
		)),
	)
}
