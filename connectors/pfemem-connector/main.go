package main

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/sulefrederickjohne/pfememory/config"
	"github.com/sulefrederickjohne/pfememory/connectors"
	"github.com/sulefrederickjohne/pfememory/connectors/pfemem/clients"
	"github.com/sulefrederickjohne/pfememory/nats"
	"github.com/sulefrederickjohne/pfememory/services"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg := config.GetConfig()
	ctx, stop := connectors.SigTermContext(context.Background())
	defer stop()

	if tp, err := cfg.InitTracerProvider(); err == nil {
		otel.SetTracerProvider(tp)
		defer func() { _ = tp.Shutdown(context.Background()) }()
	} else if !errors.Is(err, config.ErrTelemetryNotConfigured) {
		log.Warn().Err(err).Msg("could not init tracer provider")
	}
	if errs := cfg.Devices.Validate(); len(errs) > 0 {
		log.Error().Errs("errors", errs).Msg("devices misconfigured")
	}

	metrics := services.NewMetrics()
	controller := services.NewController(cfg.Connector, metrics)
	connector := NewPfeMemConnector(cfg, clients.NewSnmpClient(), metrics)

	if cfg.Connector.NatsDisabled {
		controller.Status.Nats.Set(services.StatusDisabled)
	} else if err := nats.StartServer(natsConfig(cfg.Connector.Nats)); err != nil {
		log.Err(err).Msg("could not start nats, publishing is off")
	} else {
		controller.Status.Nats.Set(services.StatusRunning)
		connector.Publish = nats.Publish
		defer nats.StopServer()
	}

	if err := controller.StartController(connector.Entrypoints()); err != nil {
		log.Fatal().Err(err).Msg("could not start controller")
	}
	defer func() { _ = controller.StopController() }()

	job := func() {
		controller.Status.Scheduler.Set(services.StatusProcessing)
		defer controller.Status.Scheduler.Set(services.StatusRunning)
		_, _ = connector.Poll(ctx)
	}
	sch, err := connectors.StartScheduler(cfg.Connector.Schedule(), job)
	if err != nil {
		log.Fatal().Err(err).Msg("could not start scheduler")
	}
	controller.Status.Scheduler.Set(services.StatusRunning)
	go job()

	<-ctx.Done()
	log.Info().Msg("stopping")
	<-sch.Stop().Done()
	controller.Status.Scheduler.Set(services.StatusStopped)
}

func natsConfig(c config.Nats) nats.Config {
	return nats.Config{
		Host:          c.NatsHost,
		MaxPayload:    c.NatsMaxPayload,
		MonitorPort:   c.NatsMonitorPort,
		StoreDir:      c.NatsStoreDir,
		StoreType:     c.NatsStoreType,
		StoreMaxAge:   c.NatsStoreMaxAge,
		StoreMaxBytes: c.NatsStoreMaxBytes,
		StoreMaxMsgs:  c.NatsStoreMaxMsgs,
		Subjects:      []string{c.NatsSubject},
		ConfigFile:    c.NatsServerConfigFile,
	}
}
