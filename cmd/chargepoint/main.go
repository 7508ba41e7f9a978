// Command chargepoint is a minimal OCPP 1.6 charge-point demo: it dials a
// central system, sends BootNotification and periodic Heartbeats, and
// answers whatever Core Profile calls it registers handlers for.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruslanhut/ocpp-engine/internal/config"
	"github.com/ruslanhut/ocpp-engine/internal/logging"
	"github.com/ruslanhut/ocpp-engine/internal/ocpp/v16"
	"github.com/ruslanhut/ocpp-engine/internal/registry"
	"github.com/ruslanhut/ocpp-engine/internal/session"
	"github.com/ruslanhut/ocpp-engine/internal/transport"
)

const (
	appName    = "ocpp-engine-chargepoint"
	appVersion = "0.1.0"
)

func main() {
	configPath := flag.String("conf", "", "path to config file")
	url := flag.String("url", "", "central system websocket URL (overrides config)")
	stationID := flag.String("station", "CP-001", "charge point identity")
	vendor := flag.String("vendor", "VendorX", "charge point vendor")
	model := flag.String("model", "SingleSocketCharger", "charge point model")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("starting chargepoint", "version", appVersion, "app", appName, "station", *stationID)

	dialURL := *url
	if dialURL == "" {
		dialURL = fmt.Sprintf("ws://%s:%d/%s", cfg.Server.Host, cfg.Server.Port, *stationID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tr, err := transport.DialWebSocket(ctx, transport.WebSocketConfig{
		URL:              dialURL,
		Subprotocol:      "ocpp" + cfg.Session.ProtocolVersion,
		HandshakeTimeout: cfg.Session.HandshakeTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer tr.Close()

	handlers := registry.New()
	registerChargePointHandlers(handlers, logger)
	handlers.Freeze()

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithResponseTimeout(cfg.Session.ResponseTimeout),
	}
	if cfg.Session.RaiseOnCallError {
		opts = append(opts, session.WithRaiseOnCallError())
	}
	sess := session.New(tr, handlers, v16.NewSchemaRegistry(), v16.IsKnownAction, opts...)

	go func() {
		if err := sess.Serve(ctx); err != nil {
			logger.Warn("session loop exited", "error", err)
		}
	}()

	bootResp, err := sess.Call(ctx, string(v16.ActionBootNotification), map[string]interface{}{
		"charge_point_vendor": *vendor,
		"charge_point_model":  *model,
	}, cfg.Session.ResponseTimeout)
	if err != nil {
		logger.Error("BootNotification failed", "error", err)
	} else {
		logger.Info("BootNotification accepted", "response", bootResp)
	}

	heartbeatInterval := 30 * time.Second
	if iv, ok := bootResp["interval"]; ok {
		if seconds, ok := iv.(float64); ok && seconds > 0 {
			heartbeatInterval = time.Duration(seconds) * time.Second
		}
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down chargepoint")
			return
		case <-ticker.C:
			if _, err := sess.Call(ctx, string(v16.ActionHeartbeat), nil, cfg.Session.ResponseTimeout); err != nil {
				logger.Warn("Heartbeat failed", "error", err)
			}
			if err := sendMeterValues(ctx, sess, cfg.Session.ResponseTimeout); err != nil {
				logger.Warn("MeterValues failed", "error", err)
			}
		}
	}
}

// sendMeterValues reports one energy-register sample for connector 1, built
// from the typed MeterValue/SampledValue structs rather than a hand-rolled
// map literal.
func sendMeterValues(ctx context.Context, sess *session.Session, timeout time.Duration) error {
	meterValue, err := v16.ToPayload(v16.MeterValue{
		Timestamp: v16.DateTime{Time: time.Now().UTC()},
		SampledValue: []v16.SampledValue{
			{
				Value:     "0",
				Measurand: v16.MeasurandEnergyActiveImportRegister,
				Unit:      v16.UnitOfMeasureWh,
				Context:   v16.ReadingContextSamplePeriodic,
			},
		},
	})
	if err != nil {
		return err
	}

	_, err = sess.Call(ctx, string(v16.ActionMeterValues), map[string]interface{}{
		"connector_id": float64(1),
		"meter_value":  []interface{}{meterValue},
	}, timeout)
	return err
}

func registerChargePointHandlers(handlers *registry.Registry, logger *slog.Logger) {
	err := handlers.RegisterOnAction(string(v16.ActionChangeAvailability), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		logger.Info("ChangeAvailability requested", "args", args)
		return map[string]interface{}{"status": "Accepted"}, nil
	}, false, false)
	if err != nil {
		logger.Error("failed to register ChangeAvailability handler", "error", err)
	}
}
