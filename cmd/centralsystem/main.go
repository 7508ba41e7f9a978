// Command centralsystem is a minimal OCPP 1.6 central system demo: it
// accepts charge-point WebSocket connections, runs one session engine per
// connection, and answers BootNotification/Heartbeat/StatusNotification
// with a fixed, in-memory policy. Message persistence is wired in only when
// message_log.enabled is set — the engine itself has no idea it exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ruslanhut/ocpp-engine/internal/config"
	"github.com/ruslanhut/ocpp-engine/internal/logging"
	"github.com/ruslanhut/ocpp-engine/internal/messagelog"
	"github.com/ruslanhut/ocpp-engine/internal/ocpp"
	"github.com/ruslanhut/ocpp-engine/internal/ocpp/v16"
	"github.com/ruslanhut/ocpp-engine/internal/registry"
	"github.com/ruslanhut/ocpp-engine/internal/session"
	"github.com/ruslanhut/ocpp-engine/internal/transport"
)

const (
	appName    = "ocpp-engine-centralsystem"
	appVersion = "0.1.0"
)

var upgrader = websocket.Upgrader{
	Subprotocols:    []string{"ocpp1.6"},
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

func main() {
	configPath := flag.String("conf", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("starting centralsystem", "version", appVersion, "app", appName)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var observer messagelog.Observer
	if cfg.MessageLog.Enabled {
		mongo, err := messagelog.Dial(ctx, messagelog.Config{
			URI:               cfg.MessageLog.URI,
			Database:          cfg.MessageLog.Database,
			Collection:        cfg.MessageLog.Collection,
			ConnectionTimeout: cfg.MessageLog.ConnectionTimeout,
		}, logger)
		if err != nil {
			logger.Error("message log disabled: failed to connect", "error", err)
		} else {
			defer mongo.Close(context.Background())
			observer = mongo
		}
	}

	schemas := v16.NewSchemaRegistry()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		stationID := path.Base(r.URL.Path)
		handleStation(ctx, w, r, stationID, cfg, schemas, observer, logger)
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func handleStation(ctx context.Context, w http.ResponseWriter, r *http.Request, stationID string, cfg *config.Config, schemas *ocpp.Registry, observer messagelog.Observer, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "station", stationID, "error", err)
		return
	}

	var tr transport.Transport = transport.NewWebSocketTransport(conn, logger)
	if observer != nil {
		tr = messagelog.NewObservingTransport(tr, stationID, observer)
	}

	handlers := registry.New()
	registerCentralSystemHandlers(handlers, stationID, logger)
	handlers.Freeze()

	sess := session.New(tr, handlers, schemas, v16.IsKnownAction,
		session.WithLogger(logger),
		session.WithResponseTimeout(cfg.Session.ResponseTimeout),
	)

	logger.Info("station connected", "station", stationID)
	if err := sess.Serve(ctx); err != nil {
		logger.Info("station disconnected", "station", stationID, "error", err)
	}
}

func registerCentralSystemHandlers(handlers *registry.Registry, stationID string, logger *slog.Logger) {
	register := func(action string, h registry.OnActionHandler) {
		if err := handlers.RegisterOnAction(action, h, false, false); err != nil {
			logger.Error("failed to register handler", "action", action, "error", err)
		}
	}

	register(string(v16.ActionBootNotification), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		logger.Info("BootNotification received", "station", stationID, "vendor", args["charge_point_vendor"], "model", args["charge_point_model"])
		return map[string]interface{}{
			"status":       string(v16.RegistrationStatusAccepted),
			"current_time": currentTime(),
			"interval":     float64(300),
		}, nil
	})

	register(string(v16.ActionHeartbeat), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return map[string]interface{}{"current_time": currentTime()}, nil
	})

	register(string(v16.ActionStatusNotification), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		logger.Info("StatusNotification received", "station", stationID, "status", args["status"], "connector_id", args["connector_id"])
		return map[string]interface{}{}, nil
	})

	register(string(v16.ActionAuthorize), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		return acceptedIDTagResponse(logger)
	})

	register(string(v16.ActionMeterValues), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		logger.Info("MeterValues received", "station", stationID, "connector_id", args["connector_id"], "meter_value", args["meter_value"])
		return map[string]interface{}{}, nil
	})

	register(string(v16.ActionStopTransaction), func(ctx context.Context, args map[string]interface{}) (map[string]interface{}, error) {
		logger.Info("StopTransaction received", "station", stationID, "transaction_id", args["transaction_id"], "reason", args["reason"])
		return acceptedIDTagResponse(logger)
	})
}

// currentTime formats "now" the way every timestamped response field does,
// via the protocol's own DateTime marshaling rather than ad hoc formatting.
func currentTime() string {
	raw, _ := v16.DateTime{Time: time.Now().UTC()}.MarshalJSON()
	return string(raw[1 : len(raw)-1])
}

// acceptedIDTagResponse builds an {id_tag_info: {status: Accepted}} response
// from the typed IdTagInfo struct, the shape Authorize and StopTransaction
// both return.
func acceptedIDTagResponse(logger *slog.Logger) (map[string]interface{}, error) {
	idTagInfo, err := v16.ToPayload(v16.IdTagInfo{Status: v16.AuthorizationStatusAccepted})
	if err != nil {
		logger.Error("failed to build id_tag_info payload", "error", err)
		return nil, err
	}
	return map[string]interface{}{"id_tag_info": idTagInfo}, nil
}
