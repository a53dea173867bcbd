package controller

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warehouse-management/warehouse/internal/application/components/logging"
	"github.com/warehouse-management/warehouse/internal/application/core"
	bizConsts "github.com/warehouse-management/warehouse/internal/warehouse/consts"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsBuffer     = 256
)

type logRecordRequest struct {
	Level   string         `json:"level" validate:"required,oneof=trace debug info warn warning error fatal"`
	Message string         `json:"message" validate:"required"`
	Fields  map[string]any `json:"fields"`
}

// LogsController exposes the embedded console: a websocket stream of the
// logger's console hub and an endpoint for records produced by the UI.
type LogsController struct {
	*core.BaseComponent
	Logger *logging.LoggerComponent `infra:"dep:logging"`

	upgrader websocket.Upgrader
}

func NewLogsController() *LogsController {
	return &LogsController{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_CTRL_LOGS),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// the web view is served from its own scheme (wails://, tauri://)
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (c *LogsController) Start(ctx context.Context) error { return c.BaseComponent.Start(ctx) }
func (c *LogsController) Stop(ctx context.Context) error  { return c.BaseComponent.Stop(ctx) }

// POST /api/logs
func (c *LogsController) Ingest(w http.ResponseWriter, r *http.Request) {
	var req logRecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}
	lvl, err := logging.ParseLevel(req.Level)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	fields := make([]zap.Field, 0, len(req.Fields)+1)
	fields = append(fields, zap.String("origin", "webview"))
	keys := make([]string, 0, len(req.Fields))
	for k := range req.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, req.Fields[k]))
	}

	ctx := r.Context()
	switch lvl {
	case zapcore.DebugLevel:
		logging.Debug(ctx, req.Message, fields...)
	case zapcore.InfoLevel:
		logging.Info(ctx, req.Message, fields...)
	case zapcore.WarnLevel:
		logging.Warn(ctx, req.Message, fields...)
	default:
		// a UI "fatal" must not terminate the process
		logging.Error(ctx, req.Message, fields...)
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/logs/stream (websocket). The retained backlog is sent first,
// then live records, one JSON object per text message.
func (c *LogsController) Stream(w http.ResponseWriter, r *http.Request) {
	hub := c.hub()
	if hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, apiError{Error: "embedded console is not enabled"})
		return
	}
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		return
	}
	defer conn.Close()

	sub, backlog := hub.Subscribe(wsBuffer)
	defer sub.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for _, rec := range backlog {
		if !writeRecord(conn, rec) {
			return
		}
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case rec, ok := <-sub.C:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "logger stopped"),
					time.Now().Add(wsWriteWait))
				return
			}
			if !writeRecord(conn, rec) {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (c *LogsController) hub() *logging.ConsoleHub {
	if c.Logger == nil {
		return nil
	}
	return c.Logger.Console()
}

func writeRecord(conn *websocket.Conn, rec []byte) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	// zap terminates every record with a newline
	if n := len(rec); n > 0 && rec[n-1] == '\n' {
		rec = rec[:n-1]
	}
	return conn.WriteMessage(websocket.TextMessage, rec) == nil
}
