package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	fsc "github.com/xmidt-org/fscmonitor"
	"github.com/xmidt-org/wrp-go/v3"
)

// Event destinations understood by the platform agent.
const (
	destImageTimeout = "event:device-status/fsc/code-image-timeout"
	destImageValid   = "event:device-status/fsc/code-image-valid"
)

// WRPAdapter reports to the platform agent through its parodus-style
// websocket, encoding each operation as a msgpack WRP SimpleEvent. The
// connection is dialed once via Connect and reused for both calls; there is
// no reconnect logic, matching the fire-and-forget contract of the boundary.
type WRPAdapter struct {
	wsURL  string
	source string // WRP source locator, e.g. "mac:112233445566/fsc"
	auth   fsc.AuthStrategy

	dialer *websocket.Dialer
	connMu sync.Mutex
	conn   *websocket.Conn
}

func NewWRPAdapter(wsURL, source string, auth fsc.AuthStrategy) *WRPAdapter {
	return &WRPAdapter{
		wsURL:  wsURL,
		source: source,
		auth:   auth,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Connect establishes the websocket to the platform agent.
func (w *WRPAdapter) Connect(ctx context.Context) error {
	header := http.Header{}
	if w.auth != nil {
		if v, e := w.auth.AuthorizationValue(); e == nil && v != "" {
			header.Set("Authorization", v)
		}
	}
	conn, _, err := w.dialer.DialContext(ctx, w.wsURL, header)
	if err != nil {
		return err
	}
	w.connMu.Lock()
	w.conn = conn
	w.connMu.Unlock()
	return nil
}

// Close terminates the websocket.
func (w *WRPAdapter) Close() error {
	w.connMu.Lock()
	c := w.conn
	w.conn = nil
	w.connMu.Unlock()
	if c != nil {
		return c.Close()
	}
	return nil
}

func (w *WRPAdapter) SetDeviceCodeImageTimeout(ctx context.Context, seconds int) error {
	return w.emit(ctx, destImageTimeout, map[string]int{"seconds": seconds})
}

func (w *WRPAdapter) SetDeviceCodeImageValid(ctx context.Context, valid bool) error {
	return w.emit(ctx, destImageValid, map[string]bool{"valid": valid})
}

// emit sends one SimpleEvent with a JSON payload. The agent does not reply;
// delivery is best-effort.
func (w *WRPAdapter) emit(ctx context.Context, dest string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	msg := wrp.Message{
		Type:            wrp.SimpleEventMessageType,
		Source:          w.source,
		Destination:     dest,
		TransactionUUID: uuid.NewString(),
		ContentType:     "application/json",
		Payload:         payload,
	}
	var frame []byte
	if err := wrp.NewEncoderBytes(&frame, wrp.Msgpack).Encode(&msg); err != nil {
		return fmt.Errorf("wrp encode: %w", err)
	}

	w.connMu.Lock()
	defer w.connMu.Unlock()
	if w.conn == nil {
		return fsc.ErrNotConnected
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = w.conn.SetWriteDeadline(deadline)
	} else {
		_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	}
	if err := w.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return fmt.Errorf("%w: %v", fsc.ErrHALUnavailable, err)
	}
	return nil
}
