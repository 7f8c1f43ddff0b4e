package platform

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	fsc "github.com/xmidt-org/fscmonitor"
	"github.com/xmidt-org/wrp-go/v3"
)

// wsCapture upgrades one connection and forwards every binary frame it reads.
func wsCapture(t *testing.T, frames chan<- []byte) *httptest.Server {
	up := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			frames <- data
		}
	}))
}

func TestWRPAdapterEmitsSimpleEvents(t *testing.T) {
	frames := make(chan []byte, 2)
	srv := wsCapture(t, frames)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	a := NewWRPAdapter(wsURL, "mac:112233445566/fsc", staticAuth{""})
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer a.Close()

	if err := a.SetDeviceCodeImageTimeout(context.Background(), 3600); err != nil {
		t.Fatalf("set timeout: %v", err)
	}
	if err := a.SetDeviceCodeImageValid(context.Background(), true); err != nil {
		t.Fatalf("set valid: %v", err)
	}

	var timeoutMsg, validMsg wrp.Message
	decode(t, <-frames, &timeoutMsg)
	decode(t, <-frames, &validMsg)

	if timeoutMsg.Type != wrp.SimpleEventMessageType {
		t.Fatalf("expected SimpleEvent, got %v", timeoutMsg.Type)
	}
	if timeoutMsg.Destination != destImageTimeout {
		t.Fatalf("unexpected destination: %s", timeoutMsg.Destination)
	}
	if timeoutMsg.Source != "mac:112233445566/fsc" {
		t.Fatalf("unexpected source: %s", timeoutMsg.Source)
	}
	if timeoutMsg.TransactionUUID == "" || timeoutMsg.TransactionUUID == validMsg.TransactionUUID {
		t.Fatalf("transaction UUIDs must be set and distinct")
	}
	var body map[string]int
	if err := json.Unmarshal(timeoutMsg.Payload, &body); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if body["seconds"] != 3600 {
		t.Fatalf("expected seconds=3600, got %+v", body)
	}

	if validMsg.Destination != destImageValid {
		t.Fatalf("unexpected destination: %s", validMsg.Destination)
	}
	var verdict map[string]bool
	if err := json.Unmarshal(validMsg.Payload, &verdict); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if !verdict["valid"] {
		t.Fatalf("expected valid=true, got %+v", verdict)
	}
}

func decode(t *testing.T, frame []byte, msg *wrp.Message) {
	t.Helper()
	if err := wrp.NewDecoderBytes(frame, wrp.Msgpack).Decode(msg); err != nil {
		t.Fatalf("wrp decode: %v", err)
	}
}

func TestWRPAdapterNotConnected(t *testing.T) {
	a := NewWRPAdapter("ws://127.0.0.1:1/", "mac:0/fsc", nil)
	err := a.SetDeviceCodeImageValid(context.Background(), true)
	if !errors.Is(err, fsc.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}
