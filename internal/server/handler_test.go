package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/asr-stream/internal/audio"
	"github.com/eleven-am/asr-stream/internal/session"
	"github.com/eleven-am/asr-stream/internal/shared"
	"github.com/eleven-am/asr-stream/internal/wire"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startStub(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	e := echo.New()
	NewHandler(testLogger()).RegisterRoutes(e)
	server := httptest.NewServer(e)
	return server, "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/voice/asr"
}

func TestHandler_FullSession(t *testing.T) {
	server, url := startStub(t)
	defer server.Close()

	ctrl, err := session.Dial(context.Background(), url, "", audio.DefaultFormat(), session.Options{
		DrainTimeout:  100 * time.Millisecond,
		DrainAttempts: 2,
	}, testLogger())
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer ctrl.Close()

	frames, err := ctrl.Start(context.Background())
	if err != nil {
		t.Fatalf("start error: %v", err)
	}
	if len(frames) != 1 || frames[0].Type != wire.FullServerResponse {
		t.Fatalf("expected a config response, got %v", frames)
	}

	// 1.5 seconds of silence.
	pcm := make([]byte, 48000)
	observed, err := ctrl.Feed(context.Background(), pcm, true)
	if err != nil {
		t.Fatalf("feed error: %v", err)
	}
	drained, err := ctrl.Finish(context.Background())
	if err != nil && !errors.Is(err, shared.ErrDrainIncomplete) {
		t.Fatalf("finish error: %v", err)
	}
	observed = append(observed, drained...)

	var transcript string
	var sawLast bool
	for _, frame := range observed {
		if frame.IsLastPackage {
			sawLast = true
		}
		if text, ok := session.Transcript(frame); ok {
			transcript = text
		}
	}
	if !sawLast {
		t.Error("never received the last-package response")
	}
	if !strings.Contains(transcript, "1500ms") {
		t.Errorf("transcript should describe 1500ms of audio, got %q", transcript)
	}
}

func TestHandler_MalformedFrame(t *testing.T) {
	server, url := startStub(t)
	defer server.Close()

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer ws.Close()

	// Shorter than a protocol header.
	if err := ws.WriteMessage(websocket.BinaryMessage, []byte{0x11, 0x10}); err != nil {
		t.Fatalf("write error: %v", err)
	}

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read error: %v", err)
	}

	frame, err := wire.DecodeFrame(data)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if frame.Type != wire.ServerErrorResponse {
		t.Fatalf("expected ServerErrorResponse, got %v", frame.Type)
	}
	if frame.ErrorCode == nil || *frame.ErrorCode != codeMalformedFrame {
		t.Errorf("expected code %d, got %v", codeMalformedFrame, frame.ErrorCode)
	}
}

func TestHandler_Health(t *testing.T) {
	server, _ := startStub(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
