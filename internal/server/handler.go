package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/eleven-am/asr-stream/internal/audio"
	"github.com/eleven-am/asr-stream/internal/wire"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 16 * 1024 * 1024

	codeMalformedFrame = 45000001
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves the recognition wire protocol for local development and
// end-to-end tests. It speaks the real framing but fakes the recognizer:
// transcripts describe the audio received instead of transcribing it.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("component", "stub_asr")}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/voice/asr", h.HandleASR)
	e.GET("/healthz", h.HandleHealth)
}

func (h *Handler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleASR(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	h.logger.Info("recognition session opened", "remote", ws.RemoteAddr().String())
	sess := &stubSession{ws: ws, logger: h.logger}
	sess.run()
	h.logger.Info("recognition session closed", "remote", ws.RemoteAddr().String())
	return nil
}

// stubSession is the server-side state for one connection: the negotiated
// audio format and the running tally of received audio.
type stubSession struct {
	ws     *websocket.Conn
	logger *slog.Logger

	format     audio.Format
	configured bool
	totalBytes int
	lastRMS    float64
}

func (s *stubSession) run() {
	defer s.ws.Close()
	s.ws.SetReadLimit(maxMessageSize)

	for {
		messageType, data, err := s.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			s.logger.Warn("ignoring non-binary message", "type", messageType)
			continue
		}

		frame, err := wire.DecodeClientFrame(data)
		if err != nil {
			s.logger.Warn("malformed frame", "size", len(data))
			s.sendError(codeMalformedFrame, "malformed frame")
			continue
		}

		switch frame.Type {
		case wire.FullClientRequest:
			s.handleConfig(frame)
		case wire.AudioOnlyRequest:
			if s.handleAudio(frame) {
				return
			}
		default:
			s.logger.Warn("unexpected client frame", "type", frame.Type.String())
		}
	}
}

func (s *stubSession) handleConfig(frame wire.Frame) {
	s.format = audio.DefaultFormat()
	if doc, ok := frame.Payload.(map[string]any); ok {
		if audioDoc, ok := doc["audio"].(map[string]any); ok {
			if rate, ok := audioDoc["sample_rate"].(float64); ok && rate > 0 {
				s.format.SampleRate = int(rate)
			}
			if bits, ok := audioDoc["bits"].(float64); ok && bits > 0 {
				s.format.Bits = int(bits)
			}
			if channels, ok := audioDoc["channel"].(float64); ok && channels > 0 {
				s.format.Channels = int(channels)
			}
		}
	}
	s.configured = true

	s.logger.Info("config accepted",
		"sequence", frame.Sequence,
		"sample_rate", s.format.SampleRate,
		"bits", s.format.Bits,
		"channels", s.format.Channels)
	s.sendResponse(frame.Sequence, "", false)
}

// handleAudio tallies the segment and acks it; on the last package it sends
// the final transcript. Returns true when the session is complete.
func (s *stubSession) handleAudio(frame wire.Frame) bool {
	pcm := payloadBytes(frame.Payload)
	s.totalBytes += len(pcm)
	s.lastRMS = audio.RMS(audio.PCMBytesToInt16(pcm))

	if frame.IsLastPackage {
		s.logger.Info("last audio segment received",
			"sequence", frame.Sequence, "total_bytes", s.totalBytes)
		s.sendResponse(frame.Sequence, s.transcript(), true)
		return true
	}

	s.sendAck(frame.Sequence)
	return false
}

// transcript is the fake recognition result: a description of what arrived.
func (s *stubSession) transcript() string {
	duration := s.format.Duration(s.totalBytes)
	return fmt.Sprintf("received %dms of audio (rms %.3f)", duration.Milliseconds(), s.lastRMS)
}

func (s *stubSession) sendResponse(seq int32, text string, last bool) {
	flags := wire.FlagPositive
	if last {
		flags = wire.FlagNegativeWithSequence
	}

	payload := map[string]any{"result": map[string]any{"text": text}}
	data, err := wire.EncodeServerResponse(flags, seq, payload,
		wire.SerializationJSON, wire.CompressionGzip)
	if err != nil {
		s.logger.Error("encode response failed", "error", err)
		return
	}
	s.write(data)
}

func (s *stubSession) sendAck(seq int32) {
	data, err := wire.EncodeServerAck(seq, nil,
		wire.SerializationNone, wire.CompressionNone)
	if err != nil {
		s.logger.Error("encode ack failed", "error", err)
		return
	}
	s.write(data)
}

func (s *stubSession) sendError(code uint32, message string) {
	payload := map[string]any{"error": message}
	data, err := wire.EncodeServerError(code, payload,
		wire.SerializationJSON, wire.CompressionGzip, false)
	if err != nil {
		s.logger.Error("encode error response failed", "error", err)
		return
	}
	s.write(data)
}

func (s *stubSession) write(data []byte) {
	_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
		s.logger.Error("write error", "error", err)
	}
}

// payloadBytes recovers raw audio from a decoded payload. The payload codec
// hands back a string when the bytes happen to be valid UTF-8, so both
// shapes must be accepted.
func payloadBytes(payload any) []byte {
	switch v := payload.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}
