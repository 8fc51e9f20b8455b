package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eleven-am/asr-stream/internal/audio"
	"github.com/eleven-am/asr-stream/internal/bootstrap"
	"github.com/eleven-am/asr-stream/internal/session"
	"github.com/eleven-am/asr-stream/internal/shared"
	"github.com/eleven-am/asr-stream/internal/wire"
)

func main() {
	cfg := bootstrap.LoadClientConfig()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	pcm, format, err := loadAudio(cfg, logger)
	if err != nil {
		logger.Error("load audio failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := session.Options{
		SegmentDuration: time.Duration(cfg.SegmentMS) * time.Millisecond,
		Paced:           cfg.Paced,
		EnablePunc:      true,
	}

	ctrl, err := session.Dial(ctx, cfg.ServerURL, cfg.Token, format, opts, logger)
	if err != nil {
		logger.Error("connect failed", "url", cfg.ServerURL, "error", err)
		os.Exit(1)
	}
	defer ctrl.Close()

	frames, err := ctrl.Start(ctx)
	if err != nil {
		logger.Error("handshake failed", "error", err)
		os.Exit(1)
	}
	report(frames, logger)

	frames, err = ctrl.Feed(ctx, pcm, true)
	report(frames, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("streaming failed", "error", err)
		os.Exit(1)
	}

	frames, err = ctrl.Finish(context.Background())
	report(frames, logger)
	if errors.Is(err, shared.ErrDrainIncomplete) {
		logger.Warn("server never sent a last-package response")
	} else if err != nil && !errors.Is(err, shared.ErrSessionClosed) {
		logger.Error("finish failed", "error", err)
		os.Exit(1)
	}
}

// loadAudio reads the configured WAV file, resampling to 16 kHz if needed,
// or synthesizes three seconds of test tone when no file is given.
func loadAudio(cfg *bootstrap.ClientConfig, logger *slog.Logger) ([]byte, audio.Format, error) {
	target := audio.DefaultFormat()

	if cfg.AudioFile == "" {
		logger.Info("no audio file configured, using generated tone")
		return audio.Tone(440, 3*time.Second, target), target, nil
	}

	data, err := os.ReadFile(cfg.AudioFile)
	if err != nil {
		return nil, audio.Format{}, err
	}
	pcm, format, err := audio.DecodeWAV(data)
	if err != nil {
		return nil, audio.Format{}, err
	}

	if format.Channels == 1 && format.Bits == 16 && format.SampleRate != target.SampleRate {
		logger.Info("resampling audio",
			"from", format.SampleRate, "to", target.SampleRate)
		pcm = audio.ResamplePCM(pcm, format.SampleRate, target.SampleRate)
		format.SampleRate = target.SampleRate
	}

	logger.Info("audio loaded",
		"file", cfg.AudioFile,
		"bytes", len(pcm),
		"duration_ms", format.Duration(len(pcm)).Milliseconds())
	return pcm, format, nil
}

func report(frames []wire.Frame, logger *slog.Logger) {
	for _, frame := range frames {
		if text, ok := session.Transcript(frame); ok {
			logger.Info("transcript", "text", text, "last", frame.IsLastPackage)
			continue
		}
		if frame.ErrorCode != nil {
			logger.Error("server error",
				"code", *frame.ErrorCode, "payload", frame.Payload)
			continue
		}
		logger.Info("server frame",
			"type", frame.Type.String(), "last", frame.IsLastPackage)
	}
}
