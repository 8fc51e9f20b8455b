package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eleven-am/asr-stream/internal/audio"
	"github.com/eleven-am/asr-stream/internal/shared"
	"github.com/eleven-am/asr-stream/internal/transport"
	"github.com/eleven-am/asr-stream/internal/wire"
	"github.com/google/uuid"
)

// Controller drives one recognition session over one connection. It owns
// the sequence counter and the connection; all sends and receives are
// serialized through it. Each send is followed by a bounded wait for a
// response before the next send proceeds.
type Controller struct {
	conn      transport.Conn
	opts      Options
	format    audio.Format
	logger    *slog.Logger
	requestID string

	mu      sync.Mutex
	state   State
	nextSeq int32
}

// New wraps an established connection in a session controller. The
// controller assumes exclusive ownership of conn and closes it when the
// session ends, on every exit path.
func New(conn transport.Conn, format audio.Format, opts Options, logger *slog.Logger) *Controller {
	requestID := uuid.NewString()
	return &Controller{
		conn:      conn,
		opts:      opts.withDefaults(),
		format:    format,
		logger:    logger.With("request_id", requestID),
		requestID: requestID,
		state:     StateIdle,
	}
}

// Dial connects to the recognition service and returns a controller ready
// for Start.
func Dial(ctx context.Context, url, token string, format audio.Format, opts Options, logger *slog.Logger) (*Controller, error) {
	conn, err := transport.Dial(ctx, url, token)
	if err != nil {
		return nil, err
	}
	return New(conn, format, opts, logger), nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// NextSequence is the sequence number the next outbound frame will carry.
func (c *Controller) NextSequence() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextSeq + 1
}

// Start sends the configuration frame with sequence 1 and waits for exactly
// one response. A handshake timeout is fatal: the session closes and no
// audio may be sent.
func (c *Controller) Start(ctx context.Context) ([]wire.Frame, error) {
	if err := c.transition(StateIdle, StateConfigSent); err != nil {
		return nil, err
	}

	seq := c.claimSequence()
	config := newConfigRequest(c.opts, c.format, c.requestID)
	frame, err := wire.EncodeFrame(wire.FullClientRequest, wire.FlagPositive, seq,
		config, wire.SerializationJSON, wire.CompressionGzip)
	if err != nil {
		c.close()
		return nil, fmt.Errorf("encode config frame: %w", err)
	}

	if err := c.conn.Send(frame); err != nil {
		c.close()
		return nil, fmt.Errorf("send config frame: %w", err)
	}
	c.logger.Info("config frame sent",
		"sequence", seq, "sample_rate", c.format.SampleRate, "model", c.opts.ModelName)

	data, err := c.conn.Recv(ctx, c.opts.HandshakeTimeout)
	if err != nil {
		c.close()
		if err == shared.ErrRecvTimeout {
			return nil, shared.ErrHandshakeTimeout
		}
		return nil, fmt.Errorf("await config response: %w", err)
	}

	decoded, err := wire.DecodeFrame(data)
	if err != nil {
		c.logger.Warn("config response malformed", "error", err, "size", len(data))
		return nil, nil
	}
	c.logger.Info("config response received",
		"type", decoded.Type.String(), "last", decoded.IsLastPackage)
	return []wire.Frame{decoded}, nil
}

// Feed segments pcm into fixed-duration chunks and streams them in order,
// one frame per segment, waiting up to the segment timeout for a response
// after each send. Response timeouts are advisory; servers may legitimately
// skip responses for some segments. When final is true the last segment is
// flagged as the last package, signaling end of input.
//
// Cancelling ctx between segments stops further sends and returns the
// frames observed so far; the caller should proceed to Finish.
func (c *Controller) Feed(ctx context.Context, pcm []byte, final bool) ([]wire.Frame, error) {
	c.mu.Lock()
	if c.state != StateConfigSent && c.state != StateStreaming {
		state := c.state
		c.mu.Unlock()
		if state == StateClosed {
			return nil, shared.ErrSessionClosed
		}
		return nil, fmt.Errorf("feed in state %s", state)
	}
	c.state = StateStreaming
	c.mu.Unlock()

	segments := audio.Split(pcm, c.format.SegmentBytes(c.opts.SegmentDuration))
	c.logger.Info("streaming audio",
		"bytes", len(pcm), "segments", len(segments), "segment_ms", c.opts.SegmentDuration.Milliseconds())

	var observed []wire.Frame
	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			c.logger.Info("feed cancelled", "segments_sent", i)
			return observed, err
		}

		flags := wire.FlagPositive
		if final && i == len(segments)-1 {
			flags = wire.FlagNegativeWithSequence
		}

		seq := c.claimSequence()
		frame, err := wire.EncodeFrame(wire.AudioOnlyRequest, flags, seq,
			segment, wire.SerializationNone, wire.CompressionGzip)
		if err != nil {
			c.close()
			return observed, fmt.Errorf("encode audio frame: %w", err)
		}
		if err := c.conn.Send(frame); err != nil {
			c.close()
			return observed, fmt.Errorf("send audio segment %d: %w", i+1, err)
		}

		data, err := c.conn.Recv(ctx, c.opts.SegmentTimeout)
		switch {
		case err == shared.ErrRecvTimeout:
			c.logger.Warn("no response for audio segment",
				"segment", i+1, "sequence", seq)
		case err != nil:
			c.close()
			return observed, fmt.Errorf("await segment response: %w", err)
		default:
			if decoded, derr := wire.DecodeFrame(data); derr != nil {
				c.logger.Warn("segment response malformed", "error", derr, "size", len(data))
			} else {
				observed = append(observed, decoded)
			}
		}

		if c.opts.Paced && i < len(segments)-1 {
			select {
			case <-time.After(c.opts.SegmentDuration):
			case <-ctx.Done():
				c.logger.Info("feed cancelled", "segments_sent", i+1)
				return observed, ctx.Err()
			}
		}
	}

	return observed, nil
}

// Finish drains remaining responses until one carries the last-package
// flag or the attempt budget runs out, then closes the session. Running
// out of attempts is reported as ErrDrainIncomplete alongside whatever
// frames arrived; the session closes either way.
func (c *Controller) Finish(ctx context.Context) ([]wire.Frame, error) {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil, shared.ErrSessionClosed
	}
	c.state = StateDraining
	c.mu.Unlock()
	defer c.close()

	var observed []wire.Frame
	for attempt := 0; attempt < c.opts.DrainAttempts; attempt++ {
		data, err := c.conn.Recv(ctx, c.opts.DrainTimeout)
		if err == shared.ErrRecvTimeout {
			continue
		}
		if err != nil {
			c.logger.Warn("drain receive failed", "attempt", attempt+1, "error", err)
			break
		}

		decoded, err := wire.DecodeFrame(data)
		if err != nil {
			c.logger.Warn("drain response malformed", "error", err, "size", len(data))
			continue
		}
		observed = append(observed, decoded)
		if decoded.IsLastPackage {
			c.logger.Info("last package received", "responses", len(observed))
			return observed, nil
		}
	}

	c.logger.Warn("drain budget exhausted without last package",
		"attempts", c.opts.DrainAttempts, "responses", len(observed))
	return observed, shared.ErrDrainIncomplete
}

// Close tears the session down immediately. Safe to call on any state and
// more than once.
func (c *Controller) Close() error {
	return c.close()
}

func (c *Controller) close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	c.mu.Unlock()
	return c.conn.Close()
}

// claimSequence hands out the next sequence number. Numbers start at 1,
// increase by exactly 1 per frame sent, and are never reused within a
// session, regardless of timeouts or dropped responses.
func (c *Controller) claimSequence() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSeq++
	return c.nextSeq
}

func (c *Controller) transition(from, to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return shared.ErrSessionClosed
	}
	if c.state != from {
		return fmt.Errorf("cannot move %s -> %s", c.state, to)
	}
	c.state = to
	return nil
}
