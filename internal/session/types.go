package session

import (
	"time"

	"github.com/eleven-am/asr-stream/internal/audio"
)

// State tracks session progression. Transitions only move forward:
// Idle -> ConfigSent -> Streaming -> Draining -> Closed.
type State int

const (
	StateIdle State = iota
	StateConfigSent
	StateStreaming
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfigSent:
		return "config_sent"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Options controls a recognition session. Zero values fall back to the
// defaults the service was tuned against.
type Options struct {
	UID        string
	ModelName  string
	EnablePunc bool

	// SegmentDuration is how much audio each frame carries.
	SegmentDuration time.Duration

	// Paced inserts a SegmentDuration wait between segment sends,
	// modeling real-time delivery. Leave false for fast replay.
	Paced bool

	HandshakeTimeout time.Duration
	SegmentTimeout   time.Duration
	DrainTimeout     time.Duration
	DrainAttempts    int
}

const (
	defaultSegmentDuration  = 300 * time.Millisecond
	defaultHandshakeTimeout = 10 * time.Second
	defaultSegmentTimeout   = 5 * time.Second
	defaultDrainTimeout     = 3 * time.Second
	defaultDrainAttempts    = 5
)

func (o Options) withDefaults() Options {
	if o.UID == "" {
		o.UID = "asr-stream"
	}
	if o.ModelName == "" {
		o.ModelName = "asr"
	}
	if o.SegmentDuration <= 0 {
		o.SegmentDuration = defaultSegmentDuration
	}
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = defaultHandshakeTimeout
	}
	if o.SegmentTimeout <= 0 {
		o.SegmentTimeout = defaultSegmentTimeout
	}
	if o.DrainTimeout <= 0 {
		o.DrainTimeout = defaultDrainTimeout
	}
	if o.DrainAttempts <= 0 {
		o.DrainAttempts = defaultDrainAttempts
	}
	return o
}

// ConfigRequest is the structured document sent in the configuration frame.
// Field names match the service contract exactly.
type ConfigRequest struct {
	User    UserInfo       `json:"user"`
	Audio   AudioInfo      `json:"audio"`
	Request RequestOptions `json:"request"`
}

type UserInfo struct {
	UID string `json:"uid"`
}

type AudioInfo struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate"`
	Bits       int    `json:"bits"`
	Channel    int    `json:"channel"`
	Codec      string `json:"codec"`
}

type RequestOptions struct {
	ModelName  string `json:"model_name"`
	EnablePunc bool   `json:"enable_punc"`
	RequestID  string `json:"reqid,omitempty"`
}

func newConfigRequest(opts Options, format audio.Format, requestID string) ConfigRequest {
	return ConfigRequest{
		User: UserInfo{UID: opts.UID},
		Audio: AudioInfo{
			Format:     "pcm",
			SampleRate: format.SampleRate,
			Bits:       format.Bits,
			Channel:    format.Channels,
			Codec:      format.Codec,
		},
		Request: RequestOptions{
			ModelName:  opts.ModelName,
			EnablePunc: opts.EnablePunc,
			RequestID:  requestID,
		},
	}
}
