package speech

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/krishimitra/krishi_mitra/pkg/mqttbus"
)

// WriterSynth prints utterances, optionally holding each one for its estimated duration.
type WriterSynth struct {
	mu   sync.Mutex
	w    io.Writer
	Pace bool
}

func NewWriterSynth(w io.Writer, pace bool) *WriterSynth {
	return &WriterSynth{w: w, Pace: pace}
}

func (s *WriterSynth) Synthesize(ctx context.Context, u Utterance) error {
	s.mu.Lock()
	_, err := fmt.Fprintf(s.w, "[%s] %s\n", u.Lang, u.Text)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("speech: write: %w", err)
	}
	if !s.Pace {
		return nil
	}
	return hold(ctx, Duration(u))
}

const UtteranceTopic = "speech/utterance"

type kioskMessage struct {
	Action string `json:"action"` // speak | cancel
	Utterance
}

// MQTTSynth hands utterances to a voice kiosk listening on Topic. The kiosk
// is told to cancel when the utterance is interrupted.
type MQTTSynth struct {
	pub   mqttbus.Publisher
	Topic string
}

func NewMQTTSynth(pub mqttbus.Publisher) *MQTTSynth {
	return &MQTTSynth{pub: pub, Topic: UtteranceTopic}
}

func (s *MQTTSynth) Synthesize(ctx context.Context, u Utterance) error {
	if err := mqttbus.PublishJSON(s.pub, s.Topic, kioskMessage{Action: "speak", Utterance: u}); err != nil {
		return err
	}
	err := hold(ctx, Duration(u))
	if err != nil {
		cancel := kioskMessage{Action: "cancel", Utterance: Utterance{ID: u.ID}}
		if perr := mqttbus.PublishJSON(s.pub, s.Topic, cancel); perr != nil {
			return fmt.Errorf("speech: cancel %s: %w", u.ID, perr)
		}
	}
	return err
}

func hold(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
