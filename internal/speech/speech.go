// Package speech reads evaluation results aloud. At most one utterance plays
// at a time: a new Speak cancels the one in flight.
package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyUtterance = errors.New("speech: empty utterance")
	ErrClosed         = errors.New("speech: voice closed")
)

const (
	DefaultLang  = "en-IN"
	DefaultRate  = 0.8
	DefaultPitch = 1.0
)

type Utterance struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Rate  float64 `json:"rate"`
	Pitch float64 `json:"pitch"`
}

// NewUtterance returns text with the default voice settings.
func NewUtterance(text string) Utterance {
	return Utterance{Text: text}.withDefaults()
}

func (u Utterance) withDefaults() Utterance {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Lang == "" {
		u.Lang = DefaultLang
	}
	if u.Rate <= 0 {
		u.Rate = DefaultRate
	}
	if u.Pitch <= 0 {
		u.Pitch = DefaultPitch
	}
	return u
}

// Duration estimates how long u takes to read at its rate.
func Duration(u Utterance) time.Duration {
	const charsPerSecond = 14.0 // rate 1.0
	rate := u.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	n := float64(utf8.RuneCountInString(u.Text))
	return time.Duration(n / (charsPerSecond * rate) * float64(time.Second))
}

// Synthesizer plays one utterance, returning when it finished or ctx was cancelled.
type Synthesizer interface {
	Synthesize(ctx context.Context, u Utterance) error
}

type Speaker interface {
	Speak(ctx context.Context, u Utterance) error
	Stop()
	Speaking() bool
}

// Voice is a Speaker where the last Speak wins.
type Voice struct {
	synth Synthesizer
	log   *zap.SugaredLogger

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	speaking bool
	closed   bool
	wg       sync.WaitGroup
}

var _ Speaker = (*Voice)(nil)

func NewVoice(synth Synthesizer, log *zap.SugaredLogger) *Voice {
	return &Voice{synth: synth, log: log}
}

// Speak starts u in the background and returns immediately. The utterance
// outlives ctx's cancellation; only Stop, Close or a later Speak end it.
func (v *Voice) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return ErrEmptyUtterance
	}
	u = u.withDefaults()

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	uctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	v.gen++
	gen := v.gen
	v.cancel = cancel
	v.speaking = true
	v.wg.Add(1)
	v.mu.Unlock()

	go func() {
		defer v.wg.Done()
		defer cancel()
		err := v.synth.Synthesize(uctx, u)

		v.mu.Lock()
		if v.gen == gen {
			v.speaking = false
			v.cancel = nil
		}
		v.mu.Unlock()

		switch {
		case err == nil:
			v.log.Debugf("speech: finished %s", u.ID)
		case errors.Is(err, context.Canceled):
			v.log.Debugf("speech: cancelled %s", u.ID)
		default:
			v.log.Warnf("speech: utterance %s failed: %v", u.ID, err)
		}
	}()
	return nil
}

// Stop cancels the utterance in flight, if any.
func (v *Voice) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.speaking = false
}

func (v *Voice) Speaking() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speaking
}

// Close stops speaking, rejects further Speak calls and waits for the backend to return.
func (v *Voice) Close() {
	v.Stop()
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.wg.Wait()
}
