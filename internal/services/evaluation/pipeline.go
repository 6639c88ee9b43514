// Package evaluation turns soil samples into findings, reads them aloud and
// stores them when the farmer asks for the report.
package evaluation

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/krishimitra/krishi_mitra/internal/classifier"
	"github.com/krishimitra/krishi_mitra/internal/i18n"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	"github.com/krishimitra/krishi_mitra/internal/speech"
	"github.com/krishimitra/krishi_mitra/internal/store"
)

type Pipeline struct {
	store   store.Store
	speaker speech.Speaker
	metrics *Metrics
	log     *zap.SugaredLogger
	now     func() time.Time
}

// NewPipeline wires the pipeline. speaker and metrics may be nil.
func NewPipeline(s store.Store, speaker speech.Speaker, metrics *Metrics, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{store: s, speaker: speaker, metrics: metrics, log: log, now: time.Now}
}

// Evaluate validates the sample and classifies it.
func (p *Pipeline) Evaluate(sample entities.SoilSample) ([]entities.Finding, error) {
	if err := classifier.Validate(sample); err != nil {
		return nil, err
	}
	findings := classifier.Classify(sample)
	p.metrics.observe(findings)
	return findings, nil
}

// Speak reads every finding after the results heading, in lang when a
// translation exists, and reports the language actually used. It returns as
// soon as speech has started.
func (p *Pipeline) Speak(ctx context.Context, findings []entities.Finding, lang string) (i18n.Lang, error) {
	text, used := i18n.NarrateAll(findings, lang)
	return used, p.say(ctx, text, used)
}

// SpeakFinding reads a single finding.
func (p *Pipeline) SpeakFinding(ctx context.Context, f entities.Finding, lang string) (i18n.Lang, error) {
	text, used := i18n.Narrate(f, lang)
	return used, p.say(ctx, text, used)
}

func (p *Pipeline) say(ctx context.Context, text string, l i18n.Lang) error {
	if p.speaker == nil {
		return ErrSpeechDisabled
	}
	u := speech.NewUtterance(text)
	u.Lang = i18n.SpeechLocale(l)
	return p.speaker.Speak(ctx, u)
}

func (p *Pipeline) StopSpeaking() {
	if p.speaker != nil {
		p.speaker.Stop()
	}
}

func (p *Pipeline) Speaking() bool {
	return p.speaker != nil && p.speaker.Speaking()
}

// Save stores one evaluation_results row holding sample and its findings.
// It is attempted once; failures come back in the Result for the caller to show.
func (p *Pipeline) Save(ctx context.Context, email string, sample entities.SoilSample) Result {
	email = strings.TrimSpace(email)
	if !validGmail(email) {
		return Failed(ErrInvalidEmail)
	}
	if err := classifier.Validate(sample); err != nil {
		return Failed(err)
	}
	rec := entities.EvaluationRecord{
		Email:     email,
		Sample:    sample,
		Findings:  classifier.Classify(sample),
		CreatedAt: p.now().UTC(),
	}
	id, err := store.InsertRecord(ctx, p.store, store.EvaluationResults, rec)
	if err != nil {
		p.metrics.saveFailed()
		p.log.Errorf("evaluation: save for %s failed: %v", email, err)
		return Failed(err)
	}
	p.log.Infof("evaluation: saved %s", id)
	return Ok(id)
}

// History lists saved evaluations for email, newest first.
func (p *Pipeline) History(ctx context.Context, email string, limit int) ([]entities.EvaluationRecord, error) {
	q := store.Query{Table: store.EvaluationResults}.Where("email", strings.TrimSpace(email)).Newest(limit)
	return store.SelectRecords[entities.EvaluationRecord](ctx, p.store, q)
}

func validGmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), "@gmail.com") && len(email) > len("@gmail.com")
}
