package evaluation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/krishimitra/krishi_mitra/internal/classifier"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
	msg "github.com/krishimitra/krishi_mitra/internal/model/messages"
	"github.com/krishimitra/krishi_mitra/pkg/dedup"
	"github.com/krishimitra/krishi_mitra/pkg/mqttbus"
)

const (
	SensorTopicPrefix = "sensor/soil/"
	EventTopicPrefix  = "event/evaluation/"
)

// ErrInvalidID rejects field or sensor ids that cannot form a single topic level.
var ErrInvalidID = errors.New("evaluation: id is not a topic level")

// Recorder keeps the time series of probe readings. *store.Mirror implements it.
type Recorder interface {
	RecordSample(fieldID, sensorID string, s entities.SoilSample, at time.Time)
	RecordFindings(fieldID, sensorID string, findings []entities.Finding, at time.Time)
}

// Ingest classifies probe readings arriving over MQTT and republishes them
// as evaluation events. Redelivered payloads are dropped.
type Ingest struct {
	p    *Pipeline
	pub  mqttbus.Publisher
	rec  Recorder
	seen *dedup.Deduper
}

// NewIngest wires the handler. rec may be nil.
func NewIngest(p *Pipeline, pub mqttbus.Publisher, rec Recorder, seen *dedup.Deduper) *Ingest {
	return &Ingest{p: p, pub: pub, rec: rec, seen: seen}
}

// Handle is an mqttbus.Handler.
func (in *Ingest) Handle(_ string, m mqtt.Message) error {
	topic := m.Topic()
	if !strings.HasPrefix(topic, SensorTopicPrefix) {
		return nil
	}
	if !in.seen.ShouldProcessPayload(m.Payload()) {
		in.p.metrics.reading("duplicate")
		return nil
	}
	evt, err := in.evaluate(topic, m.Payload())
	if err != nil {
		in.p.metrics.reading("rejected")
		return err
	}
	out := EventTopicPrefix + evt.FieldID + "/" + evt.SensorID
	if err := mqttbus.PublishJSON(in.pub, out, evt); err != nil {
		// Let the broker's redelivery through.
		in.seen.ForgetPayload(m.Payload())
		return fmt.Errorf("evaluation: publish %s: %w", out, err)
	}
	in.p.metrics.reading("processed")

	if in.rec != nil {
		in.rec.RecordSample(evt.FieldID, evt.SensorID, evt.Sample, evt.Timestamp)
		in.rec.RecordFindings(evt.FieldID, evt.SensorID, evt.Findings, evt.Timestamp)
	}
	if evt.Worst != entities.StatusGood {
		in.p.log.Infof("evaluation: %s/%s is %s", evt.FieldID, evt.SensorID, evt.Worst)
	}
	return nil
}

func (in *Ingest) evaluate(topic string, payload []byte) (msg.EvaluationEvent, error) {
	var r msg.SoilReading
	if err := json.Unmarshal(payload, &r); err != nil {
		return msg.EvaluationEvent{}, fmt.Errorf("evaluation: decode %s: %w", topic, err)
	}
	fieldID, sensorID := pickIDs(topic, r.FieldID, r.SensorID, SensorTopicPrefix)
	if fieldID == "" || sensorID == "" {
		return msg.EvaluationEvent{}, errors.New("evaluation: reading without field/sensor")
	}
	if !topicLevel(fieldID) || !topicLevel(sensorID) {
		return msg.EvaluationEvent{}, fmt.Errorf("evaluation: %q/%q: %w", fieldID, sensorID, ErrInvalidID)
	}
	sample := entities.SoilSample{Moisture: r.Moisture, PH: r.PH, Nitrogen: r.Nitrogen}
	findings, err := in.p.Evaluate(sample)
	if err != nil {
		return msg.EvaluationEvent{}, fmt.Errorf("evaluation: %s/%s: %w", fieldID, sensorID, err)
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = in.p.now()
	}
	worst := classifier.Worst(findings)
	return msg.EvaluationEvent{
		FieldID:   fieldID,
		SensorID:  sensorID,
		Severity:  severity(worst),
		Worst:     worst,
		Sample:    sample,
		Findings:  findings,
		Timestamp: ts.UTC(),
	}, nil
}

func severity(s entities.Status) string {
	switch s {
	case entities.StatusCritical:
		return "error"
	case entities.StatusWarning:
		return "warning"
	}
	return "info"
}

// pickIDs prefers the payload, else the topic "prefix/{field}/{sensor}".
func pickIDs(topic, fieldID, sensorID, prefix string) (string, string) {
	if strings.TrimSpace(fieldID) != "" && strings.TrimSpace(sensorID) != "" {
		return fieldID, sensorID
	}
	parts := strings.Split(strings.TrimPrefix(topic, prefix), "/")
	if len(parts) >= 2 {
		return parts[0], parts[1]
	}
	return fieldID, sensorID
}

// topicLevel reports whether id can be published as one MQTT topic level.
func topicLevel(id string) bool {
	return !strings.ContainsAny(id, "/+#\x00")
}
