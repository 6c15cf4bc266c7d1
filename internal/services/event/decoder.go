package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	msg "github.com/LeonardoBeccarini/irrixa/internal/model/messages"
	"github.com/LeonardoBeccarini/irrixa/pkg/dedup"
)

const (
	TypeConfigSaved      = "config_saved"
	TypeActualIrrigation = "actual_irrigation"
)

// CommonEvent is the normalized form of every announcement the service stores.
type CommonEvent struct {
	EventID   string
	EventType string // config_saved | actual_irrigation
	Block     string
	Date      string // only for actual_irrigation
	Fields    map[string]interface{}
	Timestamp time.Time
}

// MQTTHandler decodes announcements, drops redeliveries and hands the result to sink.
type MQTTHandler struct {
	sink  func(CommonEvent)
	dedup *dedup.Deduper
	now   func() time.Time
}

func NewMQTTHandler(sink func(CommonEvent), d *dedup.Deduper) *MQTTHandler {
	return &MQTTHandler{sink: sink, dedup: d, now: time.Now}
}

// Handle matches mqtt's delivery callback shape used by rabbitmq.MultiConsumer.
func (h *MQTTHandler) Handle(_ string, m mqtt.Message) error {
	evt, ok, err := h.decode(m.Topic(), m.Payload())
	if err != nil || !ok {
		return err
	}
	if h.dedup != nil && !h.dedup.ShouldProcess(dedupKey(evt.EventID, m.Payload())) {
		return nil
	}
	if h.sink != nil {
		h.sink(evt)
	}
	return nil
}

func (h *MQTTHandler) decode(topic string, payload []byte) (CommonEvent, bool, error) {
	var (
		evt CommonEvent
		err error
	)
	switch {
	case strings.HasPrefix(topic, msg.TopicConfigSaved+"/"):
		evt, err = decodeConfigSaved(topic, payload)
	case strings.HasPrefix(topic, msg.TopicActualIrrigation+"/"):
		evt, err = decodeActualIrrigation(topic, payload)
	default:
		return CommonEvent{}, false, nil // ignora altri topic
	}
	if err != nil {
		return CommonEvent{}, false, err
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = h.now().UTC()
	}
	return evt, true, nil
}

// redeliveries carry the same event_id; older publishers without one are keyed by payload
func dedupKey(eventID string, payload []byte) string {
	if eventID != "" {
		return eventID
	}
	hh := sha256.Sum256(payload)
	return hex.EncodeToString(hh[:])
}

func decodeConfigSaved(topic string, payload []byte) (CommonEvent, error) {
	var c msg.ConfigSavedEvent
	if err := json.Unmarshal(payload, &c); err != nil {
		return CommonEvent{}, err
	}
	block := pickBlock(topic, c.Block, msg.TopicConfigSaved+"/")
	if block == "" {
		return CommonEvent{}, errors.New("configSaved: missing block")
	}
	return CommonEvent{
		EventID:   c.EventID,
		EventType: TypeConfigSaved,
		Block:     block,
		Fields: map[string]interface{}{
			"crop":                   string(c.Config.Crop),
			"crop_stage":             string(c.Config.Stage),
			"irrigation_type":        string(c.Config.IrrigationType),
			"soil_type":              string(c.Config.SoilType),
			"application_rate_mm_hr": c.Config.ApplicationRateMMHr,
			"raw_mm_per_m":           c.Config.RAWMMPerM,
			"ndvi_display_mode":      string(c.Config.NDVIDisplayMode),
		},
		Timestamp: c.Timestamp,
	}, nil
}

func decodeActualIrrigation(topic string, payload []byte) (CommonEvent, error) {
	var a msg.ActualIrrigationEvent
	if err := json.Unmarshal(payload, &a); err != nil {
		return CommonEvent{}, err
	}
	block := pickBlock(topic, a.Block, msg.TopicActualIrrigation+"/")
	if block == "" || a.Date == "" {
		return CommonEvent{}, errors.New("actualIrrigation: missing block/date")
	}
	return CommonEvent{
		EventID:   a.EventID,
		EventType: TypeActualIrrigation,
		Block:     block,
		Date:      a.Date,
		Fields:    map[string]interface{}{"mm": a.MM},
		Timestamp: a.Timestamp,
	}, nil
}

// pickBlock usa il payload, oppure il topic "prefix/{block}".
func pickBlock(topic, block, prefix string) string {
	if b := strings.TrimSpace(block); b != "" {
		return b
	}
	return strings.SplitN(strings.TrimPrefix(topic, prefix), "/", 2)[0]
}
