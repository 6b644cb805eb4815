package notify

import (
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

// Alerter delivers one alert to whatever surfaces it (local notification,
// sound, haptics). DedupeKey identifies the occurrence for downstream
// dedup.
type Alerter interface {
	Alert(title, body, dedupeKey string)
}

// LogAlerter writes alerts to the log. Default when no broker is configured.
type LogAlerter struct{}

func (LogAlerter) Alert(title, body, dedupeKey string) {
	log.Info().
		Str("title", title).
		Str("body", body).
		Str("dedupe_key", dedupeKey).
		Msg("alert")
}

// MQTTAlerter publishes alerts to the broker so every connected dashboard
// client can surface them.
type MQTTAlerter struct {
	client mqtt.Client
	topic  string
}

type alertPayload struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	DedupeKey string `json:"dedupe_key"`
	SentAt    string `json:"sent_at"`
}

func NewMQTTAlerter(client mqtt.Client, topicPrefix string) *MQTTAlerter {
	return &MQTTAlerter{client: client, topic: topicPrefix + "/alerts"}
}

func (a *MQTTAlerter) Alert(title, body, dedupeKey string) {
	payload, err := json.Marshal(alertPayload{
		Title:     title,
		Body:      body,
		DedupeKey: dedupeKey,
		SentAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal alert")
		return
	}
	token := a.client.Publish(a.topic, 1, false, payload)
	token.Wait()
	if token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", a.topic).Msg("failed to publish alert")
	}
}

// MultiAlerter fans an alert out to several sinks.
type MultiAlerter []Alerter

func (m MultiAlerter) Alert(title, body, dedupeKey string) {
	for _, a := range m {
		a.Alert(title, body, dedupeKey)
	}
}
