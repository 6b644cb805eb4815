package sync

import (
	"fmt"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/connectivity"
)

// Realtime subscribes to the broker's change feed and turns messages into
// per-table invalidation events. The payload is deliberately ignored: a
// message on "<prefix>/changes/<table>" only means "that table changed,
// refetch it". The broker connection also drives the connectivity monitor,
// so losing the broker flips the whole client offline.
type Realtime struct {
	client  mqtt.Client
	topic   string
	changes chan string
}

// NewRealtime connects to the broker and subscribes to the change feed.
// The paho client keeps reconnecting on its own; each reconnect resubscribes
// and flips the monitor back online.
func NewRealtime(brokerURL, prefix string, mon *connectivity.Monitor) (*Realtime, error) {
	r := &Realtime{
		topic:   fmt.Sprintf("%s/changes/#", prefix),
		changes: make(chan string, 16),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("showdesk-%s", uuid.NewString()[:8]))
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(client mqtt.Client) {
		log.Info().Str("topic", r.topic).Msg("connected to realtime broker")
		if token := client.Subscribe(r.topic, 1, r.onMessage); token.Wait() && token.Error() != nil {
			log.Error().Err(token.Error()).Str("topic", r.topic).Msg("failed to subscribe to change feed")
			return
		}
		mon.SetOnline()
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Warn().Err(err).Msg("realtime broker connection lost")
		mon.SetOffline()
	}

	r.client = mqtt.NewClient(opts)
	if token := r.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to realtime broker: %w", token.Error())
	}
	return r, nil
}

// Changes is the invalidation feed consumed by the manager. Values are
// remote table names.
func (r *Realtime) Changes() <-chan string { return r.changes }

// Client exposes the broker connection for publishers that share it, like
// the alert fan-out.
func (r *Realtime) Client() mqtt.Client { return r.client }

func (r *Realtime) onMessage(_ mqtt.Client, msg mqtt.Message) {
	parts := strings.Split(msg.Topic(), "/")
	table := parts[len(parts)-1]
	log.Debug().Str("table", table).Msg("change notification")
	select {
	case r.changes <- table:
	default:
		// feed is saturated, the pending refetch will pick the change up
	}
}

// Close disconnects from the broker.
func (r *Realtime) Close() {
	r.client.Disconnect(250)
	close(r.changes)
}
