package tracker

import "context"

// Publisher is the subset of the MQTT client used by MQTTTracker.
type Publisher interface {
	Topic(suffix string) string
	PublishJSON(topic string, v any, retained bool) error
}

// MQTTTracker publishes each status as a retained message on
// <prefix>/<domain>/status, so late subscribers see the latest state.
type MQTTTracker struct {
	*machine
	pub   Publisher
	topic string
}

func NewMQTTTracker(pub Publisher, domain string) *MQTTTracker {
	t := &MQTTTracker{pub: pub, topic: pub.Topic(domain + "/status")}
	t.machine = newMachine(domain, func(_ context.Context, s Status) error {
		return t.pub.PublishJSON(t.topic, s, true)
	})
	return t
}

// Topic is the status topic of the domain.
func (t *MQTTTracker) Topic() string { return t.topic }

// Close disconnects the publisher when it holds a broker connection.
func (t *MQTTTracker) Close() error {
	if d, ok := t.pub.(interface{ Disconnect() }); ok {
		d.Disconnect()
	}
	return nil
}
