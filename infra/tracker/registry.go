package tracker

import (
	"fmt"

	"github.com/kilianp07/disburse/core/disburse"
	"github.com/kilianp07/disburse/core/factory"
	"github.com/kilianp07/disburse/infra/mqtt"
)

var newMQTTClient = func(cfg mqtt.Config) (Publisher, error) {
	return mqtt.NewPahoClient(cfg)
}

func domainOf(conf map[string]any) string {
	d, _ := conf["domain"].(string)
	return d
}

func init() {
	_ = disburse.RegisterTracker("memory", func(conf map[string]any) (disburse.Tracker, error) {
		return NewMemoryTracker(domainOf(conf)), nil
	})

	_ = disburse.RegisterTracker("redis", func(conf map[string]any) (disburse.Tracker, error) {
		var c RedisConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewRedisTracker(c, domainOf(conf))
	})

	_ = disburse.RegisterTracker("mqtt", func(conf map[string]any) (disburse.Tracker, error) {
		var c mqtt.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		c.SetDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		pub, err := newMQTTClient(c)
		if err != nil {
			return nil, fmt.Errorf("mqtt tracker: %w", err)
		}
		return NewMQTTTracker(pub, domainOf(conf)), nil
	})
}
