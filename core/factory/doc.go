// Package factory holds the generic registry behind every pluggable piece of
// a disbursement run: metrics sinks and progress trackers register a
// constructor under a type name, and configuration selects one with a
// ModuleConfig.
//
// A tracker registration looks like:
//
//	reg := factory.NewRegistry[disburse.Tracker]()
//	_ = reg.Register("redis", func(conf map[string]any) (disburse.Tracker, error) {
//		var c tracker.RedisConfig
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return tracker.NewRedisTracker(c, "health")
//	})
//	t, err := reg.Create(factory.ModuleConfig{Type: "redis", Conf: map[string]any{"url": "redis://localhost:6379/0"}})
package factory
