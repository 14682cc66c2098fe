//go:build integration

package tracker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/disburse/core/disburse"
	"github.com/kilianp07/disburse/core/factory"
	"github.com/kilianp07/disburse/test/util"
)

func TestMQTTTracker_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	broker, cleanup, err := util.StartMosquitto(ctx)
	if err != nil {
		t.Skipf("mosquitto container unavailable: %v", err)
	}
	defer cleanup()

	tr, err := disburse.NewTracker(factory.ModuleConfig{
		Type: "mqtt",
		Conf: map[string]any{"broker": broker, "qos": 1, "client_id": "tracker-it"},
	}, "district-7")
	require.NoError(t, err)
	mt := tr.(*MQTTTracker)
	defer func() { _ = mt.Close() }()

	require.NoError(t, mt.MarkRequested(ctx))
	require.NoError(t, mt.UpdateProgress(ctx, 4, 8))

	// A subscriber joining after the updates still gets the retained status.
	got := make(chan Status, 1)
	sub := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("tracker-it-sub"))
	tok := sub.Connect()
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())
	defer sub.Disconnect(100)
	tok = sub.Subscribe(mt.Topic(), 1, func(_ paho.Client, m paho.Message) {
		var s Status
		if json.Unmarshal(m.Payload(), &s) == nil {
			select {
			case got <- s:
			default:
			}
		}
	})
	require.True(t, tok.WaitTimeout(5*time.Second))
	require.NoError(t, tok.Error())

	select {
	case s := <-got:
		assert.Equal(t, "disburse/district-7/status", mt.Topic())
		assert.Equal(t, StateInProgress, s.State)
		assert.Equal(t, 4, s.Current)
		assert.Equal(t, 8, s.Total)
	case <-time.After(10 * time.Second):
		t.Fatal("no retained status received")
	}
}
