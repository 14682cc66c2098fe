package disburse

import (
	"context"
	"testing"

	"github.com/kilianp07/disburse/core/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type domainTracker struct {
	NopTracker
	domain string
}

func TestNewTracker_InjectsDomain(t *testing.T) {
	require.NoError(t, RegisterTracker("test-domain", func(conf map[string]any) (Tracker, error) {
		var c struct {
			Domain string `json:"domain"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return &domainTracker{domain: c.Domain}, nil
	}))
	tr, err := NewTracker(factory.ModuleConfig{Type: "test-domain"}, "health")
	require.NoError(t, err)
	assert.Equal(t, "health", tr.(*domainTracker).domain)

	tr, err = NewTracker(factory.ModuleConfig{}, "health")
	require.NoError(t, err)
	assert.NoError(t, tr.UpdateProgress(context.Background(), 1, 2))

	_, err = NewTracker(factory.ModuleConfig{Type: "nope"}, "health")
	assert.Error(t, err)
}
