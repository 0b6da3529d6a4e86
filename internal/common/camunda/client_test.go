package camunda

import (
	stderrors "errors"
	"testing"
	"time"

	"matching-workers/internal/common/config"
	"matching-workers/internal/common/errors"

	"github.com/stretchr/testify/assert"
)

func TestClientConfigFrom(t *testing.T) {
	cfg := ClientConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 2500})
	assert.Equal(t, "zeebe:26500", cfg.GatewayAddress)
	assert.True(t, cfg.UsePlaintextConnection)
	assert.Equal(t, 2500*time.Millisecond, cfg.ConnectionTimeout)
	assert.Same(t, DefaultRetryConfig, cfg.RetryConfig)

	assert.Equal(t, 10*time.Second, ClientConfigFrom(config.CamundaConfig{}).ConnectionTimeout)
}

func TestBackoff(t *testing.T) {
	cfg := &RetryConfig{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoff(cfg, 0))
	assert.Equal(t, 2*time.Second, backoff(cfg, 1))
	assert.Equal(t, 4*time.Second, backoff(cfg, 2))
	assert.Equal(t, 5*time.Second, backoff(cfg, 3))
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{"refused", stderrors.New("dial tcp: connection refused"), errors.ErrCodeBrokerUnavailable},
		{"grpc unavailable", stderrors.New("rpc error: code = Unavailable"), errors.ErrCodeBrokerUnavailable},
		{"deadline", stderrors.New("context deadline exceeded"), errors.ErrCodeBrokerUnavailable},
		{"rejected", stderrors.New("rpc error: code = InvalidArgument desc = bad bpmn"), errors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapZeebeError(tt.err, "deploy", 2)
			assert.True(t, errors.IsCode(err, tt.wantCode), "got %v", err)
			assert.Contains(t, err.Error(), "StandardError")
		})
	}
}
