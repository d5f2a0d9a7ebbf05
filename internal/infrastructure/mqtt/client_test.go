package mqtt

import (
	"errors"
	"testing"
)

// These tests cover behaviour that does not require a broker. Connection,
// roundtrip and reconnection coverage lives in integration_test.go behind
// the integration build tag.

func TestCloseNil(t *testing.T) {
	client := &Client{}
	err := client.Close()
	if err != nil {
		t.Errorf("Close() on nil client error = %v, want nil", err)
	}
}

func TestIsConnected_InitialState(t *testing.T) {
	client := &Client{}

	if client.IsConnected() {
		t.Error("IsConnected() should be false for uninitialised client")
	}
}

func TestPublishValidation(t *testing.T) {
	client := &Client{}

	if err := client.Publish("", []byte("x"), 1, false); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}

	if err := client.Publish("biocore/test", []byte("x"), 3, false); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}

	big := make([]byte, maxPayloadSize+1)
	if err := client.Publish("biocore/test", big, 1, false); !errors.Is(err, ErrPublishFailed) {
		t.Errorf("oversized payload error = %v, want ErrPublishFailed", err)
	}

	if err := client.Publish("biocore/test", []byte("x"), 1, false); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected publish error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}
	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}

	if err := client.Subscribe("biocore/test", 3, handler); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("qos 3 error = %v, want ErrInvalidQoS", err)
	}

	if err := client.Subscribe("biocore/test", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler error = %v, want ErrSubscribeFailed", err)
	}

	if err := client.Subscribe("biocore/test", 1, handler); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected subscribe error = %v, want ErrNotConnected", err)
	}

	if client.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", client.SubscriptionCount())
	}
}

func TestUnsubscribeValidation(t *testing.T) {
	client := &Client{subscriptions: make(map[string]subscription)}

	if err := client.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic error = %v, want ErrInvalidTopic", err)
	}

	if err := client.Unsubscribe("biocore/test"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected unsubscribe error = %v, want ErrNotConnected", err)
	}
}

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "TelemetryReading",
			builder: func() string {
				return Topics{}.TelemetryReading("bioreactor-01")
			},
			expected: "biocore/telemetry/bioreactor-01/reading",
		},
		{
			name: "TelemetryRejected",
			builder: func() string {
				return Topics{}.TelemetryRejected("bioreactor-01")
			},
			expected: "biocore/telemetry/bioreactor-01/rejected",
		},
		{
			name: "EntityEvent",
			builder: func() string {
				return Topics{}.EntityEvent("bioreactor-01", "status_changed")
			},
			expected: "biocore/core/entity/bioreactor-01/status_changed",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "biocore/system/status",
		},
		{
			name: "AllTelemetryReadings",
			builder: func() string {
				return Topics{}.AllTelemetryReadings()
			},
			expected: "biocore/telemetry/+/reading",
		},
		{
			name: "AllEntityEvents",
			builder: func() string {
				return Topics{}.AllEntityEvents()
			},
			expected: "biocore/core/entity/+/+",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "biocore/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}

func TestEntityIDFromTelemetryTopic(t *testing.T) {
	tests := []struct {
		topic  string
		wantID string
		wantOk bool
	}{
		{"biocore/telemetry/bioreactor-01/reading", "bioreactor-01", true},
		{"biocore/telemetry/dev/reading", "dev", true},
		{"biocore/telemetry//reading", "", false},
		{"biocore/telemetry/orphan", "", false},
		{"biocore/core/entity/x/y", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			id, ok := EntityIDFromTelemetryTopic(tt.topic)
			if ok != tt.wantOk || id != tt.wantID {
				t.Errorf("EntityIDFromTelemetryTopic(%q) = (%q, %v), want (%q, %v)",
					tt.topic, id, ok, tt.wantID, tt.wantOk)
			}
		})
	}
}
