package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fermwerk/biocore/internal/infrastructure/mqtt"
	"github.com/fermwerk/biocore/internal/reading"
)

// handleTimeout bounds the database work done for one message.
const handleTimeout = 10 * time.Second

// Broker is the slice of the MQTT client the service needs.
// Satisfied by *mqtt.Client.
type Broker interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Mirror receives accepted readings for secondary storage.
// Satisfied by *influxdb.Client.
type Mirror interface {
	WriteReading(r *reading.Reading)
}

// Logger defines the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Payload is the observation document devices publish.
//
// Timestamp is the event time in RFC 3339; omitted means "stamp on
// arrival". The remaining fields mirror the reading data document.
type Payload struct {
	Timestamp    time.Time      `json:"timestamp,omitempty"`
	SensorType   string         `json:"sensorType"`
	Value        float64        `json:"value"`
	Unit         string         `json:"unit,omitempty"`
	Quality      string         `json:"quality,omitempty"`
	Location     string         `json:"location,omitempty"`
	BatteryLevel *float64       `json:"batteryLevel,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// rejection is published on the device's rejection topic when a payload
// fails decoding or validation.
type rejection struct {
	EntityID   string `json:"entity_id"`
	Rule       string `json:"rule"`
	Message    string `json:"message"`
	ReceivedAt string `json:"received_at"`
}

// Service subscribes to device telemetry and feeds the reading log.
type Service struct {
	log    *reading.Log
	broker Broker
	mirror Mirror
	logger Logger
	qos    byte

	topics mqtt.Topics

	// ctx bounds handler work; set by Start.
	ctx context.Context

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// New creates an ingest service. mirror may be nil when InfluxDB is
// disabled.
func New(log *reading.Log, broker Broker, mirror Mirror, qos byte) *Service {
	return &Service{
		log:    log,
		broker: broker,
		mirror: mirror,
		logger: noopLogger{},
		qos:    qos,
		now:    time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// Start subscribes to the telemetry wildcard. ctx bounds the work done
// for messages received after this call.
func (s *Service) Start(ctx context.Context) error {
	s.ctx = ctx
	pattern := s.topics.AllTelemetryReadings()
	if err := s.broker.Subscribe(pattern, s.qos, s.handleMessage); err != nil {
		return fmt.Errorf("subscribing to telemetry: %w", err)
	}
	s.logger.Info("telemetry ingest started", "pattern", pattern)
	return nil
}

// Stop unsubscribes from the telemetry wildcard. Messages already handed
// to the handler finish normally.
func (s *Service) Stop() error {
	if err := s.broker.Unsubscribe(s.topics.AllTelemetryReadings()); err != nil {
		return fmt.Errorf("unsubscribing from telemetry: %w", err)
	}
	s.logger.Info("telemetry ingest stopped")
	return nil
}

// handleMessage processes one telemetry message. The returned error is
// logged by the MQTT client; it never propagates past the handler.
func (s *Service) handleMessage(topic string, raw []byte) error {
	entityID, ok := mqtt.EntityIDFromTelemetryTopic(topic)
	if !ok {
		return fmt.Errorf("unparseable telemetry topic %q", topic)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		s.reject(entityID, "malformed_payload", err.Error())
		return fmt.Errorf("decoding payload from %s: %w", topic, err)
	}

	ctx, cancel := context.WithTimeout(s.baseContext(), handleTimeout)
	defer cancel()

	rd, err := s.log.Append(ctx, entityID, reading.Data{
		SensorType:   p.SensorType,
		Value:        p.Value,
		Unit:         p.Unit,
		Quality:      p.Quality,
		Location:     p.Location,
		BatteryLevel: p.BatteryLevel,
		Metadata:     p.Metadata,
	}, p.Timestamp)
	if err != nil {
		s.rejectError(entityID, err)
		return fmt.Errorf("appending reading for %s: %w", entityID, err)
	}

	if s.mirror != nil {
		s.mirror.WriteReading(rd)
	}

	s.logger.Debug("telemetry accepted",
		"entity_id", entityID,
		"sensor_type", rd.Data.SensorType,
	)
	return nil
}

// rejectError maps an append failure to a rejection document.
func (s *Service) rejectError(entityID string, err error) {
	rule := "rejected"
	var verr *reading.ValidationError
	switch {
	case errors.As(err, &verr):
		rule = verr.Rule
	case errors.Is(err, reading.ErrEntityNotFound):
		rule = "unknown_entity"
	}
	s.reject(entityID, rule, err.Error())
}

// reject publishes a rejection document; failures are logged only, the
// rejection stream is diagnostic.
func (s *Service) reject(entityID, rule, message string) {
	doc, err := json.Marshal(rejection{
		EntityID:   entityID,
		Rule:       rule,
		Message:    message,
		ReceivedAt: s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	topic := s.topics.TelemetryRejected(entityID)
	if err := s.broker.Publish(topic, doc, s.qos, false); err != nil {
		s.logger.Warn("publishing rejection failed",
			"entity_id", entityID,
			"error", err,
		)
	}
}

func (s *Service) baseContext() context.Context {
	if s.ctx != nil {
		return s.ctx
	}
	return context.Background()
}
