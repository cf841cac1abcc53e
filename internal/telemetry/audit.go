package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindwell-service/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter publishes structured audit events for security-relevant
// actions (logins, registrations, crisis alerts).
type AuditEmitter struct {
	log         *zap.SugaredLogger
	publisher   Publisher
	routingKey  string
	service     string
	environment string
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// CrisisEnvelope carries a persisted crisis alert to downstream consumers
// (on-call counselor notification lives outside this service).
type CrisisEnvelope struct {
	SchemaVersion int                `json:"schema_version"`
	EventType     string             `json:"event_type"`
	OccurredAt    string             `json:"occurred_at"`
	Service       string             `json:"service"`
	Alert         models.CrisisAlert `json:"alert"`
}

func NewAuditEmitter(log *zap.SugaredLogger, publisher Publisher, routingKey, service, environment string) *AuditEmitter {
	return &AuditEmitter{
		log:         log,
		publisher:   publisher,
		routingKey:  routingKey,
		service:     service,
		environment: environment,
	}
}

func (e *AuditEmitter) Emit(ctx context.Context, level, text, requestID string, userID *string) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		UserID:        userID,
		Payload: AuditPayload{
			Level: level,
			Text:  text,
		},
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		e.log.Warnw("audit publish failed", "error", err)
	}
}

// EmitCrisis publishes a crisis alert event on the alerts routing key.
func (e *AuditEmitter) EmitCrisis(ctx context.Context, alert models.CrisisAlert) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := CrisisEnvelope{
		SchemaVersion: 1,
		EventType:     "crisis_alert",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Alert:         alert,
	}

	if err := e.publisher.Publish(ctx, "alerts.crisis", envelope); err != nil {
		e.log.Warnw("crisis alert publish failed", "alert_id", alert.ID, "error", err)
	}
}
