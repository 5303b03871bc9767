package natsadapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"
)

// EventPublisher fans out integration lifecycle notifications. Publishing is
// best-effort; callers treat failures as non-fatal.
type EventPublisher interface {
	IntegrationConnected(ctx context.Context, userID uint, service string) error
	TasksSynced(ctx context.Context, userID uint, created, updated int) error
}

type eventPublisher struct {
	conn             *nats.Conn
	connectedSubject string
	syncedSubject    string
}

func NewEventPublisher(conn *nats.Conn, connectedSubject, syncedSubject string) EventPublisher {
	return &eventPublisher{conn: conn, connectedSubject: connectedSubject, syncedSubject: syncedSubject}
}

func (p *eventPublisher) IntegrationConnected(ctx context.Context, userID uint, service string) error {
	return p.publish(p.connectedSubject, map[string]interface{}{
		"user_id": userID,
		"service": service,
	})
}

func (p *eventPublisher) TasksSynced(ctx context.Context, userID uint, created, updated int) error {
	return p.publish(p.syncedSubject, map[string]interface{}{
		"user_id": userID,
		"created": created,
		"updated": updated,
	})
}

func (p *eventPublisher) publish(subject string, payload map[string]interface{}) error {
	payload["event_id"] = uuid.NewString()
	payload["at"] = time.Now().UTC().Format(time.RFC3339)
	data, _ := json.Marshal(payload)
	return p.conn.Publish(subject, data)
}
