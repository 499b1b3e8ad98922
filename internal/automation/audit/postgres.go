package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/juju/clock"

	"service-automation/internal/common/database"
)

// PostgresAuditor appends events to the audit_log table.
type PostgresAuditor struct {
	db    *sql.DB
	clock clock.Clock
}

func NewPostgresAuditor(client *database.PostgresClient, clk clock.Clock) *PostgresAuditor {
	return &PostgresAuditor{db: client.DB, clock: clk}
}

func (p *PostgresAuditor) LogEvent(ctx context.Context, refID, eventType, actor string, payload map[string]interface{}) error {
	details, err := json.Marshal(payload)
	if err != nil {
		details = []byte("{}")
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, entity_id, actor_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		eventType,
		refID,
		actorOrSystem(actor),
		details,
		p.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("audit insert failed: %w", err)
	}
	return nil
}
