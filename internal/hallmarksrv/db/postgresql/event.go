package postgresql

import (
	"context"

	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/common/apperrors"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/dberror"
	"github.com/cryptocreeper94-sudo/brewandboard-sub001/internal/hallmarksrv/db/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// AppendEvent writes an audit trail entry. Events are append-only; there is
// deliberately no update or delete counterpart.
func (hd *hallmarkDb) AppendEvent(ctx context.Context, event *models.HallmarkEvent) apperrors.Error {
	query := `
		INSERT INTO hallmark_events (event_id, hallmark_id, event_type, data, requester_ip, requester_ua)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	errdb := hd.conn().QueryRowContext(ctx, query, event.EventID, event.HallmarkID,
		event.EventType, event.Data, event.RequesterIP, event.RequesterUA).Scan(&event.CreatedAt)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to append hallmark event")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// ListEvents returns the audit trail of a hallmark in write order.
func (hd *hallmarkDb) ListEvents(ctx context.Context, hallmarkID uuid.UUID) ([]*models.HallmarkEvent, apperrors.Error) {
	query := `
		SELECT event_id, hallmark_id, event_type, data, requester_ip, requester_ua, created_at
		FROM hallmark_events
		WHERE hallmark_id = $1
		ORDER BY created_at ASC`

	rows, errdb := hd.conn().QueryContext(ctx, query, hallmarkID)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to list hallmark events")
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	defer rows.Close()

	var events []*models.HallmarkEvent
	for rows.Next() {
		var e models.HallmarkEvent
		errdb := rows.Scan(&e.EventID, &e.HallmarkID, &e.EventType, &e.Data,
			&e.RequesterIP, &e.RequesterUA, &e.CreatedAt)
		if errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to scan hallmark event")
			return nil, dberror.ErrDatabase.Err(errdb)
		}
		events = append(events, &e)
	}
	if errdb := rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return events, nil
}
