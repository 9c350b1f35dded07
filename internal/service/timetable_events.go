package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-timetable-api/internal/dto"
	"github.com/noah-isme/uni-timetable-api/internal/scheduler"
)

const (
	RoutingKeyGenerated = "timetable.generated"
	RoutingKeyReset     = "timetable.reset"
)

// EventPublisher delivers timetable events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

func (s *TimetableService) publishGenerated(ctx context.Context, termID string, variant scheduler.Variant, result *scheduler.Result, byReason map[string]int) {
	ids := make([]string, 0, len(result.Committed))
	for _, placement := range result.Committed {
		ids = append(ids, placement.ID)
	}
	s.publish(ctx, RoutingKeyGenerated, dto.TimetableGeneratedEvent{
		TermID:       termID,
		Variant:      string(variant),
		Placed:       len(result.Committed),
		Unplaced:     len(result.Unplaced),
		ByReason:     byReason,
		PlacementIDs: ids,
		OccurredAt:   time.Now().UTC(),
	})
}

func (s *TimetableService) publishReset(ctx context.Context, termID, kind string, removed int64) {
	s.publish(ctx, RoutingKeyReset, dto.TimetableResetEvent{
		TermID:     termID,
		Kind:       kind,
		Removed:    removed,
		OccurredAt: time.Now().UTC(),
	})
}

// publish never fails the caller; delivery errors are logged.
func (s *TimetableService) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.WithoutCancel(ctx), routingKey, event); err != nil {
		s.logger.Warn("timetable event not published", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
