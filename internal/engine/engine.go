// Package engine is the workflow layer that keeps group membership,
// join-request approval, invite issuance, and active selections consistent
// under concurrent access. Every use-case is one request-scoped unit of
// work: it opens a transaction against the entity store, validates and
// mutates through the stores, and commits or aborts atomically. The engine
// holds no in-process state between calls.
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/luanafs/clube/internal/events"
	"github.com/luanafs/clube/internal/models"
	"github.com/luanafs/clube/internal/repository"
	"go.uber.org/zap"
)

// eventSource identifies this service in published envelopes.
const eventSource = "clube"

// Engine is the composition root for all use-cases.
type Engine struct {
	tx     repository.TxManager
	events events.Publisher
	logger *zap.Logger

	// now is injectable so tests can pin time.
	now func() time.Time
}

func New(tx repository.TxManager, pub events.Publisher, logger *zap.Logger) *Engine {
	return &Engine{
		tx:     tx,
		events: pub,
		logger: logger,
		now:    time.Now,
	}
}

// publish emits an event after a use-case committed. Failures are logged
// and swallowed: notification fan-out must never fail a committed write.
func (e *Engine) publish(ctx context.Context, eventType string, data map[string]any) {
	env := events.New(eventSource, eventType, data)
	if err := e.events.Publish(ctx, env); err != nil {
		e.logger.Warn("event publish failed",
			zap.String("type", eventType),
			zap.Error(err),
		)
	}
}

// requireOwner loads the group and checks the actor owns it.
func requireOwner(ctx context.Context, s repository.Stores, groupID, actorID uuid.UUID) (*models.Group, error) {
	group, err := s.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != actorID {
		return nil, ErrUnauthorized
	}
	return group, nil
}

// requireMember loads the group and checks the actor belongs to it.
func requireMember(ctx context.Context, s repository.Stores, groupID, actorID uuid.UUID) (*models.Group, error) {
	group, err := s.Groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Memberships.Get(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return group, nil
}
