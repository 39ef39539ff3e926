// Package events re-exports the platform event bus for convenience.
package events

import (
	platformevents "filmdecks_backend/platform/events"
	"filmdecks_backend/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
