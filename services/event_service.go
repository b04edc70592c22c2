package services

import (
	"encoding/json"
	"log"

	"spynet-qr-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventActor carries the optional attribution ids for a game event
type EventActor struct {
	PlayerID  *string
	ZoneID    *string
	FactionID *string
}

// EventService appends to the game event stream. Events are telemetry:
// failures are logged and swallowed, never surfaced to the request.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// Log records an event with a JSON payload.
func (s *EventService) Log(eventType string, payload map[string]interface{}, actor EventActor) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ [EVENTS] Failed to marshal payload for %s: %v", eventType, err)
		return
	}
	event := models.GameEvent{
		ID:        uuid.NewString(),
		EventType: eventType,
		PlayerID:  actor.PlayerID,
		ZoneID:    actor.ZoneID,
		FactionID: actor.FactionID,
		Payload:   string(raw),
	}
	if err := s.DB.Create(&event).Error; err != nil {
		log.Printf("⚠️ [EVENTS] Failed to record %s: %v", eventType, err)
	}
}
