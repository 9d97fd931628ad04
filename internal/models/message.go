package models

import (
	"time"

	"github.com/google/uuid"
)

const ServerBotName = "ServerBot"

// BroadcastRequest is the body accepted by POST /api/broadcast/.
type BroadcastRequest struct {
	Msg string `json:"msg"`
}

// RoomMessage is what subscribers of a room receive.
type RoomMessage struct {
	Room     string    `json:"room"`
	Username string    `json:"username"`
	Msg      string    `json:"msg"`
	Date     time.Time `json:"date"`
}

type RoomRequest struct {
	Room string `json:"room"`
}

type Event struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Data      map[string]string `json:"data"`
	CreatedAt time.Time         `json:"created_at"`
}

func NewEvent(name string, data map[string]string) Event {
	return Event{
		ID:        uuid.NewString(),
		Name:      name,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}
}
