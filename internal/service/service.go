package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	log "github.com/sirupsen/logrus"

	"broadcast/internal/models"
)

const (
	EventBroadcast = "newBroadcastMessage"
	EventRoomAdded   = "roomAdded"
	EventRoomRemoved = "roomRemoved"
)

var (
	ErrEmptyMessage = errors.New("no message provided")
	ErrEmptyRoom    = errors.New("no room provided")
	ErrMainRoom     = errors.New("main room cannot be removed")
)

type RoomStore interface {
	ActiveRooms(ctx context.Context) ([]string, error)
	AddRoom(ctx context.Context, room string) error
	RemoveRoom(ctx context.Context, room string) error
}

type Publisher interface {
	Publish(ctx context.Context, msg models.RoomMessage) error
}

type EventLog interface {
	Record(ctx context.Context, event models.Event) error
	ListEvents(ctx context.Context, limit int) ([]models.Event, error)
}

type BroadcastService struct {
	rooms     RoomStore
	publisher Publisher
	events    EventLog
	policy    *bluemonday.Policy
	mainRoom  string
}

func NewBroadcastService(rooms RoomStore, publisher Publisher, events EventLog, mainRoom string) *BroadcastService {
	return &BroadcastService{
		rooms:     rooms,
		publisher: publisher,
		events:    events,
		policy:    bluemonday.StrictPolicy(),
		mainRoom:  mainRoom,
	}
}

// Sanitize strips markup from text so it can be relayed to browsers.
func (s *BroadcastService) Sanitize(text string) string {
	return s.policy.Sanitize(text)
}

// Broadcast sends text as ServerBot to every active room and returns how many
// rooms received it. A failed publish to one room does not stop the others.
func (s *BroadcastService) Broadcast(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, ErrEmptyMessage
	}
	// markup-only input sanitizes to nothing
	text = s.Sanitize(text)
	if text == "" {
		return 0, ErrEmptyMessage
	}

	rooms, err := s.ActiveRooms(ctx)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	delivered := 0
	for _, room := range rooms {
		// the unnamed default room never receives broadcasts
		if room == "" {
			continue
		}
		msg := models.RoomMessage{
			Room:     room,
			Username: models.ServerBotName,
			Msg:      text,
			Date:     now,
		}
		if err := s.publisher.Publish(ctx, msg); err != nil {
			log.WithError(err).WithField("room", room).Error("Failed to publish broadcast")
			continue
		}
		delivered++
	}

	s.record(ctx, EventBroadcast, map[string]string{"msg": text})
	return delivered, nil
}

// ActiveRooms lists the known rooms. The main room is always included.
func (s *BroadcastService) ActiveRooms(ctx context.Context) ([]string, error) {
	rooms, err := s.rooms.ActiveRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	for _, room := range rooms {
		if room == s.mainRoom {
			return rooms, nil
		}
	}
	return append([]string{s.mainRoom}, rooms...), nil
}

func (s *BroadcastService) AddRoom(ctx context.Context, room string) (string, error) {
	room = strings.ReplaceAll(room, " ", "")
	if room == "" {
		return "", ErrEmptyRoom
	}
	if err := s.rooms.AddRoom(ctx, room); err != nil {
		return "", fmt.Errorf("failed to add room %q: %w", room, err)
	}
	s.record(ctx, EventRoomAdded, map[string]string{"room": room})
	return room, nil
}

// RemoveRoom drops room from the fan-out set. The main room always stays.
func (s *BroadcastService) RemoveRoom(ctx context.Context, room string) error {
	room = strings.ReplaceAll(room, " ", "")
	if room == "" {
		return ErrEmptyRoom
	}
	if room == s.mainRoom {
		return ErrMainRoom
	}
	if err := s.rooms.RemoveRoom(ctx, room); err != nil {
		return fmt.Errorf("failed to remove room %q: %w", room, err)
	}
	s.record(ctx, EventRoomRemoved, map[string]string{"room": room})
	return nil
}

func (s *BroadcastService) ListEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.events.ListEvents(ctx, limit)
}

func (s *BroadcastService) record(ctx context.Context, name string, data map[string]string) {
	fields := log.Fields{}
	for k, v := range data {
		fields[logField(k)] = v
	}
	log.WithFields(fields).Info(name)

	event := models.NewEvent(name, data)
	if err := s.events.Record(ctx, event); err != nil {
		log.WithError(err).WithField("event", name).Error("Error storing event")
	}
}

// logField keeps event keys from colliding with the keys logrus reserves.
func logField(key string) string {
	switch key {
	case log.FieldKeyMsg, log.FieldKeyLevel, log.FieldKeyTime, log.FieldKeyLogrusError, log.FieldKeyFunc, log.FieldKeyFile:
		return "event_" + key
	}
	return key
}
