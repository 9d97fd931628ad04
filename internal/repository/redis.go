package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"broadcast/internal/models"
	"broadcast/internal/service"
)

const (
	roomsKey          = "rooms"
	roomChannelPrefix = "room:"
	newMessageEvent   = "newMessage"
)

// RoomEnvelope is published on a room channel.
type RoomEnvelope struct {
	Event string             `json:"event"`
	Data  models.RoomMessage `json:"data"`
}

// RedisHub keeps the set of active rooms and fans messages out over pub/sub.
type RedisHub struct {
	client *redis.Client
}

func NewRedisHub(addr string, password string) (*RedisHub, error) {
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisHub{client: client}, nil
}

var (
	_ service.RoomStore = (*RedisHub)(nil)
	_ service.Publisher = (*RedisHub)(nil)
)

func RoomChannel(room string) string {
	return roomChannelPrefix + room
}

func (h *RedisHub) ActiveRooms(ctx context.Context) ([]string, error) {
	return h.client.SMembers(ctx, roomsKey).Result()
}

func (h *RedisHub) AddRoom(ctx context.Context, room string) error {
	return h.client.SAdd(ctx, roomsKey, room).Err()
}

func (h *RedisHub) RemoveRoom(ctx context.Context, room string) error {
	return h.client.SRem(ctx, roomsKey, room).Err()
}

func (h *RedisHub) Publish(ctx context.Context, msg models.RoomMessage) error {
	payload, err := json.Marshal(RoomEnvelope{Event: newMessageEvent, Data: msg})
	if err != nil {
		return err
	}
	return h.client.Publish(ctx, RoomChannel(msg.Room), payload).Err()
}

func (h *RedisHub) Close() error {
	return h.client.Close()
}
