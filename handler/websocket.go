package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"somnus_tickets/config"
	"somnus_tickets/database"
	"somnus_tickets/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

var (
	redisClient = redis.NewClient(&redis.Options{
		Addr: config.ConfigDefault("REDIS_ADDR", "localhost:6379"),
	})

	clients = make(map[uint]map[*websocket.Conn]bool)
	mu      sync.Mutex
)

// FetchEventAvailability builds the per-ticket-type remaining snapshot that
// both the initial WS frame and the pub/sub broadcasts carry.
func FetchEventAvailability(eventID uint) ([]availabilityRow, error) {
	var types []model.TicketType
	if err := database.DB.Where("event_id = ?", eventID).Order("id").Find(&types).Error; err != nil {
		return nil, err
	}

	rows := make([]availabilityRow, 0, len(types))
	for _, tt := range types {
		rows = append(rows, availabilityRow{
			TicketTypeID: tt.ID,
			Name:         tt.Name,
			Remaining:    tt.MaxQuantity - tt.SoldQuantity,
			SoldOut:      tt.SoldQuantity >= tt.MaxQuantity,
		})
	}
	return rows, nil
}

type availabilityRow struct {
	TicketTypeID uint   `json:"ticketTypeId"`
	Name         string `json:"name"`
	Remaining    int    `json:"remaining"`
	SoldOut      bool   `json:"soldOut"`
}

// AvailabilitySocket streams live availability for one event. Clients join a
// per-event room; updates arrive over the Redis channel for that event.
func AvailabilitySocket(c *websocket.Conn) {
	id64, _ := strconv.ParseUint(c.Params("id"), 10, 64)
	eventID := uint(id64)

	defer func() {
		mu.Lock()
		if clients[eventID] != nil {
			delete(clients[eventID], c)
		}
		mu.Unlock()
		c.Close()
	}()

	mu.Lock()
	if clients[eventID] == nil {
		clients[eventID] = make(map[*websocket.Conn]bool)
	}
	clients[eventID][c] = true
	mu.Unlock()

	// first frame: current snapshot
	rows, _ := FetchEventAvailability(eventID)
	c.WriteJSON(rows)

	pubsub := redisClient.Subscribe(
		context.Background(),
		fmt.Sprintf("event:%d", eventID),
	)
	defer pubsub.Close()

	channel := pubsub.Channel()

	for msg := range channel {
		payload := []byte(msg.Payload)

		mu.Lock()
		for conn := range clients[eventID] {
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				conn.Close()
				delete(clients[eventID], conn)
			}
		}
		mu.Unlock()
	}
}

// PublishAvailability pushes a fresh snapshot onto the event's Redis channel
// after the ledger moves. Failures only cost a stale frontend counter, so
// they are swallowed.
func PublishAvailability(eventID uint) {
	rows, err := FetchEventAvailability(eventID)
	if err != nil {
		return
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	redisClient.Publish(context.Background(), fmt.Sprintf("event:%d", eventID), payload)
}
