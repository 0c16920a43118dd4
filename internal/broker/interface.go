package broker

import (
	"context"
	"fmt"
	"strings"
)

// ExchangeChat is the exchange all room messages are published to.
const ExchangeChat = "chat.exchange"

// RoomKey returns the routing key for a room's topic.
func RoomKey(roomID uint) string {
	return fmt.Sprintf("room.%d", roomID)
}

// TopicForExchange maps an exchange name to a broker topic name
// ("chat.exchange" → "chat-exchange").
func TopicForExchange(exchange string) string {
	return strings.ReplaceAll(exchange, ".", "-")
}

// Publisher delivers payloads to subscribers of a routing key. Delivery is
// fire-and-forget from the core's perspective; guarantees belong to the
// broker.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, payload interface{}) error
	Close() error
}
