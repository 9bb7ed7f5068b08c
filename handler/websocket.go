package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"

	"indoor_booking/config"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

func redisAddr() string {
	if addr := config.Config("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

var (
	redisClient = redis.NewClient(&redis.Options{Addr: redisAddr()})

	availabilityMu    sync.Mutex
	availabilityRooms = make(map[string]*availabilityRoom)
)

// wsClient is the slice of the websocket connection the room fan-out needs.
type wsClient interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// paramSource reads route params and query values off the upgraded
// connection.
type paramSource interface {
	Params(key string, defaultValue ...string) string
	Query(key string, defaultValue ...string) string
}

// liveFeedKey pulls the venue and date out of the live-feed route. The route
// declares :venueId, an undeclared param key would read as empty and parse
// to venue 0.
func liveFeedKey(c paramSource) (uint, string) {
	id64, _ := strconv.ParseUint(c.Params("venueId"), 10, 64)
	return uint(id64), c.Query("date")
}

func availabilityChannel(venueId uint, date string) string {
	return fmt.Sprintf("availability:%d:%s", venueId, date)
}

// availabilityRoom is the fan-out group for one (venue, date). The room owns
// the single Redis subscription, clients only receive.
type availabilityRoom struct {
	key    string
	pubsub *redis.PubSub
	conns  map[wsClient]bool
}

// joinRoom registers the connection, creating the room and its subscription
// on first join.
func joinRoom(key string, c wsClient) *availabilityRoom {
	availabilityMu.Lock()
	defer availabilityMu.Unlock()

	room, ok := availabilityRooms[key]
	if !ok {
		room = &availabilityRoom{
			key:    key,
			pubsub: redisClient.Subscribe(context.Background(), key),
			conns:  make(map[wsClient]bool),
		}
		availabilityRooms[key] = room
		go room.listen()
	}
	room.conns[c] = true
	return room
}

// leave drops the connection. The last one out tears the room down and closes
// the subscription, which stops the listen goroutine.
func (r *availabilityRoom) leave(c wsClient) {
	availabilityMu.Lock()
	delete(r.conns, c)
	empty := len(r.conns) == 0
	if empty {
		delete(availabilityRooms, r.key)
	}
	availabilityMu.Unlock()

	if empty && r.pubsub != nil {
		r.pubsub.Close()
	}
}

func (r *availabilityRoom) listen() {
	for msg := range r.pubsub.Channel() {
		r.broadcast([]byte(msg.Payload))
	}
}

// broadcast writes the payload once to every client in the room and drops
// clients whose writes fail.
func (r *availabilityRoom) broadcast(payload []byte) {
	availabilityMu.Lock()
	conns := make([]wsClient, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	availabilityMu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			c.Close()
			r.leave(c)
		}
	}
}

// AvailabilityWebsocket streams the slot grid of one venue and date. The
// client gets the current grid on connect and a fresh copy every time a
// booking changes it.
func AvailabilityWebsocket(c *websocket.Conn) {
	venueId, date := liveFeedKey(c)

	slots, err := coordinator.Availability(venueId, date)
	if err != nil {
		c.WriteJSON(fiberMapError(err))
		c.Close()
		return
	}
	c.WriteJSON(slots)

	room := joinRoom(availabilityChannel(venueId, date), c)
	defer c.Close()
	defer room.leave(c)

	// Hold the connection open until the client goes away.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func fiberMapError(err error) map[string]string {
	return map[string]string{"status": "error", "message": err.Error()}
}

// PublishAvailability re-reads the grid and pushes it through Redis so every
// server instance fans it out to its own sockets. Wired as the coordinator's
// change hook.
func PublishAvailability(venueId uint, date string) {
	slots, err := coordinator.Availability(venueId, date)
	if err != nil {
		log.Printf("availability broadcast failed for venue %d %s: %v", venueId, date, err)
		return
	}

	payload, err := json.Marshal(slots)
	if err != nil {
		log.Printf("availability marshal failed: %v", err)
		return
	}

	if err := redisClient.Publish(context.Background(), availabilityChannel(venueId, date), payload).Err(); err != nil {
		log.Printf("availability publish failed: %v", err)
	}
}
