package realtime

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/ashanV/bookly-sub002/internal/chatsync"
)

// Envelope is the wire frame of every pushed event.
type Envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

const channelPrefix = "bookly:rt:"

// NewRedis creates the Redis client backing the gateway.
func NewRedis() *redis.Client {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	log.Printf("Redis client created (addr: %s)\n", redisAddr)
	return rdb
}

// Gateway is the channel pub/sub service. Handlers publish every mutation
// here; deliveries come back through Redis so multiple API instances fan
// out identically, then reach local websocket clients via the hub.
type Gateway struct {
	rdb *redis.Client
	hub *Hub
}

func NewGateway(rdb *redis.Client, hub *Hub) *Gateway {
	return &Gateway{rdb: rdb, hub: hub}
}

// Publish pushes one event to a named channel.
func (g *Gateway) Publish(ctx context.Context, channel, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("gateway: marshal %s payload: %v", event, err)
		return
	}
	env := Envelope{Channel: channel, Event: event, Data: data}
	raw, err := json.Marshal(env)
	if err != nil {
		log.Printf("gateway: marshal envelope: %v", err)
		return
	}
	if err := g.rdb.Publish(ctx, channelPrefix+channel, raw).Err(); err != nil {
		log.Printf("gateway: publish %s on %s: %v", event, channel, err)
	}
}

// Run bridges Redis deliveries into the local hub. Blocks; run it in a
// goroutine next to hub.Run.
func (g *Gateway) Run(ctx context.Context) {
	sub := g.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	for msg := range sub.Channel() {
		var env Envelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			log.Println("gateway: bad envelope:", err)
			continue
		}
		g.hub.Broadcast(env.Channel, []byte(msg.Payload))
	}
}

// Subscribe binds a handler to one channel for in-process consumers (the
// chatsync session). The returned func unbinds it; nothing fires after.
func (g *Gateway) Subscribe(channel string, h chatsync.Handler) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	sub := g.rdb.Subscribe(ctx, channelPrefix+channel)
	if _, err := sub.Receive(ctx); err != nil {
		cancel()
		return nil, err
	}

	go func() {
		for msg := range sub.Channel() {
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Println("gateway: bad envelope:", err)
				continue
			}
			h(env.Event, env.Data)
		}
	}()

	return func() {
		_ = sub.Close()
		cancel()
	}, nil
}

var _ chatsync.Gateway = (*Gateway)(nil)
