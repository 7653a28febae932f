package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisPublisher は複数インスタンスにイベントを配る（pub/sub）。
// 各インスタンスはRelayで受け取り、自分のHubに流す。
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

type wireEvent struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data,omitempty"`
	UserIDs []int64         `json:"user_ids,omitempty"`
}

// Relay はctxが終わるまでchannelを購読してhubに届ける。
func Relay(ctx context.Context, client *redis.Client, channel string, hub *Hub, logger *zap.Logger) error {
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	//購読が確立するまで待つ
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev wireEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("invalid relay payload", zap.Error(err))
				continue
			}
			out, err := json.Marshal(frame{Type: ev.Type, Data: ev.Data})
			if err != nil {
				continue
			}
			hub.deliver(out, ev.UserIDs)
		}
	}
}
