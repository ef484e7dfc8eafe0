package repository

import (
	"context"
	"encoding/json"

	"unsend_service/internal/deletion/domain"
	"unsend_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub 推播給同帳號連線中的 websocket
type PubSub interface {
	Publish(ctx context.Context, channel string, resp domain.WSResponse) error
	Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error
}

// RedisPubSub definition redis pub/sub
type RedisPubSub struct {
	client *redis.Client
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{client: client}
}

// NotifyChannel 每個帳號一個 channel
func NotifyChannel(accountID string) string {
	return "deletion:notify:" + accountID
}

// Publish 將 response 序列化後發布到 channel
func (r *RedisPubSub) Publish(ctx context.Context, channel string, resp domain.WSResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, channel, data).Err()
}

// Subscribe 訂閱 channel, ctx 取消時關閉訂閱
func (r *RedisPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	sub := r.client.Subscribe(ctx, channel)
	// 確認訂閱成功才回傳
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return err
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}
				var resp domain.WSResponse
				if err := json.Unmarshal([]byte(m.Payload), &resp); err != nil {
					logger.Log.Error("pubsub unmarshal", zap.String("channel", channel), zap.Error(err))
					continue
				}
				handler(resp)
			case <-ctx.Done():
				logger.Log.Debug("pubsub closed", zap.String("channel", channel))
				return
			}
		}
	}()
	return nil
}
