package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"unsend_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CommunityClient community server moderation api
type CommunityClient interface {
	// DeleteMessageByServerID true 表示 server 接受刪除
	DeleteMessageByServerID(ctx context.Context, server, room string, serverID int64, requester string) (bool, error)
}

// limiterPool 每個 community server 一個 limiter
type limiterPool struct {
	mu    sync.Mutex
	m     map[string]*rate.Limiter
	rps   float64
	burst int
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m == nil {
		p.m = make(map[string]*rate.Limiter)
	}
	if l, ok := p.m[key]; ok {
		return l
	}
	rps := p.rps
	if rps <= 0 {
		rps = 5
	}
	burst := p.burst
	if burst <= 0 {
		burst = 10
	}
	l := rate.NewLimiter(rate.Limit(rps), burst)
	p.m[key] = l
	return l
}

type httpCommunityClient struct {
	timeout  time.Duration
	limiters *limiterPool
}

// NewHTTPCommunityClient create a CommunityClient
func NewHTTPCommunityClient(timeout time.Duration, ratePerSecond float64, burst int) CommunityClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &httpCommunityClient{
		timeout:  timeout,
		limiters: &limiterPool{rps: ratePerSecond, burst: burst},
	}
}

// CommunityMessageURL DELETE {server}/room/{room}/message/{id}
func CommunityMessageURL(server, room string, serverID int64) string {
	return strings.TrimRight(server, "/") + "/room/" + url.PathEscape(room) + "/message/" + strconv.FormatInt(serverID, 10)
}

func (c *httpCommunityClient) DeleteMessageByServerID(ctx context.Context, server, room string, serverID int64, requester string) (bool, error) {
	if err := c.limiters.get(server).Wait(ctx); err != nil {
		return false, err
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}

	target := CommunityMessageURL(server, room, serverID)
	agent := fiber.Delete(target).Timeout(timeout)
	agent.Set("X-SOGS-Pubkey", requester)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return false, fmt.Errorf("community delete %s: %w", target, errs[0])
	}

	switch {
	case code >= 200 && code < 300:
		return true, nil
	case code == fiber.StatusNotFound:
		// server 上已不存在, 視為未成功
		logger.Log.Warn("community message not found", zap.String("url", target))
		return false, nil
	default:
		logger.Log.Warn("community delete rejected",
			zap.String("url", target),
			zap.Int("status", code),
			zap.ByteString("body", body),
		)
		return false, nil
	}
}
