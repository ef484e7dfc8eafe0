package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"unsend_service/internal/deletion/domain"
	"unsend_service/pkg/encrypt"
	"unsend_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// SwarmRepository 模擬 swarm 儲存節點: 依 pubkey + namespace 存放訊息, 以 hash 刪除
type SwarmRepository interface {
	Store(ctx context.Context, pubkey string, ns domain.Namespace, payload []byte) (string, error)
	// DeleteHashes 回傳實際刪掉的 hash, 找不到的 hash 不算錯誤
	DeleteHashes(ctx context.Context, pubkey string, hashes []string) ([]string, error)
	Retrieve(ctx context.Context, pubkey string, ns domain.Namespace) (map[string][]byte, error)
}

// OffsetRecorder 接收本機與 swarm 的時間差 (local - server, ms)
type OffsetRecorder interface {
	SetLatestTimestampOffset(offset int64, request string)
}

type redisSwarmRepository struct {
	client  *redis.Client
	ttl     time.Duration
	offsets OffsetRecorder
	now     func() time.Time
}

// NewRedisSwarmRepository create a SwarmRepository, ttl <= 0 keeps messages forever.
// Every store / delete also reads the server TIME and reports the offset to offsets (may be nil).
func NewRedisSwarmRepository(client *redis.Client, ttl time.Duration, offsets OffsetRecorder) SwarmRepository {
	return &redisSwarmRepository{client: client, ttl: ttl, offsets: offsets, now: time.Now}
}

// syncClock 讀取 swarm 的時間校正網路時間, 失敗不影響請求
func (r *redisSwarmRepository) syncClock(ctx context.Context, request string) {
	if r.offsets == nil {
		return
	}
	server, err := r.client.Time(ctx).Result()
	if err != nil {
		logger.Log.Debug("read swarm time failed", zap.String("request", request), zap.Error(err))
		return
	}
	r.observe(server, request)
}

func (r *redisSwarmRepository) observe(server time.Time, request string) {
	r.offsets.SetLatestTimestampOffset(r.now().UnixMilli()-server.UnixMilli(), request)
}

func swarmIndexKey(pubkey string) string {
	return "swarm:" + pubkey + ":index"
}

func swarmNamespacePrefix(pubkey string) string {
	return "swarm:" + pubkey + ":ns:"
}

func swarmNamespaceKey(pubkey string, ns domain.Namespace) string {
	return swarmNamespacePrefix(pubkey) + strconv.Itoa(int(ns))
}

// index 記錄 hash 屬於哪個 namespace, 刪除時不用掃所有 namespace
var deleteByHashScript = redis.NewScript(`
local deleted = {}
for _, h in ipairs(ARGV) do
  local ns = redis.call('HGET', KEYS[1], h)
  if ns then
    redis.call('HDEL', KEYS[1], h)
    redis.call('HDEL', KEYS[2] .. ns, h)
    table.insert(deleted, h)
  end
end
return deleted
`)

func (r *redisSwarmRepository) Store(ctx context.Context, pubkey string, ns domain.Namespace, payload []byte) (string, error) {
	r.syncClock(ctx, "store")

	hash := encrypt.MessageHash(payload)
	nsKey := swarmNamespaceKey(pubkey, ns)
	idxKey := swarmIndexKey(pubkey)

	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, nsKey, hash, payload)
		p.HSet(ctx, idxKey, hash, int(ns))
		if r.ttl > 0 {
			p.Expire(ctx, nsKey, r.ttl)
			p.Expire(ctx, idxKey, r.ttl)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("swarm store %s: %w", domain.Shorten(pubkey), err)
	}
	return hash, nil
}

func (r *redisSwarmRepository) DeleteHashes(ctx context.Context, pubkey string, hashes []string) ([]string, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	r.syncClock(ctx, "delete_hashes")

	args := make([]interface{}, 0, len(hashes))
	for _, h := range hashes {
		args = append(args, h)
	}
	res, err := deleteByHashScript.Run(ctx, r.client, []string{swarmIndexKey(pubkey), swarmNamespacePrefix(pubkey)}, args...).StringSlice()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("swarm delete %s: %w", domain.Shorten(pubkey), err)
	}
	return res, nil
}

func (r *redisSwarmRepository) Retrieve(ctx context.Context, pubkey string, ns domain.Namespace) (map[string][]byte, error) {
	raw, err := r.client.HGetAll(ctx, swarmNamespaceKey(pubkey, ns)).Result()
	if err != nil {
		return nil, fmt.Errorf("swarm retrieve %s: %w", domain.Shorten(pubkey), err)
	}
	out := make(map[string][]byte, len(raw))
	for h, v := range raw {
		out[h] = []byte(v)
	}
	return out, nil
}
