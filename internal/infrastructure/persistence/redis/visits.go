package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultVisitTTL 访问计数随会话过期
const DefaultVisitTTL = 14 * 24 * time.Hour

// VisitStore 按会话统计首页访问次数
// Key：catalog:visits:{sid}，每次访问自增并续期
type VisitStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewVisitStore ttl<=0时使用DefaultVisitTTL
func NewVisitStore(client *redis.Client, ttl time.Duration) *VisitStore {
	if ttl <= 0 {
		ttl = DefaultVisitTTL
	}
	return &VisitStore{client: client, ttl: ttl}
}

func visitKey(sid string) string {
	return keyPrefix + "visits:" + sid
}

// Incr 自增并返回本次之后的次数
func (s *VisitStore) Incr(ctx context.Context, sid string) (int64, error) {
	key := visitKey(sid)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return 0, redisError(err, "更新访问计数失败")
	}
	return incr.Val(), nil
}

// Get 当前次数，没有记录返回0
func (s *VisitStore) Get(ctx context.Context, sid string) (int64, error) {
	n, err := s.client.Get(ctx, visitKey(sid)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, redisError(err, "读取访问计数失败")
	}
	return n, nil
}
