package mq

import (
	"context"
	"log/slog"

	"github.com/xiebiao/library-catalog/pkg/circuitbreaker"
)

// BreakerPublisher 熔断保护的发布者
// Broker连续失败后直接返回circuitbreaker.ErrOpenState，不再等待连接超时
type BreakerPublisher struct {
	next    EventPublisher
	breaker *circuitbreaker.CircuitBreaker
}

// NewBreakerPublisher 包装next，cfg.OnStateChange为空时状态切换写日志
func NewBreakerPublisher(next EventPublisher, cfg circuitbreaker.Config) *BreakerPublisher {
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
			slog.Warn("熔断器状态变化", "name", name, "from", from.String(), "to", to.String())
		}
	}
	return &BreakerPublisher{
		next:    next,
		breaker: circuitbreaker.New("mq.publisher", cfg),
	}
}

// Publish 熔断中直接失败
func (p *BreakerPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return p.breaker.Execute(func() error {
		return p.next.Publish(ctx, routingKey, message)
	})
}

// State 当前熔断状态
func (p *BreakerPublisher) State() circuitbreaker.State {
	return p.breaker.State()
}

// Close 关闭底层发布者
func (p *BreakerPublisher) Close() error {
	return p.next.Close()
}
