package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/library-catalog/pkg/circuitbreaker"
)

type flakyPublisher struct {
	err    error
	calls  int
	closed bool
}

func (f *flakyPublisher) Publish(context.Context, string, interface{}) error {
	f.calls++
	return f.err
}

func (f *flakyPublisher) Close() error {
	f.closed = true
	return nil
}

func TestBreakerPublisher(t *testing.T) {
	next := &flakyPublisher{err: errors.New("connection refused")}
	var transitions []circuitbreaker.State
	p := NewBreakerPublisher(next, circuitbreaker.Config{
		Timeout:     time.Minute,
		ReadyToTrip: circuitbreaker.ConsecutiveFailures(2),
		OnStateChange: func(_ string, _, to circuitbreaker.State) {
			transitions = append(transitions, to)
		},
	})
	ctx := context.Background()

	assert.Error(t, p.Publish(ctx, "loan.available", struct{}{}))
	assert.Error(t, p.Publish(ctx, "loan.available", struct{}{}))
	assert.Equal(t, circuitbreaker.StateOpen, p.State())

	// 熔断后不再调用底层发布者
	err := p.Publish(ctx, "loan.available", struct{}{})
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, []circuitbreaker.State{circuitbreaker.StateOpen}, transitions)

	assert.NoError(t, p.Close())
	assert.True(t, next.closed)
}

func TestBreakerPublisher_PassesThrough(t *testing.T) {
	next := &flakyPublisher{}
	p := NewBreakerPublisher(next, circuitbreaker.Config{Timeout: time.Minute})

	for i := 0; i < 10; i++ {
		assert.NoError(t, p.Publish(context.Background(), "loan.checked_out", struct{}{}))
	}
	assert.Equal(t, 10, next.calls)
	assert.Equal(t, circuitbreaker.StateClosed, p.State())
}
