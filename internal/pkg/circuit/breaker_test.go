package circuit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestBreakerOpensAndRecovers(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("redis", 2, time.Minute, WithClock(clk.now))
	boom := errors.New("boom")

	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)

	clk.t = clk.t.Add(2 * time.Minute)
	assert.NoError(t, b.Do(func() error { called = true; return nil }))
	assert.True(t, called)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("redis", 1, time.Second, WithClock(clk.now))
	boom := errors.New("boom")

	_ = b.Do(func() error { return boom })
	clk.t = clk.t.Add(2 * time.Second)
	assert.ErrorIs(t, b.Do(func() error { return boom }), boom)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(func() error { return nil }), ErrOpen)
}

func TestBreakerDisabled(t *testing.T) {
	b := New("off", 0, time.Minute)
	for i := 0; i < 5; i++ {
		_ = b.Do(func() error { return errors.New("x") })
	}
	assert.True(t, b.Allow())

	var nilBreaker *Breaker
	assert.True(t, nilBreaker.Allow())
}
