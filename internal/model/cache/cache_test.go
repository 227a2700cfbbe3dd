package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNew_Disabled(t *testing.T) {
	t.Parallel()
	c, err := New(context.Background(), &Config{})
	if !errors.Is(err, ErrDisabled) {
		t.Errorf("error, got: %v, expected: %v", err, ErrDisabled)
	}
	if c != nil {
		t.Errorf("cache, got: %v, expected: nil", c)
	}
}

func TestNew_Unreachable(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// port 1 is reserved and never accepts redis connections
	_, err := New(ctx, &Config{Addr: "127.0.0.1:1", Timeout: 100 * time.Millisecond})
	if err == nil {
		t.Errorf("expected connection error")
	}
}

func TestCache_Key(t *testing.T) {
	t.Parallel()
	c := &Cache{prefix: "nbayes:model:"}
	if got := c.key("iris"); got != "nbayes:model:iris" {
		t.Errorf("key, got: %s, expected: nbayes:model:iris", got)
	}
}
