package health

import (
	"context"
	"testing"
)

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("ok", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusUp}
	})

	if got := c.Run(context.Background()).Status; got != StatusUp {
		t.Errorf("status = %q, want up", got)
	}

	c.Register("slow", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDegraded, Message: "lagging"}
	})
	if got := c.Run(context.Background()).Status; got != StatusDegraded {
		t.Errorf("status = %q, want degraded", got)
	}

	c.Register("dead", func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: StatusDown}
	})
	if got := c.Run(context.Background()).Status; got != StatusDown {
		t.Errorf("status = %q, want down", got)
	}
}
