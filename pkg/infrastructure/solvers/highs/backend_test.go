package highs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sverzijl/planning-latest-sub007/pkg/solver"
)

func TestTimeBudget(t *testing.T) {
	assert.Equal(t, 5*time.Second, timeBudget(context.Background(), 5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	budget := timeBudget(ctx, time.Minute)
	assert.LessOrEqual(t, budget, time.Second)
	assert.Greater(t, budget, time.Duration(0))
}

func TestSenseMapping(t *testing.T) {
	assert.Equal(t, sense(solver.LessEqual), sense(solver.LessEqual))
	assert.NotEqual(t, sense(solver.LessEqual), sense(solver.GreaterEqual))
	assert.NotEqual(t, sense(solver.Equal), sense(solver.GreaterEqual))
}

func TestColumnIdentifier(t *testing.T) {
	c := column{index: 42}
	assert.Equal(t, "42", c.ID())
}
