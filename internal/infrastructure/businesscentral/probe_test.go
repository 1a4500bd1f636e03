package businesscentral

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erp/orderverify/internal/domain/integration"
)

func TestNextState(t *testing.T) {
	miss := fmt.Errorf("%w: Production", integration.ErrEnvironmentMiss)
	unauthorized := fmt.Errorf("%w: 401", integration.ErrRemoteAuthorization)
	queryErr := &integration.RemoteQueryError{StatusCode: 500}

	tests := []struct {
		name string
		res  attemptResult
		pc   probeContext
		want probeState
	}{
		{"hit", attemptResult{}, probeContext{HasNext: true, Answered: true}, stateFound},
		{"hit on last", attemptResult{}, probeContext{Answered: true}, stateFound},
		{"empty stops by default", attemptResult{Empty: true}, probeContext{HasNext: true, Answered: true}, stateNotFound},
		{"empty continues when allowed", attemptResult{Empty: true}, probeContext{ContinueOnEmpty: true, HasNext: true, Answered: true}, stateAttempt},
		{"empty on last", attemptResult{Empty: true}, probeContext{ContinueOnEmpty: true, Answered: true}, stateNotFound},
		{"miss moves on", attemptResult{Err: miss}, probeContext{HasNext: true}, stateAttempt},
		{"miss on last after an answer", attemptResult{Err: miss}, probeContext{Answered: true}, stateNotFound},
		{"every candidate missed", attemptResult{Err: miss}, probeContext{}, stateEnvironmentsExhausted},
		{"unauthorized aborts", attemptResult{Err: unauthorized}, probeContext{HasNext: true}, stateFailed},
		{"query error aborts", attemptResult{Err: queryErr}, probeContext{HasNext: true, ContinueOnEmpty: true}, stateFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextState(tt.res, tt.pc))
		})
	}
}

func TestProbeState(t *testing.T) {
	assert.False(t, stateInit.terminal())
	assert.False(t, stateAttempt.terminal())
	for _, s := range []probeState{stateFound, stateNotFound, stateEnvironmentsExhausted, stateFailed} {
		assert.True(t, s.terminal(), s.String())
	}
	assert.Equal(t, "environments_exhausted", stateEnvironmentsExhausted.String())
	assert.Equal(t, "unknown", probeState(99).String())
}

func TestFilterUsable(t *testing.T) {
	items := []int{1, 2, 3, 4}
	assert.Equal(t, []int{1, 2, 3, 4}, filterUsable(items, nil))
	assert.Equal(t, []int{2, 4}, filterUsable([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 }))
	assert.Empty(t, filterUsable([]int{1}, func(int) bool { return false }))
}
