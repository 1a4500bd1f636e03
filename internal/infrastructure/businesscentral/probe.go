package businesscentral

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/erp/orderverify/internal/domain/integration"
)

// probeState is a state of the per-call environment probe.
//
//	Init -> Attempt[0] -> Found
//	                   -> Attempt[i+1]          (environment miss, or empty page when allowed)
//	                   -> NotFound              (empty page, or misses after some environment answered)
//	                   -> EnvironmentsExhausted (every candidate was a miss)
//	                   -> Failed                (authorization or query failure)
type probeState int

const (
	stateInit probeState = iota
	stateAttempt
	stateFound
	stateNotFound
	stateEnvironmentsExhausted
	stateFailed
)

// String returns the state name
func (s probeState) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateAttempt:
		return "attempt"
	case stateFound:
		return "found"
	case stateNotFound:
		return "not_found"
	case stateEnvironmentsExhausted:
		return "environments_exhausted"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// terminal reports whether the probe stops in this state
func (s probeState) terminal() bool {
	return s != stateInit && s != stateAttempt
}

// attemptResult is what one environment attempt produced
type attemptResult struct {
	Err   error
	Empty bool
}

// probeContext is what the decision needs to know besides the attempt itself
type probeContext struct {
	// ContinueOnEmpty moves on to the next environment when a page has no usable record
	ContinueOnEmpty bool
	// HasNext is true when another candidate remains
	HasNext bool
	// Answered is true when some environment, this one included, answered successfully
	Answered bool
}

// nextState decides the transition after one attempt
func nextState(res attemptResult, pc probeContext) probeState {
	if res.Err != nil {
		if !errors.Is(res.Err, integration.ErrEnvironmentMiss) {
			return stateFailed
		}
		switch {
		case pc.HasNext:
			return stateAttempt
		case pc.Answered:
			return stateNotFound
		default:
			return stateEnvironmentsExhausted
		}
	}
	if !res.Empty {
		return stateFound
	}
	if pc.ContinueOnEmpty && pc.HasNext {
		return stateAttempt
	}
	return stateNotFound
}

// probeResult is the terminal outcome of a probe
type probeResult[T any] struct {
	State       probeState
	Items       []T
	Environment string
	Err         error
}

// probeSpec describes one probe
type probeSpec[T any] struct {
	Resource        Resource
	Query           odataQuery
	ContinueOnEmpty bool
	// Usable drops records that do not count as a hit; nil keeps all
	Usable func(T) bool
}

// runProbe tries each candidate environment until the state machine stops
func runProbe[T any](ctx context.Context, f *fetcher, token string, candidates []string, ps probeSpec[T]) probeResult[T] {
	answered := false

	for i, env := range candidates {
		items, err := fetchCollection[T](ctx, f, token, env, ps.Resource, ps.Query)
		if err == nil {
			answered = true
			items = filterUsable(items, ps.Usable)
		}

		state := nextState(
			attemptResult{Err: err, Empty: err == nil && len(items) == 0},
			probeContext{ContinueOnEmpty: ps.ContinueOnEmpty, HasNext: i < len(candidates)-1, Answered: answered},
		)

		switch state {
		case stateFound:
			return probeResult[T]{State: state, Items: items, Environment: env}
		case stateAttempt:
			if err != nil {
				f.logger.Warn("Environment does not exist, trying next candidate",
					zap.String("resource", ps.Resource.String()),
					zap.String("environment", env),
				)
			}
			continue
		case stateFailed:
			return probeResult[T]{State: state, Environment: env, Err: err}
		case stateEnvironmentsExhausted:
			return probeResult[T]{State: state, Err: exhaustedError(ps.Resource, candidates)}
		default:
			return probeResult[T]{State: state, Environment: env}
		}
	}

	// no candidates at all
	return probeResult[T]{State: stateEnvironmentsExhausted, Err: exhaustedError(ps.Resource, candidates)}
}

func filterUsable[T any](items []T, usable func(T) bool) []T {
	if usable == nil {
		return items
	}
	kept := items[:0]
	for _, item := range items {
		if usable(item) {
			kept = append(kept, item)
		}
	}
	return kept
}

func exhaustedError(resource Resource, candidates []string) error {
	return fmt.Errorf("%w: %s (tried %s)", integration.ErrEnvironmentResolution, resource, strings.Join(candidates, ", "))
}
