// Package store persists per-user practice state. Each user owns exactly
// one JSON document, replaced whole on every save (last-write-wins at
// document granularity — concurrent sessions for the same user are
// deliberately not coordinated).
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

// Store is a single backing store: a miss returns (nil, nil); errors mean
// the backend itself failed or was unreachable.
type Store interface {
	Load(ctx context.Context, userID string) (*engine.UserPracticeState, error)
	Save(ctx context.Context, userID string, state *engine.UserPracticeState) error
	Close() error
}

// Adapter layers a primary store over a secondary cache and absorbs backend
// failures. Load never surfaces an error — an unreachable primary falls
// back to the cache, and a miss everywhere returns nil so the caller
// initializes fresh state. Save reports success if the document landed in
// either store; the in-memory state stays authoritative either way.
type Adapter struct {
	primary Store
	cache   Store
	logger  *zap.Logger

	// Timeout bounds each backend call when set; zero means no bound.
	Timeout time.Duration
}

// bound applies the adapter's timeout to a backend call context.
func (a *Adapter) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.Timeout)
}

// NewAdapter builds the tiered adapter. Either store may be nil.
func NewAdapter(primary, cache Store, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{primary: primary, cache: cache, logger: logger}
}

// Load returns the user's persisted state, or nil when no store has a
// document for them (cold start) or no store could be reached.
func (a *Adapter) Load(ctx context.Context, userID string) *engine.UserPracticeState {
	ctx, cancel := a.bound(ctx)
	defer cancel()
	if a.primary != nil {
		state, err := a.primary.Load(ctx, userID)
		if err != nil {
			a.logger.Warn("primary store load failed, falling back to cache",
				zap.String("user_id", userID), zap.Error(err))
		} else if state != nil {
			return state
		}
	}
	if a.cache != nil {
		state, err := a.cache.Load(ctx, userID)
		if err != nil {
			a.logger.Warn("cache load failed",
				zap.String("user_id", userID), zap.Error(err))
			return nil
		}
		return state
	}
	return nil
}

// Save writes the document to both stores and reports whether at least one
// write landed. A failed save leaves the previously persisted document
// untouched in the failing store.
func (a *Adapter) Save(ctx context.Context, userID string, state *engine.UserPracticeState) bool {
	ctx, cancel := a.bound(ctx)
	defer cancel()
	saved := false
	if a.primary != nil {
		if err := a.primary.Save(ctx, userID, state); err != nil {
			a.logger.Warn("primary store save failed",
				zap.String("user_id", userID), zap.Error(err))
		} else {
			saved = true
		}
	}
	if a.cache != nil {
		if err := a.cache.Save(ctx, userID, state); err != nil {
			a.logger.Warn("cache save failed",
				zap.String("user_id", userID), zap.Error(err))
		} else {
			saved = true
		}
	}
	return saved
}

// Close closes both stores.
func (a *Adapter) Close() error {
	var firstErr error
	for _, s := range []Store{a.primary, a.cache} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// marshalState encodes a state document for persistence, stamping the
// current schema version.
func marshalState(state *engine.UserPracticeState) ([]byte, error) {
	state.SchemaVersion = engine.SchemaVersion
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal practice state: %w", err)
	}
	return data, nil
}

// unmarshalState decodes a persisted document, migrating older versions:
// missing maps are initialized and pre-versioning documents (version 0 or
// 1) get the current defaults for fields they predate.
func unmarshalState(data []byte) (*engine.UserPracticeState, error) {
	var state engine.UserPracticeState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal practice state: %w", err)
	}
	if state.Subtopics == nil {
		state.Subtopics = make(map[string]*engine.SubtopicState)
	}
	if state.SchemaVersion < engine.SchemaVersion {
		for id, st := range state.Subtopics {
			if st.SubtopicID == "" {
				st.SubtopicID = id
			}
			// Documents written before target tracking default to mid-scale.
			if st.TargetDifficulty == 0 && st.QuestionsAnswered == 0 {
				st.TargetDifficulty = 50
			}
		}
		state.SchemaVersion = engine.SchemaVersion
	}
	return &state, nil
}
