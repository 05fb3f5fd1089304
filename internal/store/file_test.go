package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delta-drills/mcp-practice/internal/engine"
)

func testState(userID string) *engine.UserPracticeState {
	state := engine.NewUserPracticeState(userID)
	sub := state.Subtopic("Strings: Slicing")
	sub.QuestionsAnswered = 4
	sub.Baseline = 62.5
	sub.P = 0.71
	sub.LearningRateHat = 3.2
	sub.TargetDifficulty = 58
	sub.LastPracticedAt = time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	sub.CompletedQuestionIDs = []int{1, 2, 5, 7}
	state.Weights = map[string]float64{"Strings: Slicing": 0.6}
	return state
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	want := testState("alice")
	require.NoError(t, fs.Save(ctx, "alice", want))

	got, err := fs.Load(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestFileStoreMissingUser(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	got, err := fs.Load(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice.json"), nil, 0644))

	got, err := fs.Load(context.Background(), "alice")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestFileStoreSanitizesUserID(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Save(ctx, "../../etc/passwd", testState("sneaky")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "document must land inside the state directory")
	assert.NotContains(t, entries[0].Name(), "..")
}

func TestFileStoreSaveReplacesDocument(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := testState("bob")
	require.NoError(t, fs.Save(ctx, "bob", first))

	second := testState("bob")
	second.Subtopic("Strings: Slicing").Baseline = 80
	require.NoError(t, fs.Save(ctx, "bob", second))

	got, err := fs.Load(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.Subtopic("Strings: Slicing").Baseline)
}

func TestFileStoreMigratesPreVersionDocument(t *testing.T) {
	// A document written before schema versioning: no schema_version, no
	// subtopic_id inside the entries, no target_difficulty.
	legacy := `{
  "user_id": "carol",
  "subtopic_states": {
    "Loops: Basics": {
      "questions_answered": 0,
      "baseline": 0,
      "p": 0.5
    }
  }
}`
	dir := t.TempDir()
	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "carol.json"), []byte(legacy), 0644))

	got, err := fs.Load(context.Background(), "carol")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, engine.SchemaVersion, got.SchemaVersion)
	sub := got.Subtopics["Loops: Basics"]
	require.NotNil(t, sub)
	assert.Equal(t, "Loops: Basics", sub.SubtopicID)
	assert.Equal(t, 50.0, sub.TargetDifficulty)
}

func TestFileStoreSaveStampsSchemaVersion(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	state := testState("dana")
	state.SchemaVersion = 0
	require.NoError(t, fs.Save(ctx, "dana", state))

	got, err := fs.Load(ctx, "dana")
	require.NoError(t, err)
	assert.Equal(t, engine.SchemaVersion, got.SchemaVersion)
}
