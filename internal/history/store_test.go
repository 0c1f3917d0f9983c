package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/go2048/internal/config"
	"github.com/mitchelldurbincs/go2048/internal/game/core"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(StoreConfig{
		Type:    StoreTypeFile,
		BaseDir: t.TempDir(),
		PlayerDirs: map[string]string{
			"bot_v1": "bot/v1/",
			"admin":  "",
		},
	}, zerolog.New(zerolog.NewTestWriter(t)))
	require.NoError(t, err)
	return fs
}

func sampleRecord(player string) *GameRecord {
	seed := int64(7)
	rec := NewRecord("", player, core.Board{{2}}, &seed)
	rec.Append(core.Board{{2, 0, 0, 2}})
	rec.Append(core.Board{{4, 0, 0, 0}, {0, 4}})
	rec.Finish("stuck")
	return rec
}

func TestGameRecord(t *testing.T) {
	rec := sampleRecord("test")

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, 2, rec.Count)
	assert.Len(t, rec.Game, rec.Count)
	assert.Equal(t, uint64(8), rec.Score)
	assert.Equal(t, uint32(4), rec.MaxTile)
	assert.Equal(t, core.Board{{4, 0, 0, 0}, {0, 4}}, rec.Final())
	assert.False(t, rec.EndedAt.Before(rec.StartedAt))
	assert.NoError(t, rec.Validate())

	assert.Equal(t, map[string]uint64{"count": 2, "score": 8, "max_tile": 4}, Metrics(rec))
}

func TestGameRecord_Validate(t *testing.T) {
	rec := sampleRecord("test")
	rec.Count = 5
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)

	rec = sampleRecord("")
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)

	rec = sampleRecord("test")
	rec.Game[0][1][1] = 3
	assert.ErrorIs(t, rec.Validate(), ErrInvalidRecord)

	rec = sampleRecord("test")
	rec.MaxTile = 2048
	err := rec.Validate()
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.ErrorContains(t, err, "final board")

	unplayed := NewRecord("", "test", core.Board{{2, 2}}, nil)
	unplayed.Finish("stuck")
	assert.NoError(t, unplayed.Validate(), "a record with no moves is checked against its initial board")
}

func TestFileStore_SaveAndLoad(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("bot_v1")
	require.NoError(t, fs.Save(ctx, rec))

	path := filepath.Join(fs.config.BaseDir, "bot", "v1", "game_"+rec.ID+".json")
	_, err := os.Stat(path)
	require.NoError(t, err, "record lives in the player's directory")

	loaded, err := fs.Load(ctx, "bot_v1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, loaded.ID)
	assert.Equal(t, rec.Game, loaded.Game)
	assert.Equal(t, rec.Initial, loaded.Initial)
	assert.Equal(t, "stuck", loaded.Outcome)
	require.NotNil(t, loaded.Seed)
	assert.Equal(t, int64(7), *loaded.Seed)

	stats := fs.Stats()
	assert.Equal(t, int64(1), stats.TotalSaved)
	assert.Equal(t, int64(1), stats.TotalLoaded)
	assert.Greater(t, stats.BytesWritten, int64(0))
}

func TestFileStore_JSONShape(t *testing.T) {
	fs := newTestStore(t)
	rec := NewRecord("", "admin", core.Board{{2}}, nil)
	rec.Append(core.Board{{0, 0, 0, 2}})
	rec.Finish("quit")
	require.NoError(t, fs.Save(context.Background(), rec))

	data, err := os.ReadFile(filepath.Join(fs.config.BaseDir, "game_"+rec.ID+".json"))
	require.NoError(t, err)

	s := string(data)
	for _, key := range []string{`"count":1`, `"score":2`, `"max_tile":2`, `"game":[[[0,0,0,2]`, `"initial":`} {
		assert.Contains(t, s, key)
	}
	assert.NotContains(t, s, `"seed"`, "seed is omitted when absent")
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	fs := newTestStore(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, fs.Save(context.Background(), sampleRecord("test")))
	}

	entries, err := os.ReadDir(fs.Dir("test"))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	for _, e := range entries {
		assert.Regexp(t, `^game_[0-9a-f-]+\.json$`, e.Name())
	}
}

func TestFileStore_SaveRejectsInvalid(t *testing.T) {
	fs := newTestStore(t)
	rec := sampleRecord("test")
	rec.Count = 0

	err := fs.Save(context.Background(), rec)
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.Equal(t, int64(0), fs.Stats().TotalSaved)
}

func TestFileStore_List(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()

	first := sampleRecord("test")
	second := sampleRecord("test")
	second.EndedAt = first.EndedAt.Add(time.Minute)
	require.NoError(t, fs.Save(ctx, second))
	require.NoError(t, fs.Save(ctx, first))
	require.NoError(t, fs.Save(ctx, sampleRecord("bot_v1")))

	// A corrupt file is skipped
	require.NoError(t, os.WriteFile(filepath.Join(fs.Dir("test"), "game_broken.json"), []byte("{"), 0644))

	records, err := fs.List(ctx, "test")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, second.ID, records[1].ID)
	assert.Equal(t, int64(1), fs.Stats().ReadErrors)

	empty, err := fs.List(ctx, "human")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFileStore_Delete(t *testing.T) {
	fs := newTestStore(t)
	ctx := context.Background()
	rec := sampleRecord("test")
	require.NoError(t, fs.Save(ctx, rec))

	require.NoError(t, fs.Delete(ctx, "test", rec.ID))
	_, err := fs.Load(ctx, "test", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fs.Delete(ctx, "test", rec.ID), ErrNotFound)
}

func TestFileStore_CancelledContext(t *testing.T) {
	fs := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fs.Save(ctx, sampleRecord("test")), context.Canceled)
}

func TestNewStore(t *testing.T) {
	logger := zerolog.Nop()

	s, err := NewStore(StoreConfig{Type: StoreTypeNone}, logger)
	require.NoError(t, err)
	assert.IsType(t, NullStore{}, s)
	assert.NoError(t, s.Save(context.Background(), sampleRecord("test")))
	_, err = s.Load(context.Background(), "test", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	s, err = NewStore(StoreConfig{Type: StoreTypeFile, BaseDir: t.TempDir()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = NewStore(StoreConfig{Type: "s3"}, logger)
	assert.ErrorIs(t, err, ErrInvalidStoreType)
}

func TestConfigFromSettings(t *testing.T) {
	c := &config.Config{
		History: config.HistoryConfig{Type: "file", BaseDir: "/data"},
		Players: map[string]config.PlayerConfig{
			"human":  {HistoryDir: "human"},
			"bot_v1": {HistoryDir: "bot/v1"},
		},
	}

	sc := ConfigFromSettings(c)
	assert.Equal(t, StoreTypeFile, sc.Type)
	assert.Equal(t, "/data", sc.BaseDir)
	assert.Equal(t, map[string]string{"human": "human", "bot_v1": "bot/v1"}, sc.PlayerDirs)
}
