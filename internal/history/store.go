package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StoreType represents the type of history backend
type StoreType string

const (
	// StoreTypeNone disables history
	StoreTypeNone StoreType = "none"
	// StoreTypeFile writes one JSON file per game
	StoreTypeFile StoreType = "file"
)

// StoreConfig contains configuration for the history store
type StoreConfig struct {
	Type    StoreType
	BaseDir string
	// PlayerDirs maps a player type to its directory below BaseDir. Players
	// without an entry are stored under their own name.
	PlayerDirs map[string]string
}

// Store defines the interface for persisting finished games
type Store interface {
	// Save writes a finished record
	Save(ctx context.Context, rec *GameRecord) error

	// Load reads one record of a player
	Load(ctx context.Context, player, id string) (*GameRecord, error)

	// List returns every record of a player, oldest first
	List(ctx context.Context, player string) ([]*GameRecord, error)

	// Delete removes a record
	Delete(ctx context.Context, player, id string) error

	// Stats returns store statistics
	Stats() StoreStats
}

// StoreStats contains statistics about store operations
type StoreStats struct {
	TotalSaved    int64
	TotalLoaded   int64
	TotalDeleted  int64
	BytesWritten  int64
	WriteErrors   int64
	ReadErrors    int64
	LastWriteTime time.Time
}

const (
	filePrefix = "game_"
	fileSuffix = ".json"
)

// FileStore implements Store with one file per game
type FileStore struct {
	config StoreConfig
	logger zerolog.Logger

	mu    sync.RWMutex
	stats StoreStats
}

// NewFileStore creates a file store rooted at config.BaseDir
func NewFileStore(config StoreConfig, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		config: config,
		logger: logger.With().Str("component", "history_store").Logger(),
	}, nil
}

// Dir returns the directory records of a player are written to
func (fs *FileStore) Dir(player string) string {
	sub, ok := fs.config.PlayerDirs[player]
	if !ok {
		sub = player
	}
	return filepath.Join(fs.config.BaseDir, filepath.FromSlash(strings.Trim(sub, "/")))
}

func (fs *FileStore) path(player, id string) string {
	return filepath.Join(fs.Dir(player), filePrefix+id+fileSuffix)
}

// Save writes rec to a temp file and renames it into place, so a reader never
// sees a partial record
func (fs *FileStore) Save(ctx context.Context, rec *GameRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := fs.Dir(rec.Player)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fs.stats.WriteErrors++
		return fmt.Errorf("failed to create player directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp_"+filePrefix+"*")
	if err != nil {
		fs.stats.WriteErrors++
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		fs.stats.WriteErrors++
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		fs.logger.Warn().Err(err).Msg("Failed to sync record")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		fs.stats.WriteErrors++
		return fmt.Errorf("failed to close record: %w", err)
	}
	if err := os.Rename(tmpName, fs.path(rec.Player, rec.ID)); err != nil {
		os.Remove(tmpName)
		fs.stats.WriteErrors++
		return fmt.Errorf("failed to move record into place: %w", err)
	}

	fs.stats.TotalSaved++
	fs.stats.BytesWritten += int64(len(data))
	fs.stats.LastWriteTime = time.Now()

	fs.logger.Debug().
		Str("game_id", rec.ID).
		Str("player", rec.Player).
		Int("count", rec.Count).
		Msg("Saved game record")

	return nil
}

// Load reads one record
func (fs *FileStore) Load(ctx context.Context, player, id string) (*GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	rec, err := fs.readFile(fs.path(player, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, player, id)
		}
		fs.stats.ReadErrors++
		return nil, err
	}
	fs.stats.TotalLoaded++
	return rec, nil
}

func (fs *FileStore) readFile(filename string) (*GameRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var rec GameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(filename), err)
	}
	return &rec, nil
}

// List returns all records of a player ordered by end time. Unreadable files
// are logged and skipped.
func (fs *FileStore) List(ctx context.Context, player string) ([]*GameRecord, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	files, err := filepath.Glob(filepath.Join(fs.Dir(player), filePrefix+"*"+fileSuffix))
	if err != nil {
		fs.stats.ReadErrors++
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	records := make([]*GameRecord, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := fs.readFile(file)
		if err != nil {
			fs.stats.ReadErrors++
			fs.logger.Warn().
				Err(err).
				Str("file", file).
				Msg("Failed to read game record")
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EndedAt.Before(records[j].EndedAt)
	})

	fs.stats.TotalLoaded += int64(len(records))
	return records, nil
}

// Delete removes a record
func (fs *FileStore) Delete(ctx context.Context, player, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.path(player, id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, player, id)
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}
	fs.stats.TotalDeleted++
	return nil
}

// Stats returns store statistics
func (fs *FileStore) Stats() StoreStats {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.stats
}

// NullStore is a no-op store
type NullStore struct{}

func (NullStore) Save(ctx context.Context, rec *GameRecord) error { return nil }

func (NullStore) Load(ctx context.Context, player, id string) (*GameRecord, error) {
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, player, id)
}

func (NullStore) List(ctx context.Context, player string) ([]*GameRecord, error) {
	return nil, nil
}

func (NullStore) Delete(ctx context.Context, player, id string) error { return nil }

func (NullStore) Stats() StoreStats { return StoreStats{} }

// NewStore creates a store based on configuration
func NewStore(config StoreConfig, logger zerolog.Logger) (Store, error) {
	switch config.Type {
	case StoreTypeNone:
		return NullStore{}, nil
	case StoreTypeFile:
		return NewFileStore(config, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, config.Type)
	}
}
