// Package activitystore persists per-name activity events as one JSON file
// per name per day, under a per-name directory.
package activitystore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"ens_manager/internal/app/port"
	"ens_manager/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const dayFilePrefix = "activity_"

// Store implements port.ActivityTracker. Events are kept in memory for the
// process lifetime and appended to the name's current day file with a
// read-merge-append-write cycle.
type Store struct {
	exportDir string
	logger    port.Logger

	mu      sync.Mutex
	current map[string][]entity.ActivityEvent
}

// NewStore creates the export directory if needed.
func NewStore(exportDir string, l port.Logger) (*Store, error) {
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create activity export dir %s: %w", exportDir, err)
	}
	return &Store{
		exportDir: exportDir,
		logger:    l,
		current:   make(map[string][]entity.ActivityEvent),
	}, nil
}

// nameDir maps a name to its directory, replacing dots so the directory
// name stays filesystem-safe.
func (s *Store) nameDir(name string) string {
	return filepath.Join(s.exportDir, strings.ReplaceAll(name, ".", "_"))
}

func dayFileName(t time.Time) string {
	return dayFilePrefix + t.Format("2006-01-02") + ".json"
}

// AddActivity appends one event with a UTC timestamp and persists it to the
// name's current day file.
func (s *Store) AddActivity(name, eventType string, data map[string]string) error {
	event := entity.ActivityEvent{
		Timestamp: time.Now().UTC(),
		Type:      eventType,
		Data:      data,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current[name] = append(s.current[name], event)

	dir := s.nameDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create activity dir for %s: %w", name, err)
	}

	path := filepath.Join(dir, dayFileName(event.Timestamp))

	// Read-merge-append-write: the day file is rewritten whole each time.
	var events []entity.ActivityEvent
	if raw, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(raw, &events); err != nil {
			s.logger.Warn("Existing day file is unreadable, starting fresh", "file", path, "error", err)
			events = nil
		}
	}
	events = append(events, event)

	out, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode activity for %s: %w", name, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write activity file %s: %w", path, err)
	}
	return nil
}

// Activities reads every day file for the name in filename (date) order and
// filters by the inclusive timestamp range. A corrupt or unreadable day
// file is skipped with a warning rather than aborting the whole query.
func (s *Store) Activities(name string, start, end *time.Time) ([]entity.ActivityEvent, error) {
	dir := s.nameDir(name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []entity.ActivityEvent{}, nil
		}
		return nil, fmt.Errorf("failed to read activity dir for %s: %w", name, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), dayFilePrefix) && strings.HasSuffix(e.Name(), ".json") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var result []entity.ActivityEvent
	for _, f := range files {
		path := filepath.Join(dir, f)
		raw, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable activity file", "file", path, "error", err)
			continue
		}
		var events []entity.ActivityEvent
		if err := json.Unmarshal(raw, &events); err != nil {
			s.logger.Warn("Skipping corrupt activity file", "file", path, "error", err)
			continue
		}
		for _, ev := range events {
			if start != nil && ev.Timestamp.Before(*start) {
				continue
			}
			if end != nil && ev.Timestamp.After(*end) {
				continue
			}
			result = append(result, ev)
		}
	}
	return result, nil
}
