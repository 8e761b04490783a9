package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/esemi/travian-manager/internal/models"
)

// CycleStore manages JSONL-based cycle summaries
type CycleStore struct {
	path string
	mu   sync.RWMutex
}

// NewCycleStore creates a cycle store in the given directory
func NewCycleStore(dir string) (*CycleStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &CycleStore{
		path: filepath.Join(dir, "cycles.jsonl"),
	}, nil
}

// Path returns the JSONL file backing the store
func (s *CycleStore) Path() string {
	return s.path
}

// Create assigns an ID to the cycle and appends it
func (s *CycleStore) Create(cycle *models.Cycle) (*models.Cycle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cycle.ID = uuid.NewString()
	if cycle.StartedAt.IsZero() {
		cycle.StartedAt = time.Now()
	}

	return cycle, s.appendCycle(cycle)
}

// Update replaces a stored cycle with the same ID
func (s *CycleStore) Update(cycle *models.Cycle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cycles, err := s.readAll()
	if err != nil {
		return err
	}

	for i, c := range cycles {
		if c.ID == cycle.ID {
			cycles[i] = cycle
			return s.writeAll(cycles)
		}
	}
	return fmt.Errorf("cycle not found: %s", cycle.ID)
}

// Recent returns up to limit most recent cycles, newest first.
// A non-positive limit returns all of them.
func (s *CycleStore) Recent(limit int) ([]*models.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cycles, err := s.readAll()
	if err != nil {
		return nil, err
	}

	var recent []*models.Cycle
	for i := len(cycles) - 1; i >= 0; i-- {
		if limit > 0 && len(recent) == limit {
			break
		}
		recent = append(recent, cycles[i])
	}
	return recent, nil
}

// Last returns the newest cycle, or nil if none was stored
func (s *CycleStore) Last() (*models.Cycle, error) {
	recent, err := s.Recent(1)
	if err != nil || len(recent) == 0 {
		return nil, err
	}
	return recent[0], nil
}

// Prune keeps only the newest keep cycles
func (s *CycleStore) Prune(keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cycles, err := s.readAll()
	if err != nil {
		return err
	}
	if keep < 0 || len(cycles) <= keep {
		return nil
	}
	return s.writeAll(cycles[len(cycles)-keep:])
}

func (s *CycleStore) appendCycle(cycle *models.Cycle) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(cycle)
	if err != nil {
		return err
	}

	_, err = f.Write(append(data, '\n'))
	return err
}

func (s *CycleStore) readAll() ([]*models.Cycle, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cycles []*models.Cycle
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var cycle models.Cycle
		if err := json.Unmarshal(scanner.Bytes(), &cycle); err != nil {
			continue // Skip malformed lines
		}
		cycles = append(cycles, &cycle)
	}

	return cycles, scanner.Err()
}

func (s *CycleStore) writeAll(cycles []*models.Cycle) error {
	tmpFile := s.path + ".tmp"
	f, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	for _, cycle := range cycles {
		data, err := json.Marshal(cycle)
		if err != nil {
			f.Close()
			os.Remove(tmpFile)
			return err
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			f.Close()
			os.Remove(tmpFile)
			return err
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, s.path)
}
