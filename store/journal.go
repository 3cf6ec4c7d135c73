package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Journal is an append-only list of finished pairing keys, one per line.
// A league run with -resume reads it to skip pairings already on disk.
//
// A crash mid-write can leave a partial last line; it simply never matches
// a key and that pairing is played again.
type Journal struct {
	mu       sync.RWMutex
	path     string
	file     *os.File
	finished map[string]struct{}
}

// PairingKey identifies one tournament of a league.
func PairingKey(a, b string, seed int64, rounds int) string {
	return fmt.Sprintf("%s|%s|%d|%d", a, b, seed, rounds)
}

func OpenJournal(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}

	finished := make(map[string]struct{})
	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			key := strings.TrimSpace(scanner.Text())
			if key == "" {
				continue
			}
			finished[key] = struct{}{}
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	return &Journal{path: path, file: file, finished: finished}, nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}

func (j *Journal) Has(key string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, ok := j.finished[key]
	return ok
}

func (j *Journal) Count() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.finished)
}

// Add appends key and fsyncs. Keys already present are ignored.
func (j *Journal) Add(key string) error {
	if key == "" {
		return fmt.Errorf("journal key is empty")
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.finished[key]; ok {
		return nil
	}
	if j.file == nil {
		return fmt.Errorf("journal is closed")
	}
	if _, err := j.file.WriteString(key + "\n"); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	j.finished[key] = struct{}{}
	return nil
}
