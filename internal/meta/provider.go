package meta

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

//go:embed default_snapshot.toml
var defaultSnapshotTOML []byte

// DefaultSnapshot returns the snapshot compiled into the binary. The embedded
// file is validated at init; a broken embed is a build defect.
func DefaultSnapshot() *Snapshot {
	s, err := parseSnapshot(defaultSnapshotTOML)
	if err != nil {
		panic(fmt.Sprintf("embedded meta snapshot invalid: %v", err))
	}
	return s
}

func parseSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing meta snapshot: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating meta snapshot: %w", err)
	}
	return &s, nil
}

// LoadSnapshot reads and validates a snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta snapshot %s: %w", path, err)
	}
	return parseSnapshot(data)
}

// Provider hands out the current metagame snapshot. It starts from the
// embedded default and can follow a snapshot file on disk, reloading when the
// file changes. A failed reload keeps the last good snapshot.
type Provider struct {
	logger *slog.Logger

	mu      sync.RWMutex
	current *Snapshot

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewProvider creates a provider serving the embedded default snapshot.
func NewProvider(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		logger:  logger,
		current: DefaultSnapshot(),
	}
}

// Current returns the active snapshot. Never nil.
func (p *Provider) Current() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// LoadFile replaces the active snapshot with the contents of path.
func (p *Provider) LoadFile(path string) error {
	s, err := LoadSnapshot(path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()
	p.logger.Info("meta snapshot loaded",
		"path", path, "version", s.Version, "archetypes", len(s.Archetypes))
	return nil
}

// Watch loads path and then follows it for changes, swapping in each valid
// update. Editors that replace files atomically emit create events, so the
// parent directory is watched rather than the file itself.
func (p *Provider) Watch(path string) error {
	if err := p.LoadFile(path); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating snapshot watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	p.watcher = w
	p.done = make(chan struct{})
	p.wg.Add(1)
	go p.watchLoop(path)
	return nil
}

func (p *Provider) watchLoop(path string) {
	defer p.wg.Done()
	target := filepath.Clean(path)

	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := p.LoadFile(path); err != nil {
				p.logger.Warn("meta snapshot reload failed, keeping previous",
					"path", path, "error", err)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("meta snapshot watcher error", "error", err)
		}
	}
}

// Close stops the watcher, if one was started.
func (p *Provider) Close() error {
	if p.watcher == nil {
		return nil
	}
	close(p.done)
	err := p.watcher.Close()
	p.wg.Wait()
	p.watcher = nil
	return err
}
