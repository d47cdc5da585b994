// Package backup records snapshots of the installed mod state before each
// mutating operation.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/magegihk/modinstaller/internal/state"
)

// idFormat names snapshot files; sub-second precision keeps IDs unique
// across quick successive operations.
const idFormat = "2006-01-02-150405.000000"

// Backup is a single state snapshot.
type Backup struct {
	ID        string      `json:"id" yaml:"id"`
	CreatedAt time.Time   `json:"created_at" yaml:"created_at"`
	Note      string      `json:"note,omitempty" yaml:"note,omitempty"`
	Version   string      `json:"version" yaml:"version"`
	State     BackupState `json:"state" yaml:"state"`
}

// BackupState is the portion of state.State a snapshot keeps.
type BackupState struct {
	Mods         []state.LocalMod `json:"mods" yaml:"mods"`
	APIInstalled bool             `json:"api_installed" yaml:"api_installed"`
}

// BackupInfo provides summary information about a backup for listing.
type BackupInfo struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	Mods      int       `json:"mods" yaml:"mods"`
	Size      int64     `json:"size" yaml:"size"`
}

// Manager handles snapshot files in one directory.
type Manager struct {
	backupDir string
	version   string
	now       func() time.Time
}

// NewManager creates a manager writing to dir.
func NewManager(dir, version string) *Manager {
	return &Manager{
		backupDir: dir,
		version:   version,
		now:       time.Now,
	}
}

// Create writes a snapshot of the given state.
func (m *Manager) Create(current *state.State, note string) (*Backup, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	now := m.now()
	for {
		if _, err := os.Stat(m.path(now.Format(idFormat))); os.IsNotExist(err) {
			break
		}
		now = now.Add(time.Microsecond)
	}

	backup := &Backup{
		ID:        now.Format(idFormat),
		CreatedAt: now,
		Note:      note,
		Version:   m.version,
		State: BackupState{
			Mods:         current.Records(),
			APIInstalled: current.APIInstalled,
		},
	}

	data, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	path := m.path(backup.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return backup, nil
}

// List returns all snapshots sorted by creation time (newest first).
// Unreadable files are ignored.
func (m *Manager) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		backup, err := m.load(filepath.Join(m.backupDir, entry.Name()))
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			ID:        backup.ID,
			CreatedAt: backup.CreatedAt,
			Note:      backup.Note,
			Mods:      len(backup.State.Mods),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})

	return backups, nil
}

// Get retrieves a snapshot by ID. Use "latest" for the most recent one.
func (m *Manager) Get(id string) (*Backup, error) {
	if id == "latest" {
		backups, err := m.List()
		if err != nil {
			return nil, err
		}
		if len(backups) == 0 {
			return nil, fmt.Errorf("no snapshots found")
		}
		id = backups[0].ID
	}

	return m.load(m.path(id))
}

// Delete removes a snapshot by ID.
func (m *Manager) Delete(id string) error {
	path := m.path(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("snapshot not found: %s", id)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (m *Manager) path(id string) string {
	return filepath.Join(m.backupDir, id+".json")
}

func (m *Manager) load(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("snapshot not found: %s", filepath.Base(path))
		}
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return &backup, nil
}

// ToState rebuilds a state.State from the snapshot.
func (b *Backup) ToState() *state.State {
	st := state.New()
	st.APIInstalled = b.State.APIInstalled
	for _, m := range b.State.Mods {
		st.Mods[m.Name] = m
	}
	return st
}

// BackupDir returns the snapshot directory path.
func (m *Manager) BackupDir() string {
	return m.backupDir
}
