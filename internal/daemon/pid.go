package daemon

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// ErrNotRunning is returned when no live process owns the PID file
var ErrNotRunning = errors.New("bot is not running")

// PIDFile guards against two run loops sharing one data directory
type PIDFile struct {
	path string
}

// NewPIDFile creates a PID file handle at path
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Write writes the process ID to the file
func (p *PIDFile) Write(pid int) error {
	return os.WriteFile(p.path, []byte(strconv.Itoa(pid)), 0644)
}

// Read reads the process ID from the file
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// Remove removes the PID file
func (p *PIDFile) Remove() error {
	return os.Remove(p.path)
}

// Check reports whether a live process owns the file. A stale file is removed.
func (p *PIDFile) Check() (bool, int, error) {
	pid, err := p.Read()
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read PID file: %w", err)
	}

	if IsProcessRunning(pid) {
		return true, pid, nil
	}

	// Stale PID file, remove it
	p.Remove()
	return false, 0, nil
}

// Acquire writes the current PID, failing if another loop is alive
func (p *PIDFile) Acquire() error {
	running, pid, err := p.Check()
	if err != nil {
		return err
	}
	if running {
		return fmt.Errorf("bot already running (PID %d)", pid)
	}
	if err := p.Write(os.Getpid()); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Signal sends sig to the process owning the file
func (p *PIDFile) Signal(sig os.Signal) (int, error) {
	running, pid, err := p.Check()
	if err != nil {
		return 0, err
	}
	if !running {
		return 0, ErrNotRunning
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return pid, err
	}
	return pid, process.Signal(sig)
}

// IsProcessRunning checks if a process with the given PID is running
func IsProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, FindProcess always succeeds; we need to send signal 0
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
