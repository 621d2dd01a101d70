package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileWriter appends log lines to a file and rotates it once it grows past maxSize.
// Rotated files are named <file>.<timestamp>; only the newest maxBackups are kept.
type FileWriter struct {
	mu          sync.Mutex
	path        string
	maxSize     int64
	maxBackups  int
	currentFile *os.File
	currentSize int64
	now         func() time.Time
}

// NewFileWriter opens (or creates) path for appending.
func NewFileWriter(path string, maxSizeMB, maxBackups int) (*FileWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	fw := &FileWriter{
		path:       path,
		maxSize:    int64(maxSizeMB) * 1024 * 1024,
		maxBackups: maxBackups,
		now:        time.Now,
	}
	if err := fw.open(); err != nil {
		return nil, err
	}
	return fw, nil
}

func (fw *FileWriter) open() error {
	f, err := os.OpenFile(fw.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	fw.currentFile = f
	fw.currentSize = info.Size()
	return nil
}

func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.currentFile == nil {
		return 0, os.ErrClosed
	}
	if fw.currentSize > 0 && fw.currentSize+int64(len(p)) > fw.maxSize {
		if err := fw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := fw.currentFile.Write(p)
	fw.currentSize += int64(n)
	return n, err
}

func (fw *FileWriter) rotate() error {
	if err := fw.currentFile.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	rotated := fmt.Sprintf("%s.%s", fw.path, fw.now().Format("20060102-150405.000"))
	if err := os.Rename(fw.path, rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	fw.prune()
	return fw.open()
}

func (fw *FileWriter) prune() {
	matches, err := filepath.Glob(fw.path + ".*")
	if err != nil || len(matches) <= fw.maxBackups {
		return
	}
	// timestamps sort lexically
	sort.Strings(matches)
	for _, path := range matches[:len(matches)-fw.maxBackups] {
		os.Remove(path)
	}
}

// Close closes the underlying file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.currentFile == nil {
		return nil
	}
	err := fw.currentFile.Close()
	fw.currentFile = nil
	return err
}

// ReadRecent returns up to n of the newest entries in the log file at path.
// Malformed lines are skipped.
func ReadRecent(path string, n int) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
