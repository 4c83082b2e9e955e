// Package triage runs the per-image sorting loop: move, delete, skip, crop
// and their undo operations over an ordered queue of source images.
package triage

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"photosort/internal/backup"
	"photosort/internal/codec"
	"photosort/internal/fileops"
)

// Options configures a Session.
type Options struct {
	Fs        afero.Fs
	SourceDir string
	DestRoot  string
	// SessionID names this session's bin folder. Empty means a random one.
	SessionID string
	Codec     codec.Codec
	Logger    *slog.Logger
}

// Session holds the queue, cursor, history and folder navigation of one
// sorting run. Commands are serialized; each one completes its filesystem
// work, history push and cursor update before the next one starts.
type Session struct {
	mu sync.Mutex

	fs      afero.Fs
	codec   codec.Codec
	backups *backup.Manager
	log     *slog.Logger

	sourceDir string
	destRoot  string
	sessionID string

	queue   []string
	cursor  int
	history History
	// crops counts crop writes, including ones later undone.
	crops int

	folder string
}

// NewSessionID returns a random 10-digit, zero-padded bin identifier.
func NewSessionID() string {
	return fmt.Sprintf("%010d", rand.Int64N(10_000_000_000))
}

// ValidSessionID reports whether id is a 10-digit bin identifier.
func ValidSessionID(id string) bool {
	if len(id) != 10 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// New scans the source folder and positions the cursor on the first
// readable image.
func New(opts Options) (*Session, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Codec == nil {
		opts.Codec = codec.Standard{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.SessionID == "" {
		opts.SessionID = NewSessionID()
	}
	if !ValidSessionID(opts.SessionID) {
		return nil, fmt.Errorf("session id %q: want 10 digits", opts.SessionID)
	}

	sourceDir, err := requireDir(opts.Fs, opts.SourceDir, "source")
	if err != nil {
		return nil, err
	}
	destRoot, err := requireDir(opts.Fs, opts.DestRoot, "destination")
	if err != nil {
		return nil, err
	}

	queue, err := ScanQueue(opts.Fs, sourceDir)
	if err != nil {
		return nil, failure(ErrIO, "scan", sourceDir, err)
	}

	s := &Session{
		fs:        opts.Fs,
		codec:     opts.Codec,
		backups:   backup.New(opts.Fs),
		log:       opts.Logger.With("session", opts.SessionID),
		sourceDir: sourceDir,
		destRoot:  destRoot,
		sessionID: opts.SessionID,
		queue:     queue,
		folder:    destRoot,
	}
	s.log.Info("session started", "source", sourceDir, "destination", destRoot, "images", len(queue))
	s.settle()
	return s, nil
}

func requireDir(fsys afero.Fs, dir, label string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%s folder not set", label)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%s folder: %w", label, err)
	}
	info, err := fsys.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%s folder: %w", label, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s folder: %s is not a directory", label, abs)
	}
	return abs, nil
}

func (s *Session) SourceDir() string { return s.sourceDir }
func (s *Session) DestRoot() string  { return s.destRoot }
func (s *Session) SessionID() string { return s.sessionID }

// BinDir is where Delete puts files during this session. The folder may not
// exist yet.
func (s *Session) BinDir() string {
	return filepath.Join(s.destRoot, fileops.BinDirName, fileops.BinPrefix+s.sessionID)
}

// Current returns the pending image, or false once triage is complete.
func (s *Session) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Session) current() (string, bool) {
	if s.cursor >= len(s.queue) {
		return "", false
	}
	return s.queue[s.cursor], true
}

// Cursor returns the queue position of the pending image.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) Total() int {
	return len(s.queue)
}

// Remaining counts the images at or after the cursor.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue) - s.cursor
}

// IsCurrentCropped reports whether the pending image has a crop sidecar.
func (s *Session) IsCurrentCropped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.current()
	return ok && s.backups.Has(path)
}

// History returns the processed records, oldest first.
func (s *Session) History() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Records()
}

// Summary tallies the session so far.
type Summary struct {
	Total     int
	Moved     int
	Deleted   int
	Skipped   int
	Cropped   int
	Remaining int
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Total: len(s.queue), Cropped: s.crops, Remaining: len(s.queue) - s.cursor}
	for _, r := range s.history.records {
		switch r.Kind {
		case ActionMove:
			sum.Moved++
		case ActionDelete:
			sum.Deleted++
		case ActionSkip:
			sum.Skipped++
		}
	}
	return sum
}

// settle moves the cursor forward past entries that vanished or cannot be
// decoded. Those entries get no history record.
func (s *Session) settle() {
	for s.cursor < len(s.queue) {
		path := s.queue[s.cursor]
		if err := s.checkReadable(path); err != nil {
			s.log.Warn("skipping image", "path", path, "index", s.cursor, "error", err)
			s.cursor++
			continue
		}
		return
	}
}

func (s *Session) checkReadable(path string) error {
	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return failure(ErrMissingSourceFile, "load", path, err)
		}
		return failure(ErrIO, "load", path, err)
	}
	defer f.Close()

	if _, err := s.codec.DecodeConfig(f); err != nil {
		return failure(ErrUnreadableImage, "load", path, err)
	}
	return nil
}
