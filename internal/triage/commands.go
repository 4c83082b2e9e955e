package triage

import (
	"errors"
	"path/filepath"
	"strings"

	"photosort/internal/backup"
	"photosort/internal/fileops"
)

// Move relocates the pending image into dstDir and advances the cursor.
func (s *Session) Move(dstDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move(dstDir)
}

func (s *Session) move(dstDir string) error {
	return s.relocate("move", ActionMove, func() (string, error) { return dstDir, nil })
}

// Delete relocates the pending image into this session's bin folder and
// advances the cursor.
func (s *Session) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.relocate("delete", ActionDelete, func() (string, error) {
		return fileops.BinFolder(s.fs, s.destRoot, s.sessionID)
	})
}

// Skip records the pending image as skipped without touching the
// filesystem.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.pending("skip")
	if err != nil {
		return s.passVanished(err)
	}
	s.push(Record{FileRef: src, Kind: ActionSkip, Index: s.cursor, Source: src})
	s.log.Debug("skipped", "path", src)
	s.advance()
	return nil
}

func (s *Session) relocate(op string, kind Action, target func() (string, error)) error {
	src, err := s.pending(op)
	if err != nil {
		return s.passVanished(err)
	}

	var backupRef string
	if s.backups.Has(src) {
		backupRef = backup.Path(src)
	}

	dstDir, err := target()
	if err != nil {
		return failure(ErrIO, op, src, err)
	}
	dst, err := fileops.Relocate(s.fs, src, dstDir)
	if err != nil {
		return failure(ErrIO, op, src, err)
	}

	s.push(Record{FileRef: dst, Kind: kind, BackupRef: backupRef, Index: s.cursor, Source: src})
	s.log.Debug("relocated", "op", op, "from", src, "to", dst)
	s.advance()
	return nil
}

// pending returns the image under the cursor, failing when the queue is done
// or the file vanished.
func (s *Session) pending(op string) (string, error) {
	src, ok := s.current()
	if !ok {
		return "", failure(ErrQueueComplete, op, "", nil)
	}
	if !fileops.Exists(s.fs, src) {
		return "", failure(ErrMissingSourceFile, op, src, nil)
	}
	return src, nil
}

// passVanished steps past a pending image that disappeared from disk without
// recording anything. Other errors are returned unchanged.
func (s *Session) passVanished(err error) error {
	if !errors.Is(err, ErrMissingSourceFile) {
		return err
	}
	s.log.Warn("pending image vanished", "error", err, "index", s.cursor)
	s.settle()
	return nil
}

// push drops the crop sidecar still referenced by the current top record
// before stacking r. Only the image that is still pending keeps its crop
// undo, so at most one stale sidecar survives at a time. A consequence is
// that undoing an older move can no longer revert that image's crop.
func (s *Session) push(r Record) {
	if top, ok := s.history.Peek(); ok && top.BackupRef != "" && fileops.Exists(s.fs, top.BackupRef) {
		if err := s.fs.Remove(top.BackupRef); err != nil {
			s.log.Warn("could not remove stale backup", "path", top.BackupRef, "error", err)
		} else {
			s.log.Debug("removed stale backup", "path", top.BackupRef)
		}
	}
	s.history.Push(r)
}

func (s *Session) advance() {
	s.cursor++
	s.settle()
}

// Undo reverts the most recent Move, Delete or Skip. On failure the record
// stays on the history and the cursor is unchanged.
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.history.Pop()
	if !ok {
		return failure(ErrNothingToUndo, "undo", "", nil)
	}

	if rec.Kind == ActionSkip {
		s.rewind(rec)
		return nil
	}

	if !fileops.Exists(s.fs, rec.FileRef) {
		s.history.Push(rec)
		return failure(ErrMissingSourceFile, "undo", rec.FileRef, nil)
	}

	restored, err := fileops.Relocate(s.fs, rec.FileRef, s.sourceDir)
	if err != nil {
		s.history.Push(rec)
		return failure(ErrIO, "undo", rec.FileRef, err)
	}

	if rec.BackupRef != "" && fileops.Exists(s.fs, rec.BackupRef) {
		if err := s.backups.Restore(restored); err != nil {
			if _, moveErr := fileops.Relocate(s.fs, restored, filepath.Dir(rec.FileRef)); moveErr != nil {
				s.log.Error("could not return file after failed restore", "path", restored, "error", moveErr)
			}
			s.history.Push(rec)
			return failure(ErrIO, "undo", restored, err)
		}
	}

	if rec.Kind == ActionDelete {
		s.pruneBin(filepath.Dir(rec.FileRef))
	}

	s.rewind(rec)
	s.log.Debug("undone", "op", rec.Kind.String(), "path", restored)
	return nil
}

func (s *Session) pruneBin(dir string) {
	if !strings.HasPrefix(filepath.Base(dir), fileops.BinPrefix) {
		return
	}
	removed, err := fileops.RemoveIfEmpty(s.fs, dir)
	if err != nil {
		s.log.Warn("could not remove empty bin folder", "path", dir, "error", err)
		return
	}
	if removed {
		s.log.Debug("removed empty bin folder", "path", dir)
	}
}

func (s *Session) rewind(rec Record) {
	s.cursor = max(rec.Index, 0)
}
