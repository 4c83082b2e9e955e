package triage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math/rand/v2"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"photosort/internal/cropmap"
)

const testSession = "0000000042"

func TestScenarioMoveSkipUndo(t *testing.T) {
	fsys := newTree(t, "a.jpg", "b.jpg")
	mkdir(t, fsys, "/dst/X")
	s := newSession(t, fsys)

	if err := s.Move("/dst/X"); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertCursor(t, s, 1)
	assertKinds(t, s, ActionMove)
	assertExists(t, fsys, "/dst/X/a.jpg")

	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	assertCursor(t, s, 2)
	assertKinds(t, s, ActionMove, ActionSkip)
	if _, ok := s.Current(); ok {
		t.Fatalf("expected triage complete")
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("undo skip: %v", err)
	}
	assertCursor(t, s, 1)
	assertKinds(t, s, ActionMove)
	if cur, _ := s.Current(); cur != "/src/b.jpg" {
		t.Fatalf("current = %s, want /src/b.jpg", cur)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("undo move: %v", err)
	}
	assertCursor(t, s, 0)
	assertKinds(t, s)
	assertExists(t, fsys, "/src/a.jpg")
	assertMissing(t, fsys, "/dst/X/a.jpg")
}

func TestActionsThenUndosRestoreState(t *testing.T) {
	names := []string{"01.png", "02.jpg", "03.JPEG", "04.png", "05.png", "06.jpg", "07.png", "08.png"}
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 20; round++ {
		fsys := newTree(t, names...)
		mkdir(t, fsys, "/dst/A")
		mkdir(t, fsys, "/dst/A/B")
		before := snapshot(t, fsys)
		s := newSession(t, fsys)

		n := 1 + rng.IntN(len(names))
		for i := 0; i < n; i++ {
			var err error
			switch rng.IntN(4) {
			case 0:
				err = s.Move("/dst/A")
			case 1:
				err = s.Move("/dst/A/B")
			case 2:
				err = s.Delete()
			default:
				err = s.Skip()
			}
			if err != nil {
				t.Fatalf("round %d action %d: %v", round, i, err)
			}
		}
		if got := len(s.History()) + s.Remaining(); got != len(names) {
			t.Fatalf("history + remaining = %d, want %d", got, len(names))
		}

		for i := 0; i < n; i++ {
			if err := s.Undo(); err != nil {
				t.Fatalf("round %d undo %d: %v", round, i, err)
			}
		}

		assertCursor(t, s, 0)
		if after := snapshot(t, fsys); !reflect.DeepEqual(before, after) {
			t.Fatalf("round %d: files differ after undo\nbefore: %v\nafter:  %v", round, keys(before), keys(after))
		}
		assertMissing(t, fsys, s.BinDir())
	}
}

func TestDeleteUsesSessionBin(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png")
	s := newSession(t, fsys)

	if err := s.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	bin := filepath.Join("/dst", "Del", "Delete_folder_"+testSession)
	if s.BinDir() != bin {
		t.Fatalf("bin dir = %s, want %s", s.BinDir(), bin)
	}
	assertExists(t, fsys, filepath.Join(bin, "a.png"))
	assertExists(t, fsys, filepath.Join(bin, "b.png"))

	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	assertExists(t, fsys, bin)
	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	assertMissing(t, fsys, bin)
	assertExists(t, fsys, "/src/a.png")
	assertExists(t, fsys, "/src/b.png")
}

func TestSkipNeverTouchesFilesystem(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png")
	before := snapshot(t, fsys)
	s := newSession(t, fsys)

	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if !reflect.DeepEqual(before, snapshot(t, fsys)) {
		t.Fatalf("skip changed files")
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !reflect.DeepEqual(before, snapshot(t, fsys)) {
		t.Fatalf("undo skip changed files")
	}
	assertCursor(t, s, 0)
}

func TestCropThenUndoCropIsByteIdentical(t *testing.T) {
	fsys := newTree(t, "p.jpg")
	s := newSession(t, fsys)
	original := readFile(t, fsys, "/src/p.jpg")

	applied, err := s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{X: 4, Y: 3, Width: 10, Height: 8}, ok: true})
	if err != nil || !applied {
		t.Fatalf("crop: applied=%v err=%v", applied, err)
	}
	assertExists(t, fsys, "/src/p.jpg.bak")
	if !s.IsCurrentCropped() {
		t.Fatalf("expected cropped flag")
	}
	if cfg := decodeConfig(t, fsys, "/src/p.jpg"); cfg.Width != 10 || cfg.Height != 8 {
		t.Fatalf("cropped size = %dx%d, want 10x8", cfg.Width, cfg.Height)
	}

	second, err := s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{X: 0, Y: 0, Width: 5, Height: 5}, ok: true})
	if err != nil || !second {
		t.Fatalf("second crop: applied=%v err=%v", second, err)
	}
	if !bytes.Equal(readFile(t, fsys, "/src/p.jpg.bak"), original) {
		t.Fatalf("second crop overwrote the backup")
	}

	if err := s.UndoCrop(); err != nil {
		t.Fatalf("undo crop: %v", err)
	}
	if !bytes.Equal(readFile(t, fsys, "/src/p.jpg"), original) {
		t.Fatalf("undo crop did not restore original bytes")
	}
	assertMissing(t, fsys, "/src/p.jpg.bak")
	if s.IsCurrentCropped() {
		t.Fatalf("cropped flag still set")
	}
	assertCursor(t, s, 0)
	assertKinds(t, s)
}

func TestCropKeepsFormat(t *testing.T) {
	fsys := newTree(t, "p.png")
	s := newSession(t, fsys)

	if _, err := s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{Width: 6, Height: 6}, ok: true}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(readFile(t, fsys, "/src/p.png"))); err != nil || format != "png" {
		t.Fatalf("format = %q, err = %v", format, err)
	}
}

func TestCropCancelledLeavesFileAlone(t *testing.T) {
	fsys := newTree(t, "p.png")
	s := newSession(t, fsys)
	before := snapshot(t, fsys)

	applied, err := s.Crop(context.Background(), fixedSelector{})
	if err != nil || applied {
		t.Fatalf("cancelled crop: applied=%v err=%v", applied, err)
	}
	applied, err = s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{X: 3, Width: 0, Height: 4}, ok: true})
	if err != nil || applied {
		t.Fatalf("degenerate crop: applied=%v err=%v", applied, err)
	}
	if !reflect.DeepEqual(before, snapshot(t, fsys)) {
		t.Fatalf("cancelled crop changed files")
	}

	_, err = s.Crop(context.Background(), fixedSelector{err: context.Canceled})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("selector error = %v, want context.Canceled", err)
	}
}

func TestApplyCropRejectsStaleRequest(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png")
	s := newSession(t, fsys)

	req, err := s.PrepareCrop()
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if _, err := s.ApplyCrop(req, cropmap.Rect{Width: 2, Height: 2}); !errors.Is(err, ErrStaleCrop) {
		t.Fatalf("apply = %v, want ErrStaleCrop", err)
	}
}

func TestUndoCropWithoutBackup(t *testing.T) {
	fsys := newTree(t, "p.png")
	s := newSession(t, fsys)

	if err := s.UndoCrop(); !errors.Is(err, ErrBackupMissing) {
		t.Fatalf("undo crop = %v, want ErrBackupMissing", err)
	}
}

func TestUndoMoveRightAfterCropRestoresOriginal(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png")
	mkdir(t, fsys, "/dst/X")
	s := newSession(t, fsys)
	original := readFile(t, fsys, "/src/a.png")

	if _, err := s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{Width: 5, Height: 5}, ok: true}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	if err := s.Move("/dst/X"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if h := s.History(); h[0].BackupRef != "/src/a.png.bak" {
		t.Fatalf("backup ref = %q", h[0].BackupRef)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}

	if !bytes.Equal(readFile(t, fsys, "/src/a.png"), original) {
		t.Fatalf("undo move did not restore the pre-crop image")
	}
	assertMissing(t, fsys, "/src/a.png.bak")
}

// Pushing a record discards the sidecar still referenced by the previous
// top record. Undoing back past that point brings the file back but not its
// pre-crop content.
func TestStaleBackupDroppedOnNextAction(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png")
	mkdir(t, fsys, "/dst/X")
	s := newSession(t, fsys)
	original := readFile(t, fsys, "/src/a.png")

	if _, err := s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{Width: 5, Height: 5}, ok: true}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	cropped := readFile(t, fsys, "/src/a.png")
	if err := s.Move("/dst/X"); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertExists(t, fsys, "/src/a.png.bak")

	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	assertMissing(t, fsys, "/src/a.png.bak")

	if err := s.Undo(); err != nil {
		t.Fatalf("undo skip: %v", err)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("undo move: %v", err)
	}

	got := readFile(t, fsys, "/src/a.png")
	if bytes.Equal(got, original) {
		t.Fatalf("crop was reverted; the stale backup should have been discarded")
	}
	if !bytes.Equal(got, cropped) {
		t.Fatalf("restored file is neither original nor cropped")
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	s := newSession(t, newTree(t, "a.png"))
	if err := s.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo = %v, want ErrNothingToUndo", err)
	}
}

func TestMoveFailureKeepsState(t *testing.T) {
	fsys := newTree(t, "a.png")
	s := newSession(t, fsys)

	err := s.Move("/dst/missing")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("move = %v, want ErrIO", err)
	}
	assertCursor(t, s, 0)
	assertKinds(t, s)
	assertExists(t, fsys, "/src/a.png")
}

func TestUndoFailurePushesRecordBack(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png")
	mkdir(t, fsys, "/dst/X")
	s := newSession(t, fsys)

	if err := s.Move("/dst/X"); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := fsys.Remove("/dst/X/a.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if err := s.Undo(); !errors.Is(err, ErrMissingSourceFile) {
		t.Fatalf("undo = %v, want ErrMissingSourceFile", err)
	}
	assertCursor(t, s, 1)
	assertKinds(t, s, ActionMove)
}

func TestCommandsOnCompleteQueue(t *testing.T) {
	fsys := newTree(t, "a.png")
	s := newSession(t, fsys)
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}

	for name, err := range map[string]error{
		"move":   s.Move("/dst"),
		"delete": s.Delete(),
		"skip":   s.Skip(),
	} {
		if !errors.Is(err, ErrQueueComplete) {
			t.Fatalf("%s = %v, want ErrQueueComplete", name, err)
		}
	}
	if _, err := s.PrepareCrop(); !errors.Is(err, ErrQueueComplete) {
		t.Fatalf("crop = %v, want ErrQueueComplete", err)
	}
}

func TestBrokenEntriesAreSkipped(t *testing.T) {
	fsys := newTree(t, "a.png", "c.png", "d.png")
	if err := afero.WriteFile(fsys, "/src/b.png", []byte("not a png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := newSession(t, fsys)

	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if cur, _ := s.Current(); cur != "/src/c.png" {
		t.Fatalf("current = %s, want /src/c.png", cur)
	}

	if err := fsys.Remove("/src/d.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("expected triage complete after vanished entry")
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if cur, _ := s.Current(); cur != "/src/c.png" {
		t.Fatalf("current after undo = %s, want /src/c.png", cur)
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	assertCursor(t, s, 0)
}

func TestVanishedCurrentIsPassedWithoutRecord(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png", "c.png", "d.png")
	mkdir(t, fsys, "/dst/X")
	s := newSession(t, fsys)

	if err := fsys.Remove("/src/a.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Move("/dst/X"); err != nil {
		t.Fatalf("move: %v", err)
	}
	assertCursor(t, s, 1)
	assertKinds(t, s)
	if ok, _ := afero.Exists(fsys, "/dst/X/b.png"); ok {
		t.Fatalf("move must not act on the next image")
	}

	if err := fsys.Remove("/src/b.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Delete(); err != nil {
		t.Fatalf("delete: %v", err)
	}
	assertCursor(t, s, 2)
	assertKinds(t, s)

	if err := fsys.Remove("/src/c.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	assertCursor(t, s, 3)
	assertKinds(t, s)
	if cur, _ := s.Current(); cur != "/src/d.png" {
		t.Fatalf("current = %s, want /src/d.png", cur)
	}

	if err := fsys.Remove("/src/d.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.PrepareCrop(); !errors.Is(err, ErrMissingSourceFile) {
		t.Fatalf("crop = %v, want ErrMissingSourceFile", err)
	}
	assertCursor(t, s, 3)
}

func TestSummary(t *testing.T) {
	fsys := newTree(t, "a.png", "b.png", "c.png", "d.png")
	mkdir(t, fsys, "/dst/X")
	s := newSession(t, fsys)

	if _, err := s.Crop(context.Background(), fixedSelector{rect: cropmap.Rect{Width: 3, Height: 3}, ok: true}); err != nil {
		t.Fatalf("crop: %v", err)
	}
	mustOK(t, s.Move("/dst/X"))
	mustOK(t, s.Delete())
	mustOK(t, s.Skip())

	got := s.Summary()
	want := Summary{Total: 4, Moved: 1, Deleted: 1, Skipped: 1, Cropped: 1, Remaining: 1}
	if got != want {
		t.Fatalf("summary = %+v, want %+v", got, want)
	}
}

func TestScanQueueFiltersAndSorts(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for _, name := range []string{"b.PNG", "a.jpg", "c.JpEg", "notes.txt", "a.jpg.bak", "d.gif"} {
		if err := afero.WriteFile(fsys, "/src/"+name, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	mkdir(t, fsys, "/src/nested.png")
	if err := afero.WriteFile(fsys, "/src/nested.png/e.png", []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ScanQueue(fsys, "/src")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	want := []string{"/src/a.jpg", "/src/b.PNG", "/src/c.JpEg"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
}

func TestNewSessionIDFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := NewSessionID()
		if !ValidSessionID(id) || strings.Trim(id, "0123456789") != "" {
			t.Fatalf("session id %q is not 10 digits", id)
		}
	}
	leading := false
	for i := 0; i < 200 && !leading; i++ {
		leading = NewSessionID()[0] != '0'
	}
	if !leading {
		t.Fatal("session ids never use the leading digit")
	}
	for _, bad := range []string{"", "123", "00000000001", "00000a0001"} {
		if ValidSessionID(bad) {
			t.Fatalf("%q accepted", bad)
		}
	}
	fsys := newTree(t, "a.png")
	if _, err := New(Options{Fs: fsys, SourceDir: "/src", DestRoot: "/dst", SessionID: "abc"}); err == nil {
		t.Fatal("expected an invalid session id to be rejected")
	}
}

type fixedSelector struct {
	rect cropmap.Rect
	ok   bool
	err  error
}

func (f fixedSelector) SelectCrop(context.Context, image.Image) (cropmap.Rect, bool, error) {
	return f.rect, f.ok, f.err
}

func newSession(t *testing.T, fsys afero.Fs) *Session {
	t.Helper()
	s, err := New(Options{Fs: fsys, SourceDir: "/src", DestRoot: "/dst", SessionID: testSession})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

// newTree builds /src with one small image per name and an empty /dst.
func newTree(t *testing.T, names ...string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	mkdir(t, fsys, "/src")
	mkdir(t, fsys, "/dst")
	for i, name := range names {
		writeImage(t, fsys, filepath.Join("/src", name), 40+i, 30)
	}
	return fsys
}

func writeImage(t *testing.T, fsys afero.Fs, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: uint8(x ^ y), A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := afero.WriteFile(fsys, path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkdir(t *testing.T, fsys afero.Fs, dir string) {
	t.Helper()
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
}

func readFile(t *testing.T, fsys afero.Fs, path string) []byte {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func decodeConfig(t *testing.T, fsys afero.Fs, path string) image.Config {
	t.Helper()
	cfg, _, err := image.DecodeConfig(bytes.NewReader(readFile(t, fsys, path)))
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cfg
}

// snapshot maps every regular file to its content.
func snapshot(t *testing.T, fsys afero.Fs) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := afero.Walk(fsys, "/", func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		files[path] = string(readFile(t, fsys, path))
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return files
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func assertCursor(t *testing.T, s *Session, want int) {
	t.Helper()
	if got := s.Cursor(); got != want {
		t.Fatalf("cursor = %d, want %d", got, want)
	}
}

func assertKinds(t *testing.T, s *Session, want ...Action) {
	t.Helper()
	var got []Action
	for _, r := range s.History() {
		got = append(got, r.Kind)
	}
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}
}

func assertExists(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if _, err := fsys.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, fsys afero.Fs, path string) {
	t.Helper()
	if _, err := fsys.Stat(path); err == nil {
		t.Fatalf("expected %s to be gone", path)
	}
}

func mustOK(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
