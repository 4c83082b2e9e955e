// Package imageinfo gathers display details for queued images: size,
// dimensions, EXIF capture data and crop state.
package imageinfo

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"photosort/internal/backup"
	"photosort/internal/codec"
	"photosort/pkg/imgutil"
)

// Info describes one image. Err holds the first failure met while
// inspecting; fields gathered before it stay populated.
type Info struct {
	Path    string
	Kind    imgutil.Kind
	Size    int64
	Width   int
	Height  int
	Taken   string
	Camera  string
	Cropped bool
	Err     error
}

func (i Info) Name() string { return filepath.Base(i.Path) }

func (i Info) HumanSize() string {
	if i.Size <= 0 {
		return "-"
	}
	return humanize.Bytes(uint64(i.Size))
}

func (i Info) Dimensions() string {
	if i.Width == 0 || i.Height == 0 {
		return "-"
	}
	return fmt.Sprintf("%d×%d", i.Width, i.Height)
}

// Inspect reads the details of a single image.
func Inspect(fsys afero.Fs, dec codec.Codec, path string) Info {
	file, err := fsys.Open(path)
	if err != nil {
		return Info{Path: path, Err: err}
	}
	defer file.Close()

	var size int64
	if stat, err := file.Stat(); err == nil {
		size = stat.Size()
	}

	info := InspectReader(path, file, size, dec)
	info.Cropped = backup.New(fsys).Has(path)
	return info
}

// InspectReader reads the details of an image already opened or held in
// memory. Crop state is left to the caller.
func InspectReader(path string, rs io.ReadSeeker, size int64, dec codec.Codec) Info {
	info := Info{Path: path, Size: size}

	kind, err := imgutil.SniffReader(rs)
	if err != nil {
		info.Err = fmt.Errorf("sniff: %w", err)
		return info
	}
	info.Kind = kind

	var fields exifFields
	switch kind {
	case imgutil.KindJPEG:
		fields, err = readExif(rs)
	case imgutil.KindPNG:
		fields, err = readPNGMeta(rs)
	}
	if err != nil {
		info.Err = fmt.Errorf("metadata: %w", err)
	}
	info.Camera = fields.camera()
	info.Taken = fields.taken()

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		if info.Err == nil {
			info.Err = err
		}
		return info
	}
	cfg, err := dec.DecodeConfig(rs)
	if err != nil {
		if info.Err == nil {
			info.Err = fmt.Errorf("decode config: %w", err)
		}
		return info
	}
	info.Width, info.Height = cfg.Width, cfg.Height

	return info
}

// Collect inspects paths on a bounded worker pool and returns results in
// input order. workers <= 0 uses one worker per CPU.
func Collect(ctx context.Context, fsys afero.Fs, dec codec.Codec, paths []string, workers int) ([]Info, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	infos := make([]Info, len(paths))
	jobs := make(chan int)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					return
				}
				infos[idx] = Inspect(fsys, dec, paths[idx])
			}
		}()
	}

	var sendErr error
send:
	for idx := range paths {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			sendErr = ctx.Err()
			break send
		}
	}
	close(jobs)
	wg.Wait()

	if sendErr != nil {
		return infos, sendErr
	}
	return infos, ctx.Err()
}
