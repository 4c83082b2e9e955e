package triage

import (
	"context"
	"image"
	"io"

	"github.com/spf13/afero"

	"photosort/internal/codec"
	"photosort/internal/cropmap"
	"photosort/internal/fileops"
	"photosort/pkg/imgutil"
)

// Selector lets the user pick a crop rectangle in original pixel space. It
// returns false when the selection was cancelled or empty.
type Selector interface {
	SelectCrop(ctx context.Context, img image.Image) (cropmap.Rect, bool, error)
}

// CropRequest carries a freshly decoded copy of the pending image between
// PrepareCrop and ApplyCrop.
type CropRequest struct {
	Path  string
	Kind  imgutil.Kind
	Image image.Image
}

// Width and Height are the original pixel dimensions.
func (r *CropRequest) Width() int  { return r.Image.Bounds().Dx() }
func (r *CropRequest) Height() int { return r.Image.Bounds().Dy() }

// Crop runs PrepareCrop, asks sel for a rectangle and applies it. It reports
// whether the file was rewritten.
func (s *Session) Crop(ctx context.Context, sel Selector) (bool, error) {
	req, err := s.PrepareCrop()
	if err != nil {
		return false, err
	}
	rect, ok, err := sel.SelectCrop(ctx, req.Image)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return s.ApplyCrop(req, rect)
}

// PrepareCrop decodes the pending image from disk.
func (s *Session) PrepareCrop() (*CropRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.pending("crop")
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(src)
	if err != nil {
		return nil, failure(ErrIO, "crop", src, err)
	}
	defer f.Close()

	img, err := s.codec.Decode(f)
	if err != nil {
		return nil, failure(ErrUnreadableImage, "crop", src, err)
	}
	return &CropRequest{Path: src, Kind: imgutil.KindFromExt(src), Image: img}, nil
}

// ApplyCrop backs up the pending image on its first crop and overwrites it
// with the region rect, given in original pixels. An empty rect leaves the
// file alone.
func (s *Session) ApplyCrop(req *CropRequest, rect cropmap.Rect) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.pending("crop")
	if err != nil {
		return false, err
	}
	if req == nil || req.Path != src {
		return false, failure(ErrStaleCrop, "crop", src, nil)
	}

	rect, ok := cropmap.ToOriginal(rect, 1.0, req.Width(), req.Height())
	if !ok {
		return false, nil
	}

	info, err := s.fs.Stat(src)
	if err != nil {
		return false, failure(ErrIO, "crop", src, err)
	}

	created, err := s.backups.Ensure(src)
	if err != nil {
		return false, failure(ErrIO, "crop", src, err)
	}

	cropped := codec.Crop(req.Image, rect)
	err = fileops.WriteAtomic(s.fs, src, info.Mode().Perm(), func(w io.Writer) error {
		return s.codec.Encode(w, cropped, req.Kind)
	})
	if err != nil {
		if created {
			if discardErr := s.backups.Discard(src); discardErr != nil {
				s.log.Warn("could not drop unused backup", "path", src, "error", discardErr)
			}
		}
		return false, failure(ErrIO, "crop", src, err)
	}

	s.crops++
	s.log.Debug("cropped", "path", src, "x", rect.X, "y", rect.Y, "width", rect.Width, "height", rect.Height, "new_backup", created)
	return true, nil
}

// UndoCrop restores the pending image from its sidecar.
func (s *Session) UndoCrop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.pending("undo crop")
	if err != nil {
		return err
	}
	if !s.backups.Has(src) {
		return failure(ErrBackupMissing, "undo crop", src, nil)
	}
	if err := s.backups.Restore(src); err != nil {
		return failure(ErrIO, "undo crop", src, err)
	}
	s.log.Debug("crop undone", "path", src)
	return nil
}

// ReadCurrent returns the raw bytes of the pending image, for previews. The
// path is set whenever an image is pending.
func (s *Session) ReadCurrent() (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := s.pending("read")
	if err != nil {
		return "", nil, err
	}
	data, err := afero.ReadFile(s.fs, src)
	if err != nil {
		return src, nil, failure(ErrIO, "read", src, err)
	}
	return src, data, nil
}
