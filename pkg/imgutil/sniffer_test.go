package imgutil

import (
	"bytes"
	"testing"
)

func TestKindFromExt(t *testing.T) {
	cases := map[string]Kind{
		"a.jpg":      KindJPEG,
		"a.JPG":      KindJPEG,
		"dir/b.jpeg": KindJPEG,
		"c.PnG":      KindPNG,
		"d.gif":      KindUnknown,
		"e":          KindUnknown,
		"f.jpg.bak":  KindUnknown,
		"g.tiff":     KindUnknown,
	}
	for name, want := range cases {
		if got := KindFromExt(name); got != want {
			t.Fatalf("KindFromExt(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSniffReader(t *testing.T) {
	png := append([]byte{}, pngSig...)
	if kind, err := SniffReader(bytes.NewReader(png)); err != nil || kind != KindPNG {
		t.Fatalf("png sniff = %v, %v", kind, err)
	}

	jpeg := []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F'}
	if kind, err := SniffReader(bytes.NewReader(jpeg)); err != nil || kind != KindJPEG {
		t.Fatalf("jpeg sniff = %v, %v", kind, err)
	}

	if _, err := SniffReader(bytes.NewReader([]byte{1, 2})); err == nil {
		t.Fatalf("expected error for short input")
	}
}
