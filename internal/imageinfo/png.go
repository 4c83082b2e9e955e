package imageinfo

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// readPNGMeta collects camera and capture time from tEXt, iTXt, tIME and
// eXIf chunks. Text keys win over eXIf values.
func readPNGMeta(rs io.ReadSeeker) (exifFields, error) {
	fields := exifFields{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fields, err
	}

	br := bufio.NewReader(rs)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return fields, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return fields, errors.New("invalid PNG signature")
	}

	var embedded []byte
	for {
		lenBuf := make([]byte, 8)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				break
			}
			return fields, err
		}
		length := binary.BigEndian.Uint32(lenBuf[:4])
		chunkName := string(lenBuf[4:])

		switch chunkName {
		case "tEXt", "iTXt", "tIME", "eXIf":
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return fields, err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return fields, err
			}
			switch chunkName {
			case "tEXt":
				applyPNGText(&fields, data, false)
			case "iTXt":
				applyPNGText(&fields, data, true)
			case "tIME":
				if stamp, ok := formatPNGTime(data); ok {
					fields.DateTime = stamp
				}
			case "eXIf":
				embedded = data
			}
		default:
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return fields, err
			}
		}

		if chunkName == "IEND" {
			break
		}
	}

	if len(embedded) > 0 {
		fromExif, err := readExif(bytes.NewReader(embedded))
		if err != nil {
			return fields, err
		}
		fields = fields.merge(fromExif)
	}
	return fields, nil
}

// applyPNGText reads a keyword\0text chunk. iTXt carries compression flag,
// method, language and translated keyword before the text; compressed
// values are ignored.
func applyPNGText(fields *exifFields, data []byte, international bool) {
	key, rest, ok := bytes.Cut(data, []byte{0})
	if !ok || len(key) == 0 {
		return
	}
	if international {
		if len(rest) < 2 || rest[0] != 0 {
			return
		}
		parts := bytes.SplitN(rest[2:], []byte{0}, 3)
		if len(parts) != 3 {
			return
		}
		rest = parts[2]
	}
	value := strings.TrimSpace(string(rest))
	if value == "" {
		return
	}

	switch strings.ToLower(string(key)) {
	case "model":
		fields.Model = value
	case "make":
		fields.Make = value
	case "creation time":
		fields.Original = value
	}
}

func formatPNGTime(data []byte) (string, bool) {
	if len(data) != 7 {
		return "", false
	}
	year := binary.BigEndian.Uint16(data[:2])
	return fmt.Sprintf("%04d:%02d:%02d %02d:%02d:%02d", year, data[2], data[3], data[4], data[5], data[6]), true
}
