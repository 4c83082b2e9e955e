package imageinfo

import (
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

type exifFields struct {
	Make     string
	Model    string
	Original string
	DateTime string
}

func (f exifFields) camera() string {
	model := f.Model
	if f.Make != "" && !strings.HasPrefix(strings.ToLower(model), strings.ToLower(f.Make)) {
		model = strings.TrimSpace(f.Make + " " + model)
	}
	return model
}

func (f exifFields) taken() string {
	if f.Original != "" {
		return f.Original
	}
	return f.DateTime
}

// merge fills the fields f lacks from other.
func (f exifFields) merge(other exifFields) exifFields {
	if f.Make == "" {
		f.Make = other.Make
	}
	if f.Model == "" {
		f.Model = other.Model
	}
	if f.Original == "" {
		f.Original = other.Original
	}
	if f.DateTime == "" {
		f.DateTime = other.DateTime
	}
	return f
}

func readExif(rs io.ReadSeeker) (exifFields, error) {
	fields := exifFields{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fields, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if errorsIsNoExif(err) {
			return fields, nil
		}
		return fields, err
	}

	for _, tag := range tags {
		value, ok := tag.Value.(string)
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimRight(value, "\x00"))

		switch tag.TagName {
		case "Make":
			fields.Make = value
		case "Model":
			fields.Model = value
		case "DateTimeOriginal":
			fields.Original = value
		case "DateTime":
			fields.DateTime = value
		}
	}

	return fields, nil
}

func errorsIsNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
