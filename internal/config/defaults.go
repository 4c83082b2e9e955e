package config

const (
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
	defaultMaxWidth    = 850
	defaultMaxHeight   = 550
	defaultCropFill    = 0.9
	defaultJPEGQuality = 95
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Preview: Preview{
			MaxWidth:    defaultMaxWidth,
			MaxHeight:   defaultMaxHeight,
			CropFill:    defaultCropFill,
			JPEGQuality: defaultJPEGQuality,
		},
	}
}
