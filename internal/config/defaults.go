package config

const (
	defaultConfigPath              = "~/.config/flareader/config.toml"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultCameraCenterTolerance   = 0.15
	defaultReferenceAlphaThreshold = 50
	defaultDecodeWorkers           = 4
	defaultWidth                   = 550
	defaultHeight                  = 400
	defaultFrameRate               = 24
	defaultBackground              = "#FFFFFF"
	defaultCacheMemoryEntries      = 256
)

var defaultCameraAliases = []string{"ramka", "camera", "cam", "viewport"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Parser: Parser{
			CameraCenterTolerance:   defaultCameraCenterTolerance,
			ReferenceAlphaThreshold: defaultReferenceAlphaThreshold,
			CameraAliases:           append([]string(nil), defaultCameraAliases...),
			DecodeWorkers:           defaultDecodeWorkers,
			DefaultWidth:            defaultWidth,
			DefaultHeight:           defaultHeight,
			DefaultFrameRate:        defaultFrameRate,
			DefaultBackground:       defaultBackground,
		},
		Cache: Cache{
			Enabled:       false,
			Dir:           defaultCacheDir(),
			MemoryEntries: defaultCacheMemoryEntries,
		},
	}
}
