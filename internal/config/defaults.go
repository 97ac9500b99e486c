package config

const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	defaultLogDir          = ""
	defaultSpoolCeilingMiB = 32
	defaultZipCompression  = 6
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Dir:    defaultLogDir,
		},
		Convert: Convert{
			SpoolCeilingMiB: defaultSpoolCeilingMiB,
			ZipCompression:  defaultZipCompression,
			Overwrite:       false,
		},
	}
}
