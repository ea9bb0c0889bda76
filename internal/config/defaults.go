package config

const (
	defaultOutputDir  = "~/.local/share/isofit/results"
	defaultDatasetDir = "~/.local/share/isofit/datasets"
	defaultLogDir     = "~/.local/share/isofit/logs"

	defaultCatalogEndpoint = "https://gea.esac.esa.int/tap-server/tap"
	defaultCatalogTimeout  = 60
	defaultRadiusArcsec    = 20.0
	defaultMagTolerance    = 1.0

	defaultNLive = 500
	defaultDLogZ = 0.01
	defaultWalks = 25

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:  defaultOutputDir,
			DatasetDir: defaultDatasetDir,
			LogDir:     defaultLogDir,
		},
		Catalog: Catalog{
			Endpoint:       defaultCatalogEndpoint,
			TimeoutSeconds: defaultCatalogTimeout,
			RadiusArcsec:   defaultRadiusArcsec,
			MagTolerance:   defaultMagTolerance,
		},
		Sampler: Sampler{
			NLive: defaultNLive,
			DLogZ: defaultDLogZ,
			Walks: defaultWalks,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
