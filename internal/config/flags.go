package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagTangents = flag.String("tangents", "", "Tangent mode: overwrite, legacy or accumulate")
	flagEncoding = flag.String("encoding", "", "Encoding of names in source files, e.g. euc-kr")
	flagOutDir   = flag.String("out-dir", "", "Directory for compiled geometry")
	flagLogFile  = flag.String("log-file", "", "Also write logs to this file")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagTangents != "" {
		cfg.Import.Tangents = *flagTangents
	}
	if *flagEncoding != "" {
		cfg.Import.NameEncoding = *flagEncoding
	}
	if *flagOutDir != "" {
		cfg.Output.Dir = *flagOutDir
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
