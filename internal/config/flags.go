package config

import "flag"

var (
	flagConfig        = flag.String("config", "", "Path to config file")
	flagDebug         = flag.Bool("debug", false, "Enable debug logging")
	flagPoseFile      = flag.String("pose-file", "", "Pose archive looked up next to each file")
	flagNoPose        = flag.Bool("no-pose", false, "Do not apply poses")
	flagShapeKeyModel = flag.Int("shape-key-model", -1, "Model index shape keys apply to")
	flagOut           = flag.String("out", "", "Output directory (default: stdout)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
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
	if *flagPoseFile != "" {
		cfg.Import.PoseFile = *flagPoseFile
	}
	if *flagNoPose {
		cfg.Import.ApplyPoses = false
	}
	if *flagShapeKeyModel >= 0 {
		cfg.Import.ShapeKeyModel = *flagShapeKeyModel
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
}
