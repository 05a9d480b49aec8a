// Package config handles importer configuration loading and management.
package config

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds scene resolution settings.
type ImportConfig struct {
	PoseFile      string `yaml:"pose_file"`       // Looked up next to each imported file
	ApplyPoses    bool   `yaml:"apply_poses"`     // Build a posed skeleton per pose
	ShapeKeyModel int    `yaml:"shape_key_model"` // Model index shape keys apply to
}

// OutputConfig holds where the CLI writes scene documents and textures.
type OutputConfig struct {
	Dir string `yaml:"dir"` // Empty writes documents to stdout
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			PoseFile:      "VALCA02AD.MLX",
			ApplyPoses:    true,
			ShapeKeyModel: 1,
		},
		Output: OutputConfig{
			Dir: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// PosePath returns the pose file name to look for, or "" when poses are
// disabled.
func (c *Config) PosePath() string {
	if !c.Import.ApplyPoses {
		return ""
	}
	return c.Import.PoseFile
}
