package config

import (
	"os"

	"filebot/internal/errors"
	"filebot/pkg/types"
)

// Sample returns the starter configuration written by `filebot init`.
func Sample() *Config {
	cfg := New("~/Downloads",
		types.Rule{
			Name: "Organize by file type",
			Conditions: []types.Condition{
				{
					Extensions:  []string{".pdf", ".doc", ".docx", ".txt"},
					Destination: "Documents/{extension_group}",
				},
			},
		},
		types.Rule{
			Name: "Images by month",
			Conditions: []types.Condition{
				{
					Extensions:       []string{".jpg", ".jpeg", ".png", ".gif", ".heic"},
					Destination:      "Images",
					SubfolderPattern: "YYYY/MM",
				},
			},
		},
		types.Rule{
			Name: "Archives by age",
			Conditions: []types.Condition{
				{
					Extensions:  []string{".zip", ".tar", ".gz", ".7z", ".rar"},
					Destination: "Archives/{date_group}",
				},
			},
		},
	)
	cfg.LogFile = "logs/organizer.log"
	cfg.DateGroups.Older = 365
	cfg.Ignore = []string{"*.part", "*.crdownload", "*.download", "*.tmp"}
	return cfg
}

// WriteSample writes Sample to path. An existing file is left alone unless
// force is set.
func WriteSample(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.NewConfigError("config file already exists", path, errors.InvalidConfig, os.ErrExist)
		}
	}
	return Save(Sample(), path)
}
