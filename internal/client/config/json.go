package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/catalogkeeper/internal/flagx"
	"github.com/dmitrijs2005/catalogkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// stay nil and leave the current value alone.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	DatabasePath   *string         `json:"database_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	LogFile        *string         `json:"log_file"`
	CreatePath     *string         `json:"create_path"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config in args. Without either flag nothing happens. Read and
// unmarshal errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	set(&cfg.DatabasePath, jc.DatabasePath)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.LogFile, jc.LogFile)
	set(&cfg.CreatePath, jc.CreatePath)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
