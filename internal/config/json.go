package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		UserAgent string `json:"user_agent"`
		MasterKey string `json:"master_key"`
		LogDir    string `json:"log_dir"`
		Version   string `json:"version"`
	} `json:"app,omitempty"`

	Adapter struct {
		APIAddress      string   `json:"api_address"`
		PipelineAddress string   `json:"pipeline_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		PageRetryDelay  Duration `json:"page_retry_delay"`
		PageRetries     int      `json:"page_retries"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Queue struct {
		TotalPerMinute  int            `json:"total_per_minute"`
		TypePerMinute   map[string]int `json:"type_per_minute"`
		ConcurrentTypes bool           `json:"concurrent_types"`
		PollInterval    Duration       `json:"poll_interval"`
	} `json:"queue,omitempty"`

	Workers struct {
		StatusPollInterval Duration `json:"status_poll_interval"`
		StaleAfter         Duration `json:"stale_after"`
		WatchdogInterval   Duration `json:"watchdog_interval"`
	} `json:"workers,omitempty"`

	Server struct {
		DiagnosticsAddress string `json:"diagnostics_address"`
	} `json:"server,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			UserAgent: jsonCfg.App.UserAgent,
			MasterKey: jsonCfg.App.MasterKey,
			LogDir:    jsonCfg.App.LogDir,
			Version:   jsonCfg.App.Version,
		},
		Adapter: Adapter{
			APIAddress:      jsonCfg.Adapter.APIAddress,
			PipelineAddress: jsonCfg.Adapter.PipelineAddress,
			RequestTimeout:  time.Duration(jsonCfg.Adapter.RequestTimeout),
			PageRetryDelay:  time.Duration(jsonCfg.Adapter.PageRetryDelay),
			PageRetries:     jsonCfg.Adapter.PageRetries,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Queue: Queue{
			TotalPerMinute:  jsonCfg.Queue.TotalPerMinute,
			TypePerMinute:   jsonCfg.Queue.TypePerMinute,
			ConcurrentTypes: jsonCfg.Queue.ConcurrentTypes,
			PollInterval:    time.Duration(jsonCfg.Queue.PollInterval),
		},
		Workers: Workers{
			StatusPollInterval: time.Duration(jsonCfg.Workers.StatusPollInterval),
			StaleAfter:         time.Duration(jsonCfg.Workers.StaleAfter),
			WatchdogInterval:   time.Duration(jsonCfg.Workers.WatchdogInterval),
		},
		Server: Server{
			DiagnosticsAddress: jsonCfg.Server.DiagnosticsAddress,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
