package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the JSON file layout.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		Version       string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Collections struct {
			BaseDir string `json:"base_dir"`
			Path    string `json:"path"`
		} `json:"collections,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		Users          []string `json:"users"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress     string   `json:"http_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		ConnectTimeout  Duration `json:"connect_timeout"`
		TransferTimeout Duration `json:"transfer_timeout"`
		Username        string   `json:"username"`
		Password        string   `json:"password"`
	} `json:"adapter,omitempty"`

	Sync struct {
		ChunkSize                 int      `json:"chunk_size"`
		MaxUploadMegsUncompressed int64    `json:"max_upload_megs_uncomp"`
		MaxUploadMegsCompressed   int64    `json:"max_upload_megs_comp"`
		SessionIdleTimeout        Duration `json:"session_idle_timeout"`
		MaxClockSkew              Duration `json:"max_clock_skew"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval  Duration `json:"sync_interval"`
		SweepInterval Duration `json:"sweep_interval"`
		PoolSize      int      `json:"pool_size"`
	} `json:"workers,omitempty"`
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
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			Version:       jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Collections: Collections{
				BaseDir: jsonCfg.Storage.Collections.BaseDir,
				Path:    jsonCfg.Storage.Collections.Path,
			},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
			Users:          jsonCfg.Server.Users,
		},
		Adapter: Adapter{
			HTTPAddress:     jsonCfg.Adapter.HTTPAddress,
			RequestTimeout:  time.Duration(jsonCfg.Adapter.RequestTimeout),
			ConnectTimeout:  time.Duration(jsonCfg.Adapter.ConnectTimeout),
			TransferTimeout: time.Duration(jsonCfg.Adapter.TransferTimeout),
			Username:        jsonCfg.Adapter.Username,
			Password:        jsonCfg.Adapter.Password,
		},
		Sync: Sync{
			ChunkSize:                 jsonCfg.Sync.ChunkSize,
			MaxUploadMegsUncompressed: jsonCfg.Sync.MaxUploadMegsUncompressed,
			MaxUploadMegsCompressed:   jsonCfg.Sync.MaxUploadMegsCompressed,
			SessionIdleTimeout:        time.Duration(jsonCfg.Sync.SessionIdleTimeout),
			MaxClockSkew:              time.Duration(jsonCfg.Sync.MaxClockSkew),
		},
		Workers: Workers{
			SyncInterval:  time.Duration(jsonCfg.Workers.SyncInterval),
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
			PoolSize:      jsonCfg.Workers.PoolSize,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as raw nanosecond numbers.
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
		return fmt.Errorf("invalid duration: %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
