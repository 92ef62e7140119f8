package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/pipesh/core/history"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DefaultDirName    = "pipesh"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type Configuration struct {
	// configFs and configDir are unset when running on the built-in default,
	// which has nowhere to store files.
	configFs  afero.Fs
	configDir string

	Prompt             string `json:"prompt" validate:"required"`
	ContinuationPrompt string `json:"continuation_prompt" validate:"required"`
	Color              string `json:"color" validate:"oneof=auto always never"`

	HistoryFile  string `json:"history_file"`
	HistoryLimit int    `json:"history_limit" validate:"gte=0"`

	EventLog string `json:"event_log"`
	LogFile  string `json:"log_file"`

	PathOverride string `json:"path_override"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Dir is the configuration directory, empty for the built-in default.
func (c *Configuration) Dir() string {
	return c.configDir
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

func (c *Configuration) path(name string) string {
	return filepath.Join(c.configDir, name)
}

// stores reports whether name can be kept in the configuration directory.
func (c *Configuration) stores(name string) bool {
	return c.configFs != nil && name != ""
}

// OpenHistory loads the history file. Without one the history lives in
// memory.
func (c *Configuration) OpenHistory() (*history.Log, error) {
	if !c.stores(c.HistoryFile) {
		return history.New(c.HistoryLimit), nil
	}
	return history.Open(c.fs(), c.path(c.HistoryFile), c.HistoryLimit)
}

// HistoryPath is the host path of the history file, empty if there is none.
func (c *Configuration) HistoryPath() string {
	if !c.stores(c.HistoryFile) {
		return ""
	}
	return c.path(c.HistoryFile)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	if !c.stores(c.LogFile) {
		return nil, os.ErrNotExist
	}
	return c.fs().OpenFile(c.path(c.LogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	if !c.stores(c.EventLog) {
		return nil, os.ErrNotExist
	}
	return c.fs().OpenFile(c.path(c.EventLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	if !c.stores(c.EventLog) {
		return nil, os.ErrNotExist
	}
	return c.fs().OpenFile(c.path(c.EventLog), os.O_RDONLY, 0600)
}

// UseColor decides whether output is colored given whether it goes to a
// terminal.
func (c *Configuration) UseColor(isTerminal bool) bool {
	switch c.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTerminal
	}
}

// DefaultDir is where the configuration lives unless told otherwise.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, DefaultDirName)
	}
	return DefaultDirName
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration. It stores nothing on disk.
func Default() *Configuration {
	return defaultConfig()
}
