// Package config defines the plan configuration and includes functions for
// loading it and converting it into targeting requests.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/iwvelando/lever-planner/internal/offices"
	"github.com/iwvelando/lever-planner/pkg/constants"
	"github.com/iwvelando/lever-planner/pkg/validation"
)

// Configuration holds all configuration for a lever planning session.
type Configuration struct {
	Logging      LoggingConfig   `yaml:"logging,omitempty" mapstructure:"logging"`
	Output       OutputConfig    `yaml:"output,omitempty" mapstructure:"output"`
	Backend      BackendConfig   `yaml:"backend,omitempty" mapstructure:"backend"`
	Planner      PlannerConfig   `yaml:"planner,omitempty" mapstructure:"planner"`
	Offices      []OfficeConfig  `yaml:"offices,omitempty" mapstructure:"offices"`
	OfficesFile  string          `yaml:"officesFile,omitempty" mapstructure:"officesFile"`
	BaselineFile string          `yaml:"baselineFile,omitempty" mapstructure:"baselineFile"`
	Requests     []RequestConfig `yaml:"requests,omitempty" mapstructure:"requests"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, json, yaml
}

// BackendConfig locates the simulation backend. An empty URL means the plan
// runs offline from OfficesFile/Offices and BaselineFile.
type BackendConfig struct {
	URL               string  `yaml:"url,omitempty" mapstructure:"url"`
	BaselinePath      string  `yaml:"baselinePath,omitempty" mapstructure:"baselinePath"`
	TimeoutSeconds    int     `yaml:"timeoutSeconds,omitempty" mapstructure:"timeoutSeconds"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty" mapstructure:"requestsPerSecond"`
}

// PlannerConfig tunes how the matrix is seeded and exported.
type PlannerConfig struct {
	SeedRole string   `yaml:"seedRole,omitempty" mapstructure:"seedRole"`
	Roles    []string `yaml:"roles,omitempty" mapstructure:"roles"`
}

// OfficeConfig describes an office inline when no offices file is used.
type OfficeConfig struct {
	Name     string  `yaml:"name" mapstructure:"name"`
	TotalFTE float64 `yaml:"totalFte" mapstructure:"totalFte"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("backend.baselinePath", constants.DefaultBaselinePath)
	v.SetDefault("backend.timeoutSeconds", constants.DefaultBackendTimeoutSeconds)
	v.SetDefault("backend.requestsPerSecond", constants.DefaultBackendRequestsPerSecond)
	v.SetDefault("planner.seedRole", constants.DefaultSeedRole)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// OfficeList returns the offices of an offline plan. An offices file in the
// /offices/config format takes precedence over inline offices.
func (conf *Configuration) OfficeList() ([]offices.Office, error) {
	if conf.OfficesFile != "" {
		data, err := os.ReadFile(conf.OfficesFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read offices file %s: %w", conf.OfficesFile, err)
		}
		return offices.Parse(data)
	}

	list := make([]offices.Office, 0, len(conf.Offices))
	for _, o := range conf.Offices {
		list = append(list, offices.Office{
			Name:  o.Name,
			Roles: []offices.Role{{Name: "Total", Kind: offices.Flat, FTE: o.TotalFTE}},
		})
	}
	return list, nil
}

// BaselineData returns the raw baseline file contents, or nil when no
// baseline file is configured.
func (conf *Configuration) BaselineData() ([]byte, error) {
	if conf.BaselineFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(conf.BaselineFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file %s: %w", conf.BaselineFile, err)
	}
	return data, nil
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Nothing here is fatal; conversion errors surface later
// from Requests.
func (conf *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if conf.Backend.URL == "" && conf.OfficesFile == "" && len(conf.Offices) == 0 {
		warnings = append(warnings, "No backend URL, offices file or inline offices configured - every request will select nothing")
	}

	known := make([]string, 0, len(conf.Offices))
	seen := make(map[string]bool)
	for _, o := range conf.Offices {
		if seen[o.Name] {
			warnings = append(warnings, fmt.Sprintf("Office '%s' is listed more than once", o.Name))
		}
		seen[o.Name] = true
		known = append(known, o.Name)
	}
	if conf.OfficesFile != "" || conf.Backend.URL != "" {
		// Office names are only known once the file or backend is read.
		known = nil
	}

	for i, rc := range conf.Requests {
		warnings = append(warnings, rc.Warnings(i, known)...)
	}
	return warnings
}

// Warnings returns non-fatal problems with a single request. known may be
// nil when office names are not yet available.
func (rc RequestConfig) Warnings(index int, known []string) []string {
	return validation.ValidateRequest(validation.RequestInfo{
		Name:            rc.DisplayName(index),
		LeverTypes:      rc.LeverTypes,
		Levels:          rc.Levels,
		CumulativeValue: rc.CumulativeValue,
		Period:          rc.Period,
		ReferenceMonth:  rc.ReferenceMonth,
		OfficeNames:     rc.Offices.Names,
	}, known)
}
