// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/iwvelando/givewise/internal/estimate"
	"github.com/iwvelando/givewise/pkg/constants"
	"github.com/iwvelando/givewise/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for givewise.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty" mapstructure:"logging"`
	Output   OutputConfig   `yaml:"output,omitempty" mapstructure:"output"`
	Defaults DefaultsConfig `yaml:"defaults,omitempty" mapstructure:"defaults"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// DefaultsConfig holds the calculator inputs used when the CLI flags or API
// request leave them out.
type DefaultsConfig struct {
	Amount           float64 `yaml:"amount" mapstructure:"amount"`
	Province         string  `yaml:"province" mapstructure:"province"`
	Income           float64 `yaml:"income" mapstructure:"income"`
	GiftType         string  `yaml:"giftType" mapstructure:"giftType"`
	AdjustedCostBase float64 `yaml:"adjustedCostBase" mapstructure:"adjustedCostBase"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("defaults.amount", constants.DefaultAmount)
	v.SetDefault("defaults.province", constants.DefaultProvince)
	v.SetDefault("defaults.income", constants.DefaultIncome)
	v.SetDefault("defaults.giftType", constants.DefaultGiftType)
	v.SetDefault("defaults.adjustedCostBase", constants.DefaultAdjustedCostBase)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A missing file yields the defaults; environment
// variables prefixed with GIVEWISE_ override either.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("error reading config file, %w", err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if err := validation.ValidateOutputFormat(configuration.Output.Format); err != nil {
		return nil, err
	}
	if _, err := estimate.ParseGiftType(configuration.Defaults.GiftType); err != nil {
		return nil, fmt.Errorf("invalid defaults.giftType: %w", err)
	}
	return &configuration, nil
}

// DefaultInput converts the configured defaults into calculator input.
func (c *Configuration) DefaultInput() estimate.Input {
	// decode has already checked the gift type.
	giftType, _ := estimate.ParseGiftType(c.Defaults.GiftType)
	return estimate.Input{
		Amount:           c.Defaults.Amount,
		Province:         c.Defaults.Province,
		Income:           c.Defaults.Income,
		GiftType:         giftType,
		AdjustedCostBase: c.Defaults.AdjustedCostBase,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, err.Error())
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		warnings = append(warnings, err.Error())
	}
	for _, w := range estimate.Validate(c.DefaultInput()) {
		warnings = append(warnings, "defaults: "+w)
	}
	return warnings
}
