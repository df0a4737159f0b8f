/*
Package config contains the client configuration loaded from YAML files.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vne-network/priceoracle-go/pkg/chainrpc/result"
	"github.com/vne-network/priceoracle-go/pkg/deployments"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is the default path to the config file.
	DefaultConfigPath = "./config/priceoracle.yml"
	// DefaultEndpoint is the default node endpoint.
	DefaultEndpoint = "ws://127.0.0.1:9944"
	// DefaultDeploymentsPath is the default deployment registry location.
	DefaultDeploymentsPath = "./chains/deployments.db"
)

type (
	// Config is the top level struct representing the client configuration.
	Config struct {
		RPC         RPC                 `yaml:"RPC"`
		Wallet      Wallet              `yaml:"Wallet"`
		Limits      Limits              `yaml:"Limits"`
		Contract    Contract            `yaml:"Contract"`
		Deployments deployments.Options `yaml:"Deployments"`
		Logger      Logger              `yaml:"Logger"`
		Prometheus  BasicService        `yaml:"Prometheus"`
		Pprof       BasicService        `yaml:"Pprof"`
	}

	// RPC is the node connection configuration.
	RPC struct {
		Endpoint       string        `yaml:"Endpoint"`
		DialTimeout    time.Duration `yaml:"DialTimeout"`
		RequestTimeout time.Duration `yaml:"RequestTimeout"`
	}

	// Wallet points to the keystore file used for signing. The password
	// is prompted for if not set here.
	Wallet struct {
		Path     string `yaml:"Path"`
		Password string `yaml:"Password"`
	}

	// Limits are contract call resource limits, both gas limit components
	// are mandatory. An empty StorageDepositLimit means no limit.
	Limits struct {
		RefTime             uint64 `yaml:"RefTime"`
		ProofSize           uint64 `yaml:"ProofSize"`
		StorageDepositLimit string `yaml:"StorageDepositLimit"`
	}

	// Contract is the default contract to work with.
	Contract struct {
		// Metadata is a path to ink! metadata (.json or .contract).
		Metadata string `yaml:"Metadata"`
		// Address of the deployed contract, the latest deployment from the
		// registry is used if empty.
		Address string `yaml:"Address"`
	}

	// Logger contains logger configuration.
	Logger struct {
		LogEncoding string `yaml:"LogEncoding"`
		LogLevel    string `yaml:"LogLevel"`
		LogPath     string `yaml:"LogPath"`
	}
)

// Default returns the configuration used when there is no config file.
func Default() Config {
	return Config{
		RPC: RPC{
			Endpoint:       DefaultEndpoint,
			DialTimeout:    4 * time.Second,
			RequestTimeout: 4 * time.Second,
		},
		Deployments: deployments.Options{FilePath: DefaultDeploymentsPath},
		Logger: Logger{
			LogEncoding: "console",
			LogLevel:    "info",
		},
	}
}

// Load attempts to load the config from the given path, missing values are
// taken from Default. Unknown fields are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadOrDefault loads the config from the path if the file exists and
// returns Default otherwise.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.RPC.DialTimeout < 0 || c.RPC.RequestTimeout < 0 {
		return errors.New("RPC: negative timeout")
	}
	if _, err := c.Limits.Result(); err != nil && !errors.Is(err, result.ErrNoLimits) {
		return fmt.Errorf("Limits: %w", err)
	}
	switch c.Logger.LogEncoding {
	case "", "console", "json":
	default:
		return fmt.Errorf("Logger: unknown encoding %q", c.Logger.LogEncoding)
	}
	return nil
}

// Result converts the limits into call limits, it fails with
// result.ErrNoLimits if gas limits are not set.
func (l Limits) Result() (result.Limits, error) {
	res := result.Limits{GasLimit: result.Weight{RefTime: l.RefTime, ProofSize: l.ProofSize}}
	if l.StorageDepositLimit != "" {
		u, err := result.ParseBalance(l.StorageDepositLimit)
		if err != nil {
			return res, fmt.Errorf("storage deposit limit: %w", err)
		}
		res.StorageDepositLimit = u
	}
	return res, res.Validate()
}
