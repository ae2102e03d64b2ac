// Package node implements C10: the orchestrator that wires C2 through C9
// together, runs the submit/commit/query surface, and owns the process
// lifecycle.
package node

import (
	"os"
	"time"

	"github.com/naoina/toml"

	"github.com/beacon-network/beacon/common"
	beaconerrors "github.com/beacon-network/beacon/errors"
)

// Config is the on-disk node configuration, matching the recognised option
// table: node.*, network.*, consensus.*, storage.*, chaincode.*,
// security.*.
type Config struct {
	Node struct {
		ID      string `toml:"id"`
		DataDir string `toml:"data_dir"`
	} `toml:"node"`

	Network struct {
		ListenAddr     string   `toml:"listen_addr"`
		BootstrapPeers []string `toml:"bootstrap_peers"`
		MaxConnections int      `toml:"max_connections"`
		NetworkID      string   `toml:"network_id"`
	} `toml:"network"`

	Consensus struct {
		IsValidator bool     `toml:"is_validator"`
		Validators  []string `toml:"validators"`
	} `toml:"consensus"`

	Storage struct {
		CacheSizeMB      int `toml:"cache_size_mb"`
		WriteBufferSizeMB int `toml:"write_buffer_size_mb"`
		MaxOpenFiles     int `toml:"max_open_files"`
	} `toml:"storage"`

	Chaincode struct {
		GRPCAddr            string `toml:"grpc_addr"`
		ExecutionTimeoutSec int    `toml:"execution_timeout_sec"`
		MaxConcurrent       int    `toml:"max_concurrent"`
	} `toml:"chaincode"`

	Security struct {
		ValidatorKey string `toml:"validator_key"`
	} `toml:"security"`
}

// DefaultConfig mirrors the defaults named throughout spec.md §4 and §6.
func DefaultConfig() Config {
	var c Config
	c.Node.DataDir = "./data"
	c.Network.ListenAddr = "0.0.0.0:30303"
	c.Network.MaxConnections = 50
	c.Network.NetworkID = "beacon_devnet"
	c.Storage.CacheSizeMB = 64
	c.Storage.WriteBufferSizeMB = 16
	c.Storage.MaxOpenFiles = 256
	c.Chaincode.ExecutionTimeoutSec = 10
	c.Chaincode.MaxConcurrent = 4
	return c
}

// LoadConfig reads and parses a TOML configuration file, starting from
// DefaultConfig so an option absent from the file keeps its default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, beaconerrors.Wrap(beaconerrors.Config, err)
	}
	defer f.Close()
	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, beaconerrors.Wrap(beaconerrors.Config, err)
	}
	return cfg, nil
}

func (c Config) executionTimeout() time.Duration {
	return time.Duration(c.Chaincode.ExecutionTimeoutSec) * time.Second
}

func (c Config) validatorIDs() []common.ValidatorId {
	out := make([]common.ValidatorId, len(c.Consensus.Validators))
	for i, v := range c.Consensus.Validators {
		out[i] = common.ValidatorId(v)
	}
	return out
}
