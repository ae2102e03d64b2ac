// Command beacond runs a single permissioned blockchain node: chaincode
// execution, column-organised storage, block/transaction validation and
// P2P gossip, wired together by beacon/node.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/beacon-network/beacon/log"
	"github.com/beacon-network/beacon/node"
)

const (
	nodeCategory      = "BEACON NODE"
	consensusCategory = "CONSENSUS"
	networkCategory   = "NETWORK"
	chaincodeCategory = "CHAINCODE"
	loggingCategory   = "LOGGING"
)

var (
	configFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "Path to a beacond.toml configuration file",
		Value:    "beacond.toml",
		Category: nodeCategory,
	}
	dataDirFlag = &cli.StringFlag{
		Name:     "datadir",
		Usage:    "Data directory for blocks, world state, transaction archive and keys",
		Category: nodeCategory,
	}
	blockIntervalFlag = &cli.DurationFlag{
		Name:     "block-interval",
		Usage:    "How often a validator attempts to propose a block",
		Value:    2 * time.Second,
		Category: consensusCategory,
	}
	isValidatorFlag = &cli.BoolFlag{
		Name:     "validator",
		Usage:    "Run this node as a block-producing validator",
		Category: consensusCategory,
	}
	validatorKeyFlag = &cli.StringFlag{
		Name:     "validator-key",
		Usage:    "Path to the 32-byte raw Ed25519 seed used to sign blocks",
		Category: consensusCategory,
	}
	listenAddrFlag = &cli.StringFlag{
		Name:     "listen-addr",
		Usage:    "host:port the P2P service listens on",
		Category: networkCategory,
	}
	bootstrapFlag = &cli.StringSliceFlag{
		Name:     "bootstrap",
		Usage:    "Bootstrap peer addresses (repeatable)",
		Category: networkCategory,
	}
	networkIDFlag = &cli.StringFlag{
		Name:     "network-id",
		Usage:    "Network identifier recorded in the genesis block",
		Category: networkCategory,
	}
	chaincodeDirFlag = &cli.StringFlag{
		Name:     "chaincode-grpc-addr",
		Usage:    "Address the chaincode bridge RPC server listens on",
		Category: chaincodeCategory,
	}
	verbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Log verbosity: 0=crit 1=error 2=warn 3=info 4=debug 5=trace",
		Value:    3,
		Category: loggingCategory,
	}
)

func main() {
	app := &cli.App{
		Name:    "beacond",
		Usage:   "permissioned blockchain node",
		Version: "0.1.0",
		Flags: []cli.Flag{
			configFlag, dataDirFlag,
			blockIntervalFlag, isValidatorFlag, validatorKeyFlag,
			listenAddrFlag, bootstrapFlag, networkIDFlag,
			chaincodeDirFlag,
			verbosityFlag,
		},
		Commands: []*cli.Command{
			initCmd,
		},
		Action: runNode,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "Generate a fresh validator key and exit",
	Flags: []cli.Flag{validatorKeyFlag},
	Action: func(c *cli.Context) error {
		path := c.String(validatorKeyFlag.Name)
		if path == "" {
			path = "validator.key"
		}
		if _, err := node.GenerateValidatorKey(path); err != nil {
			return err
		}
		fmt.Println("validator key written to", path)
		return nil
	},
}

func setupLogging(c *cli.Context) {
	lvl := log.LvlInfo
	switch c.Int(verbosityFlag.Name) {
	case 0:
		lvl = log.LvlCrit
	case 1:
		lvl = log.LvlError
	case 2:
		lvl = log.LvlWarn
	case 3:
		lvl = log.LvlInfo
	case 4:
		lvl = log.LvlDebug
	case 5:
		lvl = log.LvlTrace
	}
	log.Root().SetHandler(log.NewTermHandler(os.Stderr, lvl))
}

func loadConfig(c *cli.Context) (node.Config, error) {
	cfg := node.DefaultConfig()
	if path := c.String(configFlag.Name); path != "" {
		if _, err := os.Stat(path); err == nil {
			var err error
			cfg, err = node.LoadConfig(path)
			if err != nil {
				return cfg, err
			}
		}
	}

	if v := c.String(dataDirFlag.Name); v != "" {
		cfg.Node.DataDir = v
	}
	if c.Bool(isValidatorFlag.Name) {
		cfg.Consensus.IsValidator = true
	}
	if v := c.String(validatorKeyFlag.Name); v != "" {
		cfg.Security.ValidatorKey = v
	}
	if v := c.String(listenAddrFlag.Name); v != "" {
		cfg.Network.ListenAddr = v
	}
	if v := c.StringSlice(bootstrapFlag.Name); len(v) > 0 {
		cfg.Network.BootstrapPeers = v
	}
	if v := c.String(networkIDFlag.Name); v != "" {
		cfg.Network.NetworkID = v
	}
	if v := c.String(chaincodeDirFlag.Name); v != "" {
		cfg.Chaincode.GRPCAddr = v
	}
	if cfg.Node.ID == "" {
		cfg.Node.ID = defaultNodeID(cfg)
	}
	return cfg, nil
}

// defaultNodeID derives a stable node identity from the validator key when
// one is configured, otherwise falls back to the listen address.
func defaultNodeID(cfg node.Config) string {
	if cfg.Security.ValidatorKey == "" {
		return cfg.Network.ListenAddr
	}
	priv, err := node.LoadValidatorKey(cfg.Security.ValidatorKey)
	if err != nil {
		return cfg.Network.ListenAddr
	}
	pub, ok := priv.Public().(ed25519.PublicKey)
	if !ok {
		return cfg.Network.ListenAddr
	}
	return hex.EncodeToString(pub)
}

func runNode(c *cli.Context) error {
	setupLogging(c)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	n, err := node.New(cfg)
	if err != nil {
		return err
	}

	if len(cfg.Consensus.Validators) == 0 {
		log.Warn("no validators configured; this node cannot produce blocks")
	}

	n.Run(context.Background(), c.Duration(blockIntervalFlag.Name))
	n.Stop()
	return nil
}
