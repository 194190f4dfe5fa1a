// This program performs administrative tasks against a node's block journal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/ledger/app/tooling/admin/commands"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/ledger/foundation/keystore"
	"github.com/ardanlabs/ledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Args       conf.Args
		DBPath     string `conf:"default:zblock/blocks/"`
		KeysFolder string `conf:"default:zblock/keys/"`
		Difficulty uint16 `conf:"default:2"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Journal Support

	strg, err := disk.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer strg.Close()

	blocks, err := database.ReadAll(strg)
	if err != nil {
		return fmt.Errorf("reading journal: %w", err)
	}

	ks, err := keystore.New(cfg.KeysFolder)
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	return processCommands(cfg.Args, blocks, ks, cfg.Difficulty)
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(args conf.Args, blocks []database.Block, v database.Verifier, difficulty uint16) error {
	switch args.Num(0) {
	case "bals":
		if err := commands.Balances(os.Stdout, blocks, database.AccountID(args.Num(1))); err != nil {
			return fmt.Errorf("getting balances: %w", err)
		}

	case "blocks":
		if err := commands.Blocks(os.Stdout, blocks, database.AccountID(args.Num(1))); err != nil {
			return fmt.Errorf("getting blocks: %w", err)
		}

	case "validate":
		if err := commands.Validate(os.Stdout, blocks, v, difficulty); err != nil {
			return fmt.Errorf("validating chain: %w", err)
		}

	default:
		fmt.Println("bals [account]: print the balance of every account or the one specified")
		fmt.Println("blocks [account]: print the blocks holding transactions for the account")
		fmt.Println("validate: check the integrity of the journal")
		fmt.Println("provide a command to get more help.")
		return commands.ErrHelp
	}

	return nil
}
