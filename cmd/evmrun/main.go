// Command evmrun runs a single call against an in-memory account, printing
// its result. It is glue, not a node: everything it does is build a
// Transaction/Environment/State triple from flags and hand it to
// vm.RunTransaction.
//
// Usage:
//
//	evmrun --code <hex> [--calldata <hex>] [--from <addr>] [--to <addr>]
//	       [--value <wei>] [--verbosity 0-5]
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"

	"github.com/eth2030/evmcore/core/state"
	"github.com/eth2030/evmcore/core/types"
	"github.com/eth2030/evmcore/core/vm"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code; kept separate from
// main so it is testable without touching the process's argv/exit.
func run(args []string) int {
	fs := flag.NewFlagSet("evmrun", flag.ContinueOnError)

	code := fs.String("code", "", "hex-encoded bytecode to run at --to")
	calldata := fs.String("calldata", "", "hex-encoded calldata")
	from := fs.String("from", "0x0000000000000000000000000000000000000001", "sender address")
	to := fs.String("to", "0x0000000000000000000000000000000000000002", "recipient/callee address")
	value := fs.Uint64("value", 0, "value to transfer, in wei")
	verbosity := fs.Int("verbosity", 3, "log level 0-5 (0=silent, 5=trace)")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if *showVersion {
		fmt.Printf("evmrun %s (commit %s)\n", version, commit)
		return 0
	}

	setupLogging(*verbosity)

	codeBytes, err := decodeHex(*code)
	if err != nil {
		ethlog.Error("invalid --code", "err", err)
		return 1
	}
	dataBytes, err := decodeHex(*calldata)
	if err != nil {
		ethlog.Error("invalid --calldata", "err", err)
		return 1
	}

	fromAddr := types.HexToAddress(*from)
	toAddr := types.HexToAddress(*to)

	accounts := map[types.Address]types.Account{
		fromAddr: types.NewExternallyOwnedAccount(uint256.NewInt(1 << 32)),
		toAddr:   types.NewContractAccount(new(uint256.Int), codeBytes),
	}
	st := state.New(accounts)

	env := &vm.Environment{
		Caller:        fromAddr,
		BlockHashes:   map[uint64]types.Hash{},
		Number:        1,
		BaseFeePerGas: new(uint256.Int),
		GasLimit:      30_000_000,
		GasPrice:      new(uint256.Int),
		Time:          0,
		Difficulty:    new(uint256.Int),
		ChainID:       uint256.NewInt(1),
	}

	tx := vm.Transaction{
		From:  fromAddr,
		To:    &toAddr,
		Value: uint256.NewInt(*value),
		Data:  dataBytes,
	}

	ethlog.Info("running transaction", "from", fromAddr.Hex(), "to", toAddr.Hex(), "value", *value)

	result, err := vm.RunTransaction(tx, env, st)
	if err != nil {
		ethlog.Error("could not run transaction", "err", err)
		return 1
	}

	fmt.Printf("success:     %v\n", result.Success)
	fmt.Printf("return data: 0x%x\n", result.ReturnData)
	fmt.Printf("stack (top first):\n")
	for i, w := range result.Stack {
		fmt.Printf("  [%d] 0x%x\n", i, w.ToBig())
	}
	for i, l := range result.Logs {
		fmt.Printf("log[%d]: address=%s topics=%d data=0x%x\n", i, l.Address.Hex(), len(l.Topics), l.Data)
	}

	if !result.Success {
		return 1
	}
	return 0
}

// decodeHex strips an optional 0x prefix and decodes the remainder; an empty
// string decodes to nil.
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}

func setupLogging(verbosity int) {
	var lvl slog.Level
	switch {
	case verbosity <= 0:
		lvl = ethlog.LevelCrit
	case verbosity == 1:
		lvl = slog.LevelError
	case verbosity == 2:
		lvl = slog.LevelWarn
	case verbosity == 3:
		lvl = slog.LevelInfo
	case verbosity == 4:
		lvl = slog.LevelDebug
	default:
		lvl = ethlog.LevelTrace
	}
	ethlog.SetDefault(ethlog.NewLogger(ethlog.NewTerminalHandlerWithLevel(os.Stderr, lvl, true)))
}
