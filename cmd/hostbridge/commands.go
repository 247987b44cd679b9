package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/scrtlabs/hostbridge/internal/runtime/db"
	"github.com/scrtlabs/hostbridge/internal/runtime/wasm"
	"github.com/scrtlabs/hostbridge/types"
)

func newStoreCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:     "store <wasm file>",
		Short:   "validate and store contract code, print its checksum",
		Args:    cobra.ExactArgs(1),
		Example: serverName + " store contract.wasm",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, *cfgFile)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			checksum, err := a.vm.StoreCode(ctx, code)
			if err != nil {
				return err
			}
			codes(a.store).Set(checksum[:], code)
			a.logger.Info().Stringer("checksum", checksum).Int("size", len(code)).Msg("code stored")
			fmt.Fprintln(cmd.OutOrStdout(), checksum)
			return nil
		},
	}
}

func newRemoveCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <checksum>",
		Short:   "delete stored code no contract runs",
		Args:    cobra.ExactArgs(1),
		Example: serverName + " remove <checksum>",
		RunE: func(cmd *cobra.Command, args []string) error {
			checksum, err := types.ParseChecksum(args[0])
			if err != nil {
				return fmt.Errorf("invalid checksum: %w", err)
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, *cfgFile)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if err := a.vm.RemoveCode(checksum); err != nil {
				return err
			}
			codes(a.store).Delete(checksum[:])
			a.logger.Info().Stringer("checksum", checksum).Msg("code removed")
			return nil
		},
	}
}

type runFlags struct {
	contract     string
	entry        string
	code         string
	msg          string
	sender       string
	height       uint64
	chainID      string
	gasLimit     uint64
	printMetrics bool
}

func newRunCmd(cfgFile *string) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "call a contract entry point against the local state",
		Example: serverName + " run --contract secret1... --entry instantiate --code <checksum> --msg '{}'\n" +
			serverName + " run --contract secret1... --entry query --msg '{\"count\":{}}'",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContract(cmd.Context(), *cfgFile, f, cmd.OutOrStdout())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.contract, "contract", "", "contract address")
	flags.StringVar(&f.entry, "entry", "execute", "entry point: instantiate, execute or query")
	flags.StringVar(&f.code, "code", "", "checksum of the code to instantiate")
	flags.StringVar(&f.msg, "msg", "{}", "message passed to the entry point")
	flags.StringVar(&f.sender, "sender", "", "message sender, defaults to the contract")
	flags.Uint64Var(&f.height, "height", 1, "block height")
	flags.StringVar(&f.chainID, "chain-id", "hostbridge-local", "chain id")
	flags.Uint64Var(&f.gasLimit, "gas-limit", 10_000_000, "gas limit of the call")
	flags.BoolVar(&f.printMetrics, "print-metrics", false, "print prometheus metrics after the call")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

type runOutput struct {
	Result  json.RawMessage `json:"result,omitempty"`
	Raw     []byte          `json:"raw,omitempty"`
	GasUsed uint64          `json:"gas_used"`
	Error   string          `json:"error,omitempty"`
}

func runContract(ctx context.Context, cfgFile string, f runFlags, out io.Writer) error {
	a, err := openApp(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	sender := f.sender
	if sender == "" {
		sender = f.contract
	}
	env := types.Env{
		Block: types.BlockInfo{
			Height:  f.height,
			Time:    types.Uint64(time.Now().UnixNano()),
			ChainID: f.chainID,
		},
		Message:  types.MessageInfo{Sender: sender},
		Contract: types.ContractInfo{Address: f.contract},
	}

	// writes are staged and only reach badger after a successful call
	staged := db.NewCacheStore(a.store)
	deps := wasm.Deps{Store: staged}

	var (
		result  []byte
		gasUsed uint64
	)
	switch f.entry {
	case wasm.EntryInstantiate.String():
		checksum, perr := types.ParseChecksum(f.code)
		if perr != nil {
			return fmt.Errorf("invalid --code: %w", perr)
		}
		result, gasUsed, err = a.vm.Instantiate(ctx, checksum, env, []byte(f.msg), deps, f.gasLimit)
		if err == nil {
			contracts(staged).Set([]byte(f.contract), checksum[:])
		}
	case wasm.EntryExecute.String():
		result, gasUsed, err = a.vm.Execute(ctx, env, []byte(f.msg), deps, f.gasLimit)
	case wasm.EntryQuery.String():
		result, gasUsed, err = a.vm.Query(ctx, env, []byte(f.msg), deps, f.gasLimit)
	default:
		return fmt.Errorf("unknown entry point %q", f.entry)
	}

	output := runOutput{GasUsed: gasUsed}
	if err != nil {
		staged.Discard()
		output.Error = err.Error()
	} else {
		a.logger.Debug().Int("writes", staged.Dirty()).Msg("committing state")
		staged.Commit()
		if json.Valid(result) {
			output.Result = result
		} else {
			output.Raw = result
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(output); encErr != nil {
		return encErr
	}
	if f.printMetrics {
		if mErr := writeMetrics(a, out); mErr != nil {
			return mErr
		}
	}
	return err
}

func writeMetrics(a *app, out io.Writer) error {
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

func newStateCmd(cfgFile *string) *cobra.Command {
	var contract string
	cmd := &cobra.Command{
		Use:     "state",
		Short:   "dump the storage of a contract",
		Example: serverName + " state --contract secret1...",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *cfgFile)
			if err != nil {
				return err
			}
			defer a.close(ctx)
			return dumpState(a, contract, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "contract address")
	_ = cmd.MarkFlagRequired("contract")
	return cmd
}

func dumpState(a *app, contract string, out io.Writer) error {
	checksum, ok := a.vm.Checksum(contract)
	if !ok {
		return fmt.Errorf("%w: %s", wasm.ErrUnknownContract, contract)
	}
	canonical, err := a.vm.Codec().Canonicalize(contract)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "contract %s code %s\n", contract, checksum)

	it := db.NewPrefixStore(a.store, db.ContractPrefix(canonical)).Iterator(nil, nil)
	defer it.Close()
	for ; it.Valid(); it.Next() {
		fmt.Fprintf(out, "%s = %s\n", hex.EncodeToString(it.Key()), hex.EncodeToString(it.Value()))
	}
	return it.Error()
}
