package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wasmigo/wasmi"
	"github.com/wasmigo/wasmi/api"
)

type runParams struct {
	fuel         int64
	invoke       string
	precompile   string
	fromCompiled bool
}

func newRunCmd() *cobra.Command {
	p := &runParams{}
	cmd := &cobra.Command{
		Use:   "run MODULE [ARGS...]",
		Short: "Instantiate a module and invoke an exported function",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(p, args[0], args[1:])
		},
	}
	cmd.Flags().SortFlags = false
	cmd.Flags().AddFlagSet(runFlagSet(p))
	return cmd
}

func runFlagSet(p *runParams) *pflag.FlagSet {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.Int64Var(&p.fuel, "fuel", 0, "fuel budget for this execution; 0 disables metering")
	flags.StringVar(&p.invoke, "invoke", "", "exported function to call (defaults to the module's start function only)")
	flags.StringVar(&p.precompile, "precompile", "", "write the module's serialized (spec.md §6) form to this path instead of running it")
	flags.BoolVar(&p.fromCompiled, "from-precompiled", false, "treat MODULE as a serialized module produced by --precompile")
	return flags
}

func runRun(p *runParams, modulePath string, argStrs []string) error {
	data, err := os.ReadFile(modulePath)
	if err != nil {
		return err
	}

	cfg := wasmi.NewRuntimeConfig().WithFuelConsumption(p.fuel > 0)
	rt := wasmi.NewRuntime(cfg)

	var cm *wasmi.CompiledModule
	if p.fromCompiled {
		cm, err = rt.DeserializeModule(data)
	} else {
		cm, err = rt.CompileModule(context.Background(), data)
	}
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if p.precompile != "" {
		out, err := cm.Serialize()
		if err != nil {
			return fmt.Errorf("serialize: %w", err)
		}
		return os.WriteFile(p.precompile, out, 0o644)
	}

	st := rt.NewStore()
	inst, err := rt.NewLinker().Instantiate(context.Background(), st, cm)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	if p.fuel > 0 {
		if err := inst.AddFuel(uint64(p.fuel)); err != nil {
			return err
		}
	}

	if p.invoke == "" {
		return nil
	}
	fn := inst.ExportedFunction(p.invoke)
	if fn == nil {
		return fmt.Errorf("no exported function %q", p.invoke)
	}
	sig := fn.Type()
	if len(argStrs) != len(sig.Params) {
		return fmt.Errorf("%s expects %d argument(s), got %d", p.invoke, len(sig.Params), len(argStrs))
	}
	args := make([]uint64, len(argStrs))
	for i, s := range argStrs {
		v, err := encodeArg(sig.Params[i], s)
		if err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}

	results, err := fn.Call(context.Background(), args...)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Println(decodeResult(sig.Results[i], r))
	}
	if p.fuel > 0 {
		if consumed, ok := inst.FuelConsumed(); ok {
			fmt.Fprintf(os.Stderr, "fuel consumed: %d\n", consumed)
		}
	}
	return nil
}

func encodeArg(t api.ValueType, s string) (uint64, error) {
	switch t {
	case api.ValueTypeI32:
		v, err := strconv.ParseInt(s, 10, 32)
		return api.EncodeI32(int32(v)), err
	case api.ValueTypeI64:
		v, err := strconv.ParseInt(s, 10, 64)
		return uint64(v), err
	case api.ValueTypeF32:
		v, err := strconv.ParseFloat(s, 32)
		return api.EncodeF32(float32(v)), err
	case api.ValueTypeF64:
		v, err := strconv.ParseFloat(s, 64)
		return api.EncodeF64(v), err
	default:
		v, err := strconv.ParseUint(s, 10, 64)
		return v, err
	}
}

func decodeResult(t api.ValueType, v uint64) string {
	switch t {
	case api.ValueTypeI32:
		return strconv.FormatInt(int64(api.DecodeI32(v)), 10)
	case api.ValueTypeI64:
		return strconv.FormatInt(int64(v), 10)
	case api.ValueTypeF32:
		return strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
	case api.ValueTypeF64:
		return strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
	default:
		return strconv.FormatUint(v, 10)
	}
}
