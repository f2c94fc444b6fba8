package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

const wocVersion = "woc 0.1.0"

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "Print the woc version" }
func (*versionCmd) Usage() string            { return "version:\n  Print the compiler version and exit.\n" }
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println(wocVersion)
	return subcommands.ExitSuccess
}
