package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go-script-invoker/internal/invoker"
)

const usage = "Usage: runner <script_path> <input_path> <output_path>"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run validates the arguments and drives one invocation. A wrong
// argument count is reported on the diagnostic stream only — no output
// file is written, so the orchestrator can tell a usage error (file
// absent) from a content error (file holds __error).
func run(ctx context.Context, args []string, stderr io.Writer) int {
	if len(args) != 3 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	return invoker.New().Execute(ctx, args[0], args[1], args[2])
}
