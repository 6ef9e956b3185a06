// ncclreplay - NCCL/RCCL log to benchmark script converter
//
// ncclreplay reads the collective-call lines NCCL and RCCL print with
// NCCL_DEBUG=INFO and writes the nccl-tests commands that reproduce them.
package main

import (
	"os"

	"github.com/ccollicutt/ncclreplay/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
