// Command doclens indexes and searches plain-text document corpora,
// blending BM25 keyword retrieval with entity-based metadata filtering.
package main

import (
	"os"

	"github.com/doclens/doclens/cmd/doclens/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
