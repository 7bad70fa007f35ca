// Command shelf serves and edits a local catalogue of development projects.
package main

import (
	"os"

	"github.com/mesh-intelligence/shelf/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
