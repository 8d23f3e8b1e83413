// Command kysely-codegen generates Kysely type definitions from a database.
package main

import (
	"os"

	"github.com/rowan-gud/kysely-codegen/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
