package main

import (
	"context"
	"os"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
