package main

import (
	"os"

	"github.com/simaogato/fundmetrics-backend/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
