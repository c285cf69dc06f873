package main

import (
	"os"

	"github.com/sadopc/studyplan/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
