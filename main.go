package main

import (
	"os"

	"github.com/thenoetrevino/nutriboard/cmd"
	"github.com/thenoetrevino/nutriboard/internal/launcher"
)

func main() {
	os.Exit(launcher.Launch(cmd.NewRootCmd()))
}
