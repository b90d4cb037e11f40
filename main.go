package main

import (
	"os"

	"github.com/twistlock-tools/twistq/cmd"
)

func main() {
	cmd.Execute(os.Args[1:])
}
