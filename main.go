package main

import (
	"github.com/devflowhq/devflow/cmd"
	"github.com/devflowhq/devflow/internal/logger"
)

func main() {
	defer logger.HandlePanic()
	cmd.Execute()
}
