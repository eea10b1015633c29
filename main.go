package main

import (
	"os"

	"github.com/alantheprice/goalview/cmd"
	"github.com/alantheprice/goalview/pkg/utils"
)

func main() {
	err := cmd.Execute()

	logger := utils.GetLogger()
	if err != nil {
		logger.LogError(err)
	}
	// The logger may be the thing that failed, so report on stderr.
	if cerr := logger.Close(); cerr != nil {
		os.Stderr.WriteString("Error closing logger: " + cerr.Error() + "\n")
	}
	if err != nil {
		os.Exit(1)
	}
}
