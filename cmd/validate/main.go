package main

import (
	"fmt"
	"os"
)

func main() {
	dataDir := "./data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	validator := &ContentValidator{}
	if err := validator.ValidateDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Content in %s is valid! (%d acts)\n", dataDir, validator.acts)
}
