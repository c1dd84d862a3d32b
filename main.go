// main.go
package main

import (
	"context"
	"fmt"
	"os"
)

// Version is set at build time
var Version = "dev"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
