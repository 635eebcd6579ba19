package main

import (
	"fmt"
	"os"

	"github.com/memodesk/memodesk/internal/cli"
	apperrors "github.com/memodesk/memodesk/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if sug := apperrors.Suggestion(err); sug != "" {
			fmt.Fprintln(os.Stderr, "  →", sug)
		}
		os.Exit(1)
	}
}
