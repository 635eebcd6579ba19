package cli

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/memodesk/memodesk/internal/appdir"
	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/memo"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check environment and storage",
	Long:  "Validate that the configuration loads, the data directory is writable and the memo database opens.",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "memodesk doctor: checking your environment")
	fmt.Fprintln(w)
	allOK := true

	fail := func(label string, err error) {
		fmt.Fprintf(w, "  %-11s FAILED (%v) ✗\n", label, err)
		if sug := apperrors.Suggestion(err); sug != "" {
			fmt.Fprintf(w, "    → %s\n", sug)
		}
		allOK = false
	}

	// 1. Go version
	fmt.Fprintf(w, "  Go version: %s ✓\n", runtime.Version())

	// 2. OS/Arch
	fmt.Fprintf(w, "  Platform:   %s/%s ✓\n", runtime.GOOS, runtime.GOARCH)

	// 3. Configuration
	cfg, err := loadConfig()
	if err != nil {
		fail("Config:", err)
	} else {
		fmt.Fprintf(w, "  Config:     %s v%s (driver %s) ✓\n", cfg.Name, cfg.Version, cfg.Storage.Driver)
	}

	// 4. Data directory
	if cfg != nil && cfg.Storage.Driver != "memory" {
		if dir, err := appdir.Resolve(cfg.Storage.DataDir); err != nil {
			fail("Data dir:", err)
		} else {
			fmt.Fprintf(w, "  Data dir:   %s ✓\n", dir)
		}
	}

	// 5. Memo database
	if cfg != nil {
		backend, err := memo.OpenBackend(cfg.Storage)
		if err != nil {
			fail("Database:", err)
		} else {
			st, err := backend.Stats()
			backend.Close()
			if err != nil {
				fail("Database:", err)
			} else {
				fmt.Fprintf(w, "  Database:   %s (%d memos, %s) ✓\n", st.DatabasePath, st.TotalMemos, humanize.Bytes(uint64(st.DatabaseSize)))
			}
		}
	}

	// 6. Hooks
	if cfg != nil && cfg.Hooks.Enabled {
		for _, h := range cfg.Hooks.Hooks {
			if h.Type != "shell" {
				continue
			}
			if _, err := exec.LookPath("sh"); err != nil {
				fmt.Fprintf(w, "  Hook %s: sh NOT FOUND ✗\n", h.Name)
				allOK = false
			}
		}
		fmt.Fprintf(w, "  Hooks:      %d configured ✓\n", len(cfg.Hooks.Hooks))
	}

	fmt.Fprintln(w)
	if allOK {
		fmt.Fprintln(w, "All checks passed!")
	} else {
		fmt.Fprintln(w, "Some checks failed. See above for details.")
	}

	return nil
}
