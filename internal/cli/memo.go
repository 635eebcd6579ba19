package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	apperrors "github.com/memodesk/memodesk/internal/errors"
	"github.com/memodesk/memodesk/internal/memo"
)

var (
	memoJSON    bool
	memoTitle   string
	memoContent string
)

var memoCmd = &cobra.Command{
	Use:   "memo",
	Short: "Create, read, update, delete and search memos",
	Long: `Work with memos in the local store.

Examples:
  memodesk memo create -t "Groceries" -c "milk, eggs"
  echo "long body" | memodesk memo create -t "Notes" -c -
  memodesk memo list --json
  memodesk memo search eggs
  memodesk memo update 3 -t "Groceries" -c "milk, eggs, bread"
  memodesk memo delete 3`,
}

var memoCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a memo",
	Args:  cobra.NoArgs,
	RunE:  runMemoCreate,
}

var memoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memos, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runMemoList,
}

var memoGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one memo",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoGet,
}

var memoUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Replace a memo's title and content",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoUpdate,
}

var memoDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a memo",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoDelete,
}

var memoSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find memos whose title or content contains the query",
	Args:  cobra.ExactArgs(1),
	RunE:  runMemoSearch,
}

var memoStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show memo count and database location",
	Args:  cobra.NoArgs,
	RunE:  runMemoStats,
}

func init() {
	memoCmd.PersistentFlags().BoolVar(&memoJSON, "json", false, "output as JSON")

	for _, c := range []*cobra.Command{memoCreateCmd, memoUpdateCmd} {
		c.Flags().StringVarP(&memoTitle, "title", "t", "", "memo title")
		c.Flags().StringVarP(&memoContent, "content", "c", "", "memo content (- reads stdin)")
		_ = c.MarkFlagRequired("title")
	}

	memoCmd.AddCommand(memoCreateCmd)
	memoCmd.AddCommand(memoListCmd)
	memoCmd.AddCommand(memoGetCmd)
	memoCmd.AddCommand(memoUpdateCmd)
	memoCmd.AddCommand(memoDeleteCmd)
	memoCmd.AddCommand(memoSearchCmd)
	memoCmd.AddCommand(memoStatsCmd)
}

// withService opens the store for the duration of fn.
func withService(fn func(svc *memo.Service) error) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a.svc)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, apperrors.Newf(apperrors.CodeInvalidInput, "invalid memo id: %q", arg)
	}
	return id, nil
}

func readContent(cmd *cobra.Command) (string, error) {
	if memoContent != "-" {
		return memoContent, nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read content from stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMemo(w io.Writer, m *memo.Memo) {
	fmt.Fprintf(w, "#%d  %s\n", m.IDValue(), m.Title)
	fmt.Fprintf(w, "   Created: %s\n", m.CreatedAt)
	fmt.Fprintf(w, "   Updated: %s\n", m.UpdatedAt)
	if m.Content != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, m.Content)
	}
}

func printMemoList(w io.Writer, memos []*memo.Memo) {
	if len(memos) == 0 {
		fmt.Fprintln(w, "No memos found.")
		return
	}
	for _, m := range memos {
		fmt.Fprintf(w, "#%-5d %-40s %s\n", m.IDValue(), truncate(m.Title, 40), since(m))
	}
}

// since renders UpdatedAt relative to now, e.g. "3 minutes ago".
func since(m *memo.Memo) string {
	t, err := m.Updated()
	if err != nil {
		return m.UpdatedAt
	}
	return humanize.Time(t)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func runMemoCreate(cmd *cobra.Command, _ []string) error {
	content, err := readContent(cmd)
	if err != nil {
		return err
	}
	return withService(func(svc *memo.Service) error {
		m, err := svc.Create(memo.CreateRequest{Title: memoTitle, Content: content})
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), m)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created memo #%d\n", m.IDValue())
		return nil
	})
}

func runMemoList(cmd *cobra.Command, _ []string) error {
	return withService(func(svc *memo.Service) error {
		memos, err := svc.List()
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), memos)
		}
		printMemoList(cmd.OutOrStdout(), memos)
		return nil
	})
}

func runMemoGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withService(func(svc *memo.Service) error {
		m, err := svc.Get(id)
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), m)
		}
		if m == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Memo #%d not found.\n", id)
			return nil
		}
		printMemo(cmd.OutOrStdout(), m)
		return nil
	})
}

func runMemoUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	content, err := readContent(cmd)
	if err != nil {
		return err
	}
	return withService(func(svc *memo.Service) error {
		m, err := svc.Update(memo.UpdateRequest{ID: id, Title: memoTitle, Content: content})
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), m)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated memo #%d\n", m.IDValue())
		return nil
	})
}

func runMemoDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withService(func(svc *memo.Service) error {
		deleted, err := svc.Delete(id)
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"id": id, "deleted": deleted})
		}
		if deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted memo #%d\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Memo #%d not found, nothing deleted.\n", id)
		}
		return nil
	})
}

func runMemoSearch(cmd *cobra.Command, args []string) error {
	return withService(func(svc *memo.Service) error {
		memos, err := svc.Search(args[0])
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), memos)
		}
		printMemoList(cmd.OutOrStdout(), memos)
		return nil
	})
}

func runMemoStats(cmd *cobra.Command, _ []string) error {
	return withService(func(svc *memo.Service) error {
		st, err := svc.Stats()
		if err != nil {
			return err
		}
		if memoJSON {
			return printJSON(cmd.OutOrStdout(), st)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Memos:    %d\n", st.TotalMemos)
		fmt.Fprintf(w, "Database: %s\n", st.DatabasePath)
		fmt.Fprintf(w, "Size:     %s\n", humanize.Bytes(uint64(st.DatabaseSize)))
		return nil
	})
}
