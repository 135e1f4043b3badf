package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/danmar/cppcheck-sub017/internal/analyzer"
	"github.com/danmar/cppcheck-sub017/internal/fileutil"
	"github.com/danmar/cppcheck-sub017/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	flagAll        bool
	flagStyle      bool
	flagErrorsOnly bool
	flagRecursive  bool
)

var rootCmd = &cobra.Command{
	Use:   "cppcheck [flags] [PATH ...]",
	Short: "A static analyzer for C and C++ source",
	Long: `cppcheck is a single-pass static analyzer for C and C++ source files.

It reduces a translation unit to a uniform token stream and runs a
fixed battery of bug-pattern checks - memory leaks, buffer overruns,
class-invariant violations, dangerous library usage, style issues -
emitting diagnostics pinned to source locations.

Without --recursive, PATH arguments are treated as explicit file
paths. With --recursive, each PATH is searched for .c/.cc/.cpp files.`,
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCheck,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd prints the same Version/GitCommit/BuildDate build-flag
// trio as rootCmd's own --version template, for callers that want it
// as a subcommand rather than a flag.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cppcheck version %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.Flags().BoolVar(&flagAll, "all", false, `enable "show-all" mode (wider leak-reduction guard set, strlen-only dynamic-data-copy heuristic)`)
	rootCmd.Flags().BoolVar(&flagStyle, "style", false, "enable the coding-style checker battery")
	rootCmd.Flags().BoolVar(&flagErrorsOnly, "errorsonly", false, "suppress per-file progress lines")
	rootCmd.Flags().BoolVar(&flagRecursive, "recursive", false, "discover .c/.cc/.cpp files under each PATH")

	rootCmd.AddCommand(versionCmd)
}

// runCheck is the CLI's only real operation: resolve PATH arguments
// to a file list, then run the analyzer pipeline over each file in
// turn, exactly per spec §5's serial, per-file model.
func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stdout, cmd.UsageString())
		return nil
	}

	var files []string
	if flagRecursive {
		found, err := fileutil.DiscoverAll(args)
		if err != nil {
			return err
		}
		files = found
	} else {
		for _, a := range args {
			files = append(files, filepath.Clean(a))
		}
	}
	sort.Strings(files)

	settings := session.New(
		session.WithShowAll(flagAll),
		session.WithStyle(flagStyle),
		session.WithErrorsOnly(flagErrorsOnly),
		session.WithRecursive(flagRecursive),
	)

	for _, f := range files {
		if !flagErrorsOnly {
			fmt.Printf("Checking %s...\n", f)
		}

		outcome := analyzer.Analyze(f, os.Stderr, settings)
		if !outcome.Opened {
			continue
		}

		for _, d := range outcome.Sink.All() {
			fmt.Fprintln(os.Stderr, d.String())
		}
		if outcome.Sink.Len() == 0 && !flagErrorsOnly {
			fmt.Println("No errors found")
		}
	}

	return nil
}
