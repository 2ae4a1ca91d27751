// Package cliutil holds the flag and logging wiring shared by cndtool,
// matool, and gobext, so each tool's main package only has to declare
// its own sub-commands.
package cliutil

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Common flag names shared across all three tools (spec §6: "Common
// options: -o/--output(-dir) (string), -v/--verbose, -h/--help").
const (
	FlagOutput  = "output"
	FlagVerbose = "verbose"
	FlagVFS     = "vfs"
)

// AddVFSFlag registers the repeatable --vfs flag directly against fs,
// cndtool's VFS search-path list. It takes the *pflag.FlagSet cobra's
// Command.Flags() returns rather than a *cobra.Command, since
// StringArray's "repeat the flag to append" semantics (as opposed to
// StringSlice's comma-splitting) are a pflag distinction cobra itself
// is agnostic to.
func AddVFSFlag(fs *pflag.FlagSet, usage string) {
	fs.StringArray(FlagVFS, nil, usage)
}

// AddOutputFlag registers -o/--output on cmd, defaulting to def.
func AddOutputFlag(cmd *cobra.Command, def, usage string) {
	cmd.Flags().StringP(FlagOutput, "o", def, usage)
}

// AddVerboseFlag registers the persistent -v/--verbose flag on the
// root command.
func AddVerboseFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP(FlagVerbose, "v", false, "verbose output")
}

// NewLogger builds a console-rendered zerolog.Logger writing to
// stderr, at InfoLevel normally or DebugLevel when verbose is set.
// Tool stdout is reserved for the data a command was asked to print;
// all diagnostics go to stderr (spec §6: "diagnostic goes to stderr").
func NewLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// LoggerFromFlags reads the --verbose flag off cmd and returns a
// logger configured accordingly.
func LoggerFromFlags(cmd *cobra.Command) zerolog.Logger {
	verbose, _ := cmd.Flags().GetBool(FlagVerbose)
	return NewLogger(verbose)
}

// Fail prints format (with the args applied) to stderr prefixed with
// "ERROR:" and exits with status 1 (spec §6: "Exit code 0 on success,
// 1 on user/input error, 1 on codec failure; diagnostic goes to
// stderr with the prefix ERROR:").
func Fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	os.Exit(1)
}

// Progress overwrites the current stderr line with msg, used for a
// multi-file operation's in-place progress indicator. The caller
// follows up with ProgressDone once the item finishes.
func Progress(msg string) {
	fmt.Fprintf(os.Stderr, "\r%s", msg)
}

// ProgressDone finalizes the current progress line with either
// "SUCCESS" or "FAILED" and a trailing newline.
func ProgressDone(msg string, ok bool) {
	status := "SUCCESS"
	if !ok {
		status = "FAILED"
	}
	fmt.Fprintf(os.Stderr, "\r%s ... %s\n", msg, status)
}
