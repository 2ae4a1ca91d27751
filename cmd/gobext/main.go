// Command gobext extracts a GOB archive to a directory (spec §6:
// "gobext extracts a GOB to a directory whose name defaults to
// <stem>_GOB").
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesengine/libim/cmd/internal/cliutil"
	"github.com/jonesengine/libim/gobfile"
	"github.com/jonesengine/libim/stream"
)

func defaultOutputDir(gobPath string) string {
	stem := strings.TrimSuffix(filepath.Base(gobPath), filepath.Ext(gobPath))
	return stem + "_GOB"
}

func extract(cmd *cobra.Command, gobPath string) error {
	log := cliutil.LoggerFromFlags(cmd)

	out, _ := cmd.Flags().GetString(cliutil.FlagOutput)
	if out == "" {
		out = defaultOutputDir(gobPath)
	}

	r, err := stream.OpenMmap(gobPath)
	if err != nil {
		return err
	}
	defer r.Close()

	container, err := gobfile.Load(r)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	for _, e := range container.Entries() {
		log.Debug().Str("path", e.Path).Uint32("size", e.Size).Msg("extracting")
		cliutil.Progress(e.Path)

		vf, err := container.Open(e.Path)
		if err != nil {
			cliutil.ProgressDone(e.Path, false)
			return err
		}

		dest := filepath.Join(out, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			cliutil.ProgressDone(e.Path, false)
			return err
		}

		w, err := stream.CreateFileWrite(dest)
		if err != nil {
			cliutil.ProgressDone(e.Path, false)
			return err
		}

		buf := make([]byte, vf.Size())
		if _, err := vf.Read(buf); err != nil {
			w.Close()
			cliutil.ProgressDone(e.Path, false)
			return err
		}
		if _, err := w.Write(buf); err != nil {
			w.Close()
			cliutil.ProgressDone(e.Path, false)
			return err
		}
		if err := w.Close(); err != nil {
			cliutil.ProgressDone(e.Path, false)
			return err
		}
		cliutil.ProgressDone(e.Path, true)
	}

	log.Info().Int("count", len(container.Entries())).Str("dir", out).Msg("extraction complete")
	return nil
}

func main() {
	root := &cobra.Command{
		Use:   "gobext <file.gob>",
		Short: "Extract a GOB archive to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return extract(cmd, args[0])
		},
	}

	cliutil.AddVerboseFlag(root)
	cliutil.AddOutputFlag(root, "", "output directory (default: <stem>_GOB)")

	if err := root.Execute(); err != nil {
		cliutil.Fail("%v", err)
	}
}
