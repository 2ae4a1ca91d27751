// Command cndtool converts between the binary CND world format and its
// textual NDY counterpart, resolving referenced assets (materials,
// keyframes, COG scripts) through a VFS path list (spec §6: "cndtool
// operates on CND/NDY files and takes a VFS path list to resolve
// assets").
package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesengine/libim/cmd/internal/cliutil"
	"github.com/jonesengine/libim/gobfile"
	"github.com/jonesengine/libim/stream"
	"github.com/jonesengine/libim/text"
	"github.com/jonesengine/libim/world"
)

// closer is the subset of stream.Stream this tool needs to release VFS
// backing files once a conversion finishes.
type closer interface {
	Close() error
}

func buildVFS(paths []string) (world.VFS, []closer, error) {
	var sources []world.ResourceSource
	var closers []closer

	for _, p := range paths {
		if strings.EqualFold(filepath.Ext(p), ".gob") {
			r, err := stream.OpenMmap(p)
			if err != nil {
				return world.VFS{}, closers, err
			}
			closers = append(closers, r)
			container, err := gobfile.Load(r)
			if err != nil {
				return world.VFS{}, closers, err
			}
			sources = append(sources, world.GobSource{Container: container})
			continue
		}
		sources = append(sources, world.DirSource{Root: p})
	}
	return world.NewVFS(sources...), closers, nil
}

func closeAll(closers []closer) {
	for _, c := range closers {
		c.Close()
	}
}

func loadStatic(path string, vfs world.VFS) (*world.World, error) {
	if path == "" {
		return nil, nil
	}
	r, err := stream.OpenMmap(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return world.ReadCnd(r, world.ResolveCogScripts(vfs))
}

func compile(cmd *cobra.Command, ndyPath, outPath string, vfs world.VFS, staticPath string, verify, isStaticContainer bool) error {
	r, err := stream.OpenFileRead(ndyPath)
	if err != nil {
		return err
	}
	defer r.Close()

	nw, err := world.ReadNdy(text.NewReader(r), world.ResolveCogScripts(vfs))
	if err != nil {
		return err
	}

	static, err := loadStatic(staticPath, vfs)
	if err != nil {
		return err
	}

	w, err := world.ConvertNdyToCnd(nw, vfs, world.ConvertOptions{
		Static:            static,
		Verify:            verify,
		IsStaticContainer: isStaticContainer,
	})
	if err != nil {
		return err
	}

	out, err := stream.OpenFileReadWrite(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return world.WriteCnd(out, w, isStaticContainer)
}

func decompile(cmd *cobra.Command, cndPath, outPath string, vfs world.VFS) error {
	r, err := stream.OpenMmap(cndPath)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := world.ReadCnd(r, world.ResolveCogScripts(vfs))
	if err != nil {
		return err
	}

	nw := world.ConvertCndToNdy(w)

	out, err := stream.CreateFileWrite(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return world.WriteNdy(text.NewWriter(out), nw)
}

func run(cmd *cobra.Command, args []string) error {
	log := cliutil.LoggerFromFlags(cmd)
	in := args[0]

	vfsPaths, _ := cmd.Flags().GetStringArray(cliutil.FlagVFS)
	vfs, closers, err := buildVFS(vfsPaths)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	staticPath, _ := cmd.Flags().GetString("static")
	verify, _ := cmd.Flags().GetBool("verify")
	isStaticContainer, _ := cmd.Flags().GetBool("static-container")

	out, _ := cmd.Flags().GetString(cliutil.FlagOutput)
	ext := strings.ToLower(filepath.Ext(in))
	stem := strings.TrimSuffix(in, filepath.Ext(in))

	switch ext {
	case ".ndy":
		if out == "" {
			out = stem + ".cnd"
		}
		log.Info().Str("in", in).Str("out", out).Msg("compiling NDY to CND")
		return compile(cmd, in, out, vfs, staticPath, verify, isStaticContainer)
	case ".cnd":
		if out == "" {
			out = stem + ".ndy"
		}
		log.Info().Str("in", in).Str("out", out).Msg("decompiling CND to NDY")
		return decompile(cmd, in, out, vfs)
	default:
		return fmt.Errorf("cndtool: unrecognized extension %q (want .cnd or .ndy)", ext)
	}
}

func main() {
	root := &cobra.Command{
		Use:   "cndtool <file.cnd|file.ndy>",
		Short: "Convert between binary CND world files and their textual NDY form",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	cliutil.AddVerboseFlag(root)
	cliutil.AddOutputFlag(root, "", "output file path (default: input with swapped extension)")
	cliutil.AddVFSFlag(root.Flags(), "VFS search path entry (directory or .gob archive); repeatable, searched in order")
	root.Flags().String("static", "", "already-compiled jones3dstatic.cnd, consulted to filter duplicate materials (NDY->CND only)")
	root.Flags().Bool("verify", false, "verify every name-only resource reference resolves in the VFS (NDY->CND only)")
	root.Flags().Bool("static-container", false, "mark the produced CND as the static resource container itself (NDY->CND only)")

	if err := root.Execute(); err != nil {
		cliutil.Fail("%v", err)
	}
}
