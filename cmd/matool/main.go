// Command matool creates, extracts, inspects, and modifies MAT
// material files (spec §6: "matool sub-commands: create, create batch,
// extract, info, modify").
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesengine/libim/cmd/internal/cliutil"
	"github.com/jonesengine/libim/imagecodec"
	"github.com/jonesengine/libim/material"
	"github.com/jonesengine/libim/stream"
)

func loadImage(path string) (material.Texture, error) {
	r, err := stream.OpenFileRead(path)
	if err != nil {
		return material.Texture{}, err
	}
	defer r.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return imagecodec.PngLoad(r)
	case ".bmp":
		return imagecodec.BmpLoad(r)
	default:
		return material.Texture{}, fmt.Errorf("matool: unsupported image format %q", filepath.Ext(path))
	}
}

func stemOf(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func createOne(imagePath, matPath string, mipLevels uint32) error {
	tex, err := loadImage(imagePath)
	if err != nil {
		return err
	}
	if mipLevels > 1 {
		tex, err = tex.GenerateMipmaps(mipLevels, nil, false)
		if err != nil {
			return err
		}
	}

	mat := material.NewMaterial(filepath.Base(matPath))
	if err := mat.AddCel(tex); err != nil {
		return err
	}

	w, err := stream.CreateFileWrite(matPath)
	if err != nil {
		return err
	}
	defer w.Close()
	return material.WriteMat(w, mat)
}

func runCreate(cmd *cobra.Command, args []string) error {
	mipLevels, _ := cmd.Flags().GetUint32("miplevels")
	out, _ := cmd.Flags().GetString(cliutil.FlagOutput)
	if out == "" {
		out = stemOf(args[0]) + ".mat"
	}
	return createOne(args[0], out, mipLevels)
}

func runCreateBatch(cmd *cobra.Command, args []string) error {
	log := cliutil.LoggerFromFlags(cmd)
	mipLevels, _ := cmd.Flags().GetUint32("miplevels")
	out, _ := cmd.Flags().GetString(cliutil.FlagOutput)
	if out == "" {
		out = "."
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".png" && ext != ".bmp" {
			continue
		}
		src := filepath.Join(args[0], e.Name())
		dst := filepath.Join(out, stemOf(e.Name())+".mat")

		cliutil.Progress(e.Name())
		if err := createOne(src, dst, mipLevels); err != nil {
			cliutil.ProgressDone(e.Name(), false)
			log.Error().Err(err).Str("file", src).Msg("create failed")
			return err
		}
		cliutil.ProgressDone(e.Name(), true)
	}
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	r, err := stream.OpenFileRead(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	mat, err := material.ReadMat(r)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString(cliutil.FlagOutput)
	if out == "" {
		out = stemOf(args[0])
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	for celIdx, tex := range mat.Cels() {
		for lod := uint32(0); lod < tex.MipLevels(); lod++ {
			data, w, h, err := tex.Mipmap(lod)
			if err != nil {
				return err
			}
			mip, err := material.NewTexture(w, h, 1, tex.Format(), data)
			if err != nil {
				return err
			}

			name := fmt.Sprintf("%s_cel%d_mip%d.png", stemOf(args[0]), celIdx, lod)
			dst := filepath.Join(out, name)
			fw, err := stream.CreateFileWrite(dst)
			if err != nil {
				return err
			}
			if err := imagecodec.PngWrite(fw, mip); err != nil {
				fw.Close()
				return err
			}
			if err := fw.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	r, err := stream.OpenFileRead(args[0])
	if err != nil {
		return err
	}
	defer r.Close()

	mat, err := material.ReadMat(r)
	if err != nil {
		return err
	}

	fmt.Printf("name:       %s\n", mat.Name())
	fmt.Printf("format:     mode=%v bpp=%d\n", mat.Format().Mode, mat.Format().Bpp)
	fmt.Printf("dimensions: %dx%d\n", mat.Width(), mat.Height())
	fmt.Printf("mip levels: %d\n", mat.MipLevels())
	fmt.Printf("cels:       %d\n", mat.Count())
	return nil
}

func runModify(cmd *cobra.Command, args []string) error {
	r, err := stream.OpenFileRead(args[0])
	if err != nil {
		return err
	}
	mat, err := material.ReadMat(r)
	r.Close()
	if err != nil {
		return err
	}

	changed := false
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		mat.SetName(name)
		changed = true
	}
	if image, _ := cmd.Flags().GetString("image"); image != "" {
		tex, err := loadImage(image)
		if err != nil {
			return err
		}
		mat = material.NewMaterial(mat.Name())
		if err := mat.AddCel(tex); err != nil {
			return err
		}
		changed = true
	}
	if !changed {
		return fmt.Errorf("matool: modify requires --name and/or --image")
	}

	out, _ := cmd.Flags().GetString(cliutil.FlagOutput)
	if out == "" {
		out = args[0]
	}
	w, err := stream.CreateFileWrite(out)
	if err != nil {
		return err
	}
	defer w.Close()
	return material.WriteMat(w, mat)
}

func main() {
	root := &cobra.Command{Use: "matool"}
	cliutil.AddVerboseFlag(root)

	create := &cobra.Command{
		Use:   "create <image>",
		Short: "Create a MAT from a single PNG/BMP image",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreate,
	}
	create.Flags().Uint32("miplevels", 1, "number of mipmap levels to generate")
	cliutil.AddOutputFlag(create, "", "output .mat path (default: <stem>.mat)")

	createBatch := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Create one MAT per PNG/BMP image in a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runCreateBatch,
	}
	createBatch.Flags().Uint32("miplevels", 1, "number of mipmap levels to generate")
	cliutil.AddOutputFlag(createBatch, "", "output directory (default: current directory)")
	create.AddCommand(createBatch)

	extract := &cobra.Command{
		Use:   "extract <file.mat>",
		Short: "Extract every cel/mip level of a MAT to PNG files",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	cliutil.AddOutputFlag(extract, "", "output directory (default: <stem>)")

	info := &cobra.Command{
		Use:   "info <file.mat>",
		Short: "Print a MAT's header fields",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	modify := &cobra.Command{
		Use:   "modify <file.mat>",
		Short: "Rename a MAT or replace all its cels with a single image",
		Args:  cobra.ExactArgs(1),
		RunE:  runModify,
	}
	modify.Flags().String("name", "", "new material name")
	modify.Flags().String("image", "", "replacement image (PNG/BMP); the MAT keeps it as its only cel")
	cliutil.AddOutputFlag(modify, "", "output path (default: overwrite input)")

	root.AddCommand(create, extract, info, modify)

	if err := root.Execute(); err != nil {
		cliutil.Fail("%v", err)
	}
}
