package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mangatl/internal/archive"
	"mangatl/internal/commands"
	"mangatl/internal/dataurl"
)

func newArchiveCommand(ctx *commandContext) *cobra.Command {
	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Inspect, build, and unpack project archives locally",
	}
	archiveCmd.AddCommand(newArchiveInspectCommand())
	archiveCmd.AddCommand(newArchiveExportCommand(ctx))
	archiveCmd.AddCommand(newArchiveImportCommand(ctx))
	return archiveCmd
}

func newArchiveInspectCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:         "inspect <archive>",
		Short:       "List the entries of a project archive",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := archive.List(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}
			rows := make([][]string, 0, len(entries))
			var packed, unpacked uint64
			for _, entry := range entries {
				if entry.Directory {
					rows = append(rows, []string{entry.Name, "-", "-"})
					continue
				}
				packed += entry.CompressedSize
				unpacked += entry.UncompressedSize
				rows = append(rows, []string{
					entry.Name,
					fmt.Sprintf("%d", entry.UncompressedSize),
					fmt.Sprintf("%d", entry.CompressedSize),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable(tableSpec{
				title:   filepath.Base(args[0]),
				headers: []string{"Entry", "Size", "Compressed"},
				aligns:  []columnAlignment{alignLeft, alignRight, alignRight},
				footer:  []string{fmt.Sprintf("%d entries", len(entries)), fmt.Sprintf("%d", unpacked), fmt.Sprintf("%d", packed)},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newArchiveExportCommand(ctx *commandContext) *cobra.Command {
	var metadataPath string
	var imagePaths []string
	var masks []string

	cmd := &cobra.Command{
		Use:   "export <archive>",
		Short: "Build a project archive from a metadata file and image files",
		Long: "Build a project archive. Each --image is stored under its base name; " +
			"--mask takes name=path pairs for painted masks.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			metadata, err := os.ReadFile(metadataPath)
			if err != nil {
				return fmt.Errorf("read metadata: %w", err)
			}
			images, err := exportImages(imagePaths, masks)
			if err != nil {
				return err
			}

			dst := args[0]
			if filepath.Ext(dst) == "" {
				dst += cfg.Archive.Extension
			}
			codec := archive.NewCodec(commands.ArchiveOptions(cfg, ctx.localLogger()))
			summary, err := codec.Export(cmd.Context(), dst, json.RawMessage(metadata), images)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s (%d originals, %d masks, %d finals)\n", summary.Path, summary.Originals, summary.Masks, summary.Finals)
			for _, name := range summary.Skipped {
				fmt.Fprintf(out, "Skipped %s\n", name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&metadataPath, "metadata", "m", "", "Project metadata JSON file")
	cmd.Flags().StringArrayVarP(&imagePaths, "image", "i", nil, "Original image file (repeatable)")
	cmd.Flags().StringArrayVar(&masks, "mask", nil, "Mask for an image as name=path to a PNG (repeatable)")
	_ = cmd.MarkFlagRequired("metadata")
	return cmd
}

// exportImages turns CLI file arguments into codec records. Masks are
// supplied as inline PNG payloads because the codec takes masks inline.
// Images whose base names collide are rejected since they would share one
// archive entry.
func exportImages(imagePaths, masks []string) ([]archive.Image, error) {
	maskByName := make(map[string]string, len(masks))
	for _, pair := range masks {
		name, path, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(name) == "" || strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("mask %q must be name=path", pair)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read mask %s: %w", name, err)
		}
		maskByName[name] = dataurl.Encode(dataurl.MIMEPNG, data)
	}

	images := make([]archive.Image, 0, len(imagePaths))
	pathByName := make(map[string]string, len(imagePaths))
	for _, path := range imagePaths {
		name := filepath.Base(path)
		if prev, dup := pathByName[name]; dup {
			return nil, fmt.Errorf("images %s and %s share the archive name %s", prev, path, name)
		}
		pathByName[name] = path
		images = append(images, archive.Image{
			Name:        name,
			Path:        path,
			MaskDataURL: maskByName[name],
		})
	}
	for name := range maskByName {
		if _, ok := pathByName[name]; !ok {
			return nil, fmt.Errorf("mask %s does not match any --image", name)
		}
	}
	return images, nil
}

func newArchiveImportCommand(ctx *commandContext) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "import <archive>",
		Short: "Unpack a project archive into its metadata document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			codec := archive.NewCodec(commands.ArchiveOptions(cfg, ctx.localLogger()))
			metadata, err := codec.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				return writeJSON(cmd, metadata)
			}
			data, err := json.MarshalIndent(metadata, "", "  ")
			if err != nil {
				return fmt.Errorf("encode metadata: %w", err)
			}
			if err := os.WriteFile(outPath, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write metadata: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the metadata document to this file instead of stdout")
	return cmd
}
