package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"flareader/internal/archive"
	"flareader/internal/config"
	"flareader/internal/fileutil"
	"flareader/internal/zipfix"
)

func newRepairCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "repair <file.fla>",
		Short: "Rewrite a structurally damaged FLA archive so ZIP tools accept it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveInput(args[0])
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			input, err := fileutil.MapFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			defer input.Close()
			data := input.Bytes()

			out := cmd.OutOrStdout()
			if archive.Validate(data) == nil {
				fmt.Fprintf(out, "%s is a readable archive; nothing to repair\n", path)
				return nil
			}

			repaired, strategy, err := zipfix.Repair(data, archive.Validate, logger)
			if err != nil {
				if errors.Is(err, zipfix.ErrNoEOCD) {
					return fmt.Errorf("%s has no ZIP end-of-central-directory record; it is not an FLA archive", path)
				}
				return fmt.Errorf("repair %s: %w", path, err)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				ext := filepath.Ext(path)
				target = strings.TrimSuffix(path, ext) + ".repaired" + ext
			} else if target, err = config.ExpandPath(target); err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("output file already exists at %s (use --overwrite to replace it)", target)
				}
			}
			if err := fileutil.WriteFileAtomic(target, repaired, 0o644); err != nil {
				return fmt.Errorf("write repaired archive: %w", err)
			}
			fmt.Fprintf(out, "Repaired with %s (%s -> %s)\n", strategy, humanBytes(int64(len(data))), humanBytes(int64(len(repaired))))
			fmt.Fprintf(out, "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the repaired archive (default <name>.repaired.fla)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite the destination if present")
	return cmd
}
