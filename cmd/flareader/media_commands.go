package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"flareader/internal/audio"
	"flareader/internal/bitmap"
	"flareader/internal/config"
	"flareader/internal/fileutil"
	"flareader/internal/fla"
)

func newBitmapsCommand(ctx *commandContext) *cobra.Command {
	var exportDir string
	var format string
	var maxSide int
	var noCache bool

	cmd := &cobra.Command{
		Use:   "bitmaps <file.fla>",
		Short: "List library bitmaps and optionally export the decoded images",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, s, err := parseForMedia(cmd, ctx, args[0], noCache)
			if err != nil {
				return err
			}
			defer s.Close()

			items := sortedValues(doc.Bitmaps)
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No bitmaps in library")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Size", "Decoded", "Recovery"},
				bitmapRows(items),
				alignLeft, alignRight, alignLeft, alignLeft,
			))
			if strings.TrimSpace(exportDir) == "" {
				return nil
			}
			ext := strings.ToLower(strings.TrimSpace(format))
			if ext == "" {
				ext = "png"
			}
			return exportBitmaps(out, exportDir, ext, maxSide, items)
		},
	}

	cmd.Flags().StringVarP(&exportDir, "export", "e", "", "Directory to write decoded images into")
	cmd.Flags().StringVar(&format, "format", "png", "Export format: "+strings.Join(bitmap.ExportFormats, ", "))
	cmd.Flags().IntVar(&maxSide, "max-size", 0, "Scale exports so the longer side is at most this many pixels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Decode media without the media cache")
	return cmd
}

func newSoundsCommand(ctx *commandContext) *cobra.Command {
	var exportDir string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "sounds <file.fla>",
		Short: "List library sounds and optionally export them as WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, s, err := parseForMedia(cmd, ctx, args[0], noCache)
			if err != nil {
				return err
			}
			defer s.Close()

			items := sortedValues(doc.Sounds)
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No sounds in library")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Format", "Rate", "Channels", "Duration", "Source"},
				soundRows(items),
				alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft,
			))
			if strings.TrimSpace(exportDir) == "" {
				return nil
			}
			return exportSounds(out, exportDir, items)
		},
	}

	cmd.Flags().StringVarP(&exportDir, "export", "e", "", "Directory to write WAV files into")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Decode media without the media cache")
	return cmd
}

func parseForMedia(cmd *cobra.Command, ctx *commandContext, arg string, noCache bool) (*fla.Document, *session, error) {
	path, err := resolveInput(arg)
	if err != nil {
		return nil, nil, err
	}
	s, err := ctx.openSession(cmd, !noCache)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.parser.ParseFile(cmd.Context(), path)
	if err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, s, nil
}

func bitmapRows(items []*fla.BitmapItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, b := range items {
		recovery := "-"
		if b.Recovery != "" {
			recovery = b.Recovery
		}
		rows = append(rows, []string{
			b.Name,
			fmt.Sprintf("%sx%s", formatNumber(b.Width), formatNumber(b.Height)),
			yesNo(b.Image != nil),
			recovery,
		})
	}
	return rows
}

func soundRows(items []*fla.SoundItem) [][]string {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		format := s.Format
		if format == "" {
			format = "-"
		}
		rate, channels, duration, source := "-", "-", "-", "undecoded"
		if s.Audio != nil {
			rate = strconv.Itoa(s.Audio.SampleRate)
			channels = strconv.Itoa(s.Audio.Channels)
			duration = s.Audio.Duration().Round(time.Millisecond).String()
			source = string(s.Audio.Source)
		}
		rows = append(rows, []string{s.Name, format, rate, channels, duration, source})
	}
	return rows
}

func exportBitmaps(out io.Writer, dir, format string, maxSide int, items []*fla.BitmapItem) error {
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("resolve export directory: %w", err)
	}
	if format == "tif" {
		format = "tiff"
	}
	namer := newExportNamer(dir)
	written := 0
	for _, b := range items {
		if b.Image == nil {
			continue
		}
		var buf bytes.Buffer
		if err := bitmap.Encode(&buf, bitmap.Thumbnail(b.Image, maxSide), format); err != nil {
			return fmt.Errorf("encode %s: %w", b.Name, err)
		}
		target := namer.path(b.Name, format)
		if err := fileutil.WriteFileAtomic(target, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		written++
	}
	fmt.Fprintf(out, "Exported %d of %d bitmaps to %s\n", written, len(items), dir)
	return nil
}

func exportSounds(out io.Writer, dir string, items []*fla.SoundItem) error {
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return fmt.Errorf("resolve export directory: %w", err)
	}
	namer := newExportNamer(dir)
	written := 0
	for _, s := range items {
		if s.Audio == nil {
			continue
		}
		target := namer.path(s.Name, "wav")
		err := fileutil.WriteAtomic(target, 0o644, func(f *os.File) error {
			return audio.WriteWAV(f, s.Audio)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", target, err)
		}
		written++
	}
	fmt.Fprintf(out, "Exported %d of %d sounds to %s\n", written, len(items), dir)
	return nil
}
