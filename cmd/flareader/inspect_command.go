package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"flareader/internal/fla"
)

type documentReport struct {
	File     string            `json:"file"`
	Document *fla.Document     `json:"document"`
	Symbols  []*fla.Symbol     `json:"symbols"`
	Bitmaps  []*fla.BitmapItem `json:"bitmaps"`
	Sounds   []*fla.SoundItem  `json:"sounds"`
	Videos   []*fla.VideoItem  `json:"videos"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showLayers bool
	var noCache bool

	cmd := &cobra.Command{
		Use:   "inspect <file.fla>",
		Short: "Summarize a document's stage, timelines, and library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveInput(args[0])
			if err != nil {
				return err
			}
			s, err := ctx.openSession(cmd, !noCache)
			if err != nil {
				return err
			}
			defer s.Close()

			doc, err := s.parser.ParseFile(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			if jsonOutput {
				return writeJSON(cmd, buildReport(path, doc))
			}
			printDocument(cmd.OutOrStdout(), path, doc, showLayers)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the parsed document as JSON")
	cmd.Flags().BoolVar(&showLayers, "layers", false, "List every layer of every timeline")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Decode media without the media cache")
	return cmd
}

func buildReport(path string, doc *fla.Document) documentReport {
	return documentReport{
		File:     path,
		Document: doc,
		Symbols:  doc.SymbolList(),
		Bitmaps:  sortedValues(doc.Bitmaps),
		Sounds:   sortedValues(doc.Sounds),
		Videos:   sortedValues(doc.Videos),
	}
}

func sortedValues[T any](m map[string]*T) []*T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func printDocument(out io.Writer, path string, doc *fla.Document, showLayers bool) {
	fmt.Fprintf(out, "File:       %s\n", path)
	fmt.Fprintf(out, "Stage:      %s x %s @ %s fps\n", formatNumber(doc.Width), formatNumber(doc.Height), formatNumber(doc.FrameRate))
	fmt.Fprintf(out, "Background: %s\n", doc.BackgroundColor)

	decodedBitmaps := 0
	for _, b := range doc.Bitmaps {
		if b.Image != nil {
			decodedBitmaps++
		}
	}
	decodedSounds := 0
	for _, s := range doc.Sounds {
		if s.Audio != nil {
			decodedSounds++
		}
	}
	fmt.Fprintf(out, "Symbols:    %d\n", len(doc.SymbolList()))
	fmt.Fprintf(out, "Bitmaps:    %d (%d decoded)\n", len(doc.Bitmaps), decodedBitmaps)
	fmt.Fprintf(out, "Sounds:     %d (%d decoded)\n", len(doc.Sounds), decodedSounds)
	fmt.Fprintf(out, "Videos:     %d\n", len(doc.Videos))

	if len(doc.Timelines) == 0 {
		fmt.Fprintln(out, "Timelines:  none")
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Scene", "Layers", "Frames", "Camera", "Reference layers"},
		timelineRows(doc.Timelines),
		alignLeft, alignRight, alignRight, alignLeft, alignLeft,
	))

	if !showLayers {
		return
	}
	for _, tl := range doc.Timelines {
		fmt.Fprintf(out, "\n%s\n", tl.Name)
		fmt.Fprintln(out, renderTable(
			[]string{"#", "Name", "Type", "Visible", "Frames", "Reference", "Parent"},
			layerRows(tl),
			alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight,
		))
	}
}

func timelineRows(timelines []*fla.Timeline) [][]string {
	rows := make([][]string, 0, len(timelines))
	for _, tl := range timelines {
		camera := "-"
		if l, ok := tl.CameraLayer(); ok {
			camera = fmt.Sprintf("%s (#%d)", l.Name, *tl.CameraLayerIndex)
		}
		refs := make([]string, 0, len(tl.ReferenceLayers))
		for _, i := range tl.ReferenceLayers {
			refs = append(refs, strconv.Itoa(i))
		}
		refText := "-"
		if len(refs) > 0 {
			refText = strings.Join(refs, ", ")
		}
		rows = append(rows, []string{
			tl.Name,
			strconv.Itoa(len(tl.Layers)),
			strconv.Itoa(tl.TotalFrames),
			camera,
			refText,
		})
	}
	return rows
}

func layerRows(tl *fla.Timeline) [][]string {
	rows := make([][]string, 0, len(tl.Layers))
	for i, l := range tl.Layers {
		parent := "-"
		if l.ParentLayerIndex != nil {
			parent = strconv.Itoa(*l.ParentLayerIndex)
		}
		frames := 0
		for _, f := range l.Frames {
			frames = max(frames, f.End())
		}
		rows = append(rows, []string{
			strconv.Itoa(i),
			l.Name,
			string(l.Type),
			yesNo(l.Visible),
			strconv.Itoa(frames),
			yesNo(tl.IsReferenceLayer(i)),
			parent,
		})
	}
	return rows
}
