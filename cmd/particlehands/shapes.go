package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ayusman/particlehands/internal/gesture"
	"github.com/ayusman/particlehands/internal/shape"
)

// listShapes prints every shape with its palette and the gestures bound to it.
func listShapes(w io.Writer) error {
	bound := make(map[shape.Kind][]string)
	for _, t := range gesture.Types() {
		if k, ok := shape.ForGesture(t); ok {
			bound[k] = append(bound[k], t.String())
		}
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHAPE\tPALETTE\tGESTURES")
	for _, k := range shape.Kinds() {
		gestures := strings.Join(bound[k], ",")
		if gestures == "" {
			gestures = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, shape.PaletteNameFor(k.String()), gestures)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nPalettes: %s\nAny other name is drawn as text.\n", strings.Join(shape.PaletteNames(), ", "))
	return err
}
