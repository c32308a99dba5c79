package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner with the version underneath.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Story-path gradient (amber to cyan), matching the default edge palette
	lines := []struct {
		text  string
		color string
	}{
		{"     _                                         _     ", "#FF9900"},
		{" ___| |_ ___  _ __ _   _  __ _ _ __ __ _ _ __ | |__  ", "#F2A93B"},
		{"/ __| __/ _ \\| '__| | | |/ _` | '__/ _` | '_ \\| '_ \\ ", "#C9B86A"},
		{"\\__ \\ || (_) | |  | |_| | (_| | | | (_| | |_) | | | |", "#8FC49A"},
		{"|___/\\__\\___/|_|   \\__, |\\__, |_|  \\__,_| .__/|_| |_|", "#4FC8CC"},
		{"                   |___/ |___/          |_|          ", "#00CCFF"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
