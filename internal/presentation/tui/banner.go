package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	s1 := termenv.String("   ___                                ").Foreground(p.Color("#4ade80"))
	s2 := termenv.String("  / _ \\__   _____ _ __ ___  ___  ___ _ __").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" | | | \\ \\ / / _ \\ '__/ __|/ _ \\/ _ \\ '__|").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String(" | |_| |\\ V /  __/ |  \\__ \\  __/  __/ |").Foreground(p.Color("#818cf8"))
	s5 := termenv.String("  \\___/  \\_/ \\___|_|  |___/\\___|\\___|_|").Foreground(p.Color("#a78bfa"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
