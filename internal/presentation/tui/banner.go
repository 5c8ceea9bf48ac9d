package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner for Tiller.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Earthy gradient (green to amber)
	s1 := termenv.String(" _____ _ _ _           ").Foreground(p.Color("#4ade80"))
	s2 := termenv.String("|_   _(_) | | ___ _ __ ").Foreground(p.Color("#86efac"))
	s3 := termenv.String("  | | | | | |/ _ \\ '__|").Foreground(p.Color("#bef264"))
	s4 := termenv.String("  | | | | | |  __/ |   ").Foreground(p.Color("#fde047"))
	s5 := termenv.String("  |_| |_|_|_|\\___|_|   ").Foreground(p.Color("#fbbf24"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
