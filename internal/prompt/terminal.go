// Package prompt is the terminal prompt capability of spec.md §1,
// generalizing the teacher's interactive download-selection menu
// (internal/shared.GetUserInput / ParseSelectionInput) from "pick albums
// to download" into "pick a release for an ambiguous directory", using
// the reserved single-character vocabulary of spec.md §6.
package prompt

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"resolverd/internal/domain"
	"resolverd/internal/resolver"
	"resolverd/internal/shared"
)

// Terminal is the resolver.Prompter implementation that renders options
// with the teacher's color scheme and blocks on stdin exactly as
// shared.GetUserInput does.
type Terminal struct {
	logger shared.Logger
}

// NewTerminal returns a Terminal prompter. logger may be nil.
func NewTerminal(logger shared.Logger) *Terminal {
	return &Terminal{logger: logger}
}

// Choose renders options for directoryPath and blocks until the operator
// responds with one of the reserved inputs or a numbered selection.
func (t *Terminal) Choose(directoryPath string, options []resolver.Option) (resolver.PromptChoice, error) {
	shared.ColorPrompt.Printf("\nAmbiguous release for %s\n", directoryPath)
	for i, opt := range options {
		shared.ColorInfo.Printf("  [%d] %s (%s:%s) score=%.2f\n", i+1, opt.DisplayLabel, opt.Provider, opt.ReleaseID, opt.Score)
		for _, diag := range opt.Diagnostics {
			fmt.Printf("        %s\n", diag)
		}
	}
	shared.ColorPrompt.Print("Select a number, 0/s skip, d delete, a archive, i ignore, or mb:<uuid>/dg:<number>: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return resolver.PromptChoice{Skip: true}, nil
	}
	input := strings.TrimSpace(scanner.Text())
	return ParseChoice(input, options)
}

// ParseChoice applies the reserved single-character vocabulary of
// spec.md §6 to a raw line of operator input, given the options it was
// shown. Terminal.Choose applies it to each line it reads from stdin.
func ParseChoice(input string, options []resolver.Option) (resolver.PromptChoice, error) {
	switch strings.ToLower(input) {
	case "0", "s":
		return resolver.PromptChoice{Skip: true}, nil
	case "d":
		return resolver.PromptChoice{Delete: true}, nil
	case "a":
		return resolver.PromptChoice{Archive: true}, nil
	case "i":
		return resolver.PromptChoice{Ignore: true}, nil
	}

	if releaseID, ok := strings.CutPrefix(input, "mb:"); ok {
		return resolver.PromptChoice{Forced: true, Provider: domain.ProviderMusicBrainz, ReleaseID: releaseID}, nil
	}
	if releaseID, ok := strings.CutPrefix(input, "dg:"); ok {
		return resolver.PromptChoice{Forced: true, Provider: domain.ProviderDiscogs, ReleaseID: releaseID}, nil
	}

	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(options) {
		return resolver.PromptChoice{}, fmt.Errorf("prompt: unrecognized input %q", input)
	}
	chosen := options[n-1]
	return resolver.PromptChoice{Forced: true, Provider: chosen.Provider, ReleaseID: chosen.ReleaseID}, nil
}
