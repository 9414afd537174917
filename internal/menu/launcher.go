package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type backendKind int

const (
	kindRofi backendKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

type launcher struct {
	command string
	kind    backendKind
	caps    Capabilities
}

func newLauncher(name string) *launcher {
	switch name {
	case "rofi":
		return &launcher{
			command: "rofi",
			kind:    kindRofi,
			caps: Capabilities{
				Icons:       true,
				Markup:      true,
				IndexOutput: true,
				MessageBar:  true,
				RowStates:   true,
				Placement:   true,
			},
		}
	case "fuzzel":
		return &launcher{
			command: "fuzzel",
			kind:    kindFuzzel,
			caps:    Capabilities{Icons: true, IndexOutput: true},
		}
	case "wofi":
		return &launcher{
			command: "wofi",
			kind:    kindWofi,
			caps:    Capabilities{Icons: true, Markup: true},
		}
	default:
		// dmenu has minimal features
		return &launcher{command: "dmenu", kind: kindDmenu}
	}
}

func (b *launcher) Capabilities() Capabilities {
	return b.caps
}

func (b *launcher) Show(ctx context.Context, req Request) (Item, error) {
	if len(req.Items) == 0 {
		return Item{}, fmt.Errorf("menu: no items to show")
	}

	items := make([]Item, len(req.Items))
	copy(items, req.Items)

	input, active := b.formatInput(items)
	args := b.buildArgs(req, active)

	cmd := exec.CommandContext(ctx, b.command, args...)
	cmd.Stdin = strings.NewReader(input)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))

	if err != nil {
		if ctx.Err() != nil {
			return Item{}, ctx.Err()
		}
		// Check for cancel (exit code 1 or 130 for Ctrl+C)
		if selection == "" && isCancelExit(err) {
			return Item{}, ErrCancelled
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Item{}, fmt.Errorf("%s failed: %s", b.command, msg)
		}
		return Item{}, fmt.Errorf("%s failed: %w", b.command, err)
	}

	if selection == "" {
		return Item{}, ErrCancelled
	}
	return b.parseSelection(selection, items)
}

func (b *launcher) buildArgs(req Request, active []int) []string {
	var args []string

	switch b.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i"}
		if req.Prompt != "" {
			args = append(args, "-p", req.Prompt)
		}
		// Output only the index for robust selection parsing (labels may contain markup).
		args = append(args, "-format", "i", "-no-custom")
		if b.caps.Markup {
			args = append(args, "-markup-rows")
		}
		if b.caps.Icons {
			args = append(args, "-show-icons")
		}
		if len(active) > 0 {
			args = append(args, "-a", formatIndices(active))
		}
		if req.At != nil {
			// Location 1 anchors the window's top-left corner at the offsets.
			args = append(args,
				"-location", "1",
				"-xoffset", strconv.Itoa(req.At.X),
				"-yoffset", strconv.Itoa(req.At.Y),
			)
		}
		if req.Message != "" {
			args = append(args, "-mesg", html.EscapeString(req.Message))
		}

	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if req.Prompt != "" {
			args = append(args, "--prompt", req.Prompt+" ")
		}

	case kindWofi:
		args = []string{"--dmenu", "--allow-markup", "--allow-images"}
		if req.Prompt != "" {
			args = append(args, "--prompt", req.Prompt)
		}

	case kindDmenu:
		args = []string{"-i"}
		if req.Prompt != "" {
			args = append(args, "-p", req.Prompt)
		}
	}

	return args
}

func (b *launcher) formatInput(items []Item) (string, []int) {
	lines := make([]string, 0, len(items))
	var active []int

	// Backends that match by visible text (dmenu/wofi) need label disambiguation.
	if !b.caps.IndexOutput {
		seen := make(map[string]int)
		for i := range items {
			key := sanitizeLabel(items[i].Label)
			if key == "" {
				continue
			}
			if count := seen[key]; count > 0 {
				items[i].Label = fmt.Sprintf("%s (%d)", key, count+1)
			}
			seen[key]++
		}
	}

	for i, item := range items {
		lines = append(lines, b.formatItem(item))
		if item.IsActive && b.caps.RowStates {
			active = append(active, i)
		}
	}
	return strings.Join(lines, "\n"), active
}

func (b *launcher) formatItem(item Item) string {
	display := sanitizeLabel(item.Label)
	if b.caps.Markup {
		display = html.EscapeString(display)
	}

	// Rofi dmenu supports entry properties via a single NUL followed by
	// key/value pairs delimited by \x1f.
	if b.kind != kindRofi || item.Icon == "" {
		return display
	}
	return display + "\x00icon\x1f" + sanitizeRofiField(item.Icon)
}

func (b *launcher) parseSelection(selection string, items []Item) (Item, error) {
	if b.caps.IndexOutput {
		idx, err := strconv.Atoi(selection)
		if err != nil {
			return b.findByLabel(selection, items)
		}
		if idx < 0 || idx >= len(items) {
			return Item{}, fmt.Errorf("menu: index %d out of range", idx)
		}
		return items[idx], nil
	}
	return b.findByLabel(selection, items)
}

func (b *launcher) findByLabel(selection string, items []Item) (Item, error) {
	for _, item := range items {
		if sanitizeLabel(item.Label) == selection {
			return item, nil
		}
	}
	return Item{}, fmt.Errorf("menu: unknown selection %q", selection)
}

func sanitizeLabel(label string) string {
	label = strings.ReplaceAll(label, "\r", " ")
	label = strings.ReplaceAll(label, "\n", " ")
	return strings.TrimSpace(label)
}

func sanitizeRofiField(v string) string {
	v = strings.ReplaceAll(v, "\x00", "")
	v = strings.ReplaceAll(v, "\x1f", "")
	return sanitizeLabel(v)
}

func formatIndices(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

func isCancelExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	code := exitErr.ExitCode()
	return code == 1 || code == 130
}
