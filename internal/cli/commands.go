package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

const lsHint = "Hint: run `todo ls` to see valid ids"

// -------------- subcommand impls ----------------

func doAdd(_ *cobra.Command, a *app, args []string) error {
	title := joinTitle(args)
	if title == "" {
		return usageErrorf("add: empty title")
	}
	t, err := a.store.Add(title)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	ui.OK(a.out, "added "+shortID(t.ID))
	return nil
}

func doEdit(_ *cobra.Command, a *app, args []string) error {
	t, err := resolve(a.store, args[0])
	if err != nil {
		return err
	}
	title := joinTitle(args[1:])
	if title == "" {
		return usageErrorf("edit: empty title")
	}
	if err := a.store.Update(t.ID, title); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	ui.OK(a.out, "updated")
	return nil
}

func doToggle(_ *cobra.Command, a *app, args []string) error {
	t, err := resolve(a.store, args[0])
	if err != nil {
		return err
	}
	if err := a.store.Toggle(t.ID); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	ui.OK(a.out, "toggled")
	return nil
}

func doRemove(_ *cobra.Command, a *app, args []string) error {
	t, err := resolve(a.store, args[0])
	if err != nil {
		return err
	}
	if err := a.store.Remove(t.ID); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	ui.OK(a.out, "removed")
	return nil
}

func doClear(_ *cobra.Command, a *app, _ []string) error {
	_, done := model.Split(a.store.Todos())
	for _, t := range done {
		if err := a.store.Remove(t.ID); err != nil {
			return fmt.Errorf("save: %w", err)
		}
	}
	ui.OK(a.out, fmt.Sprintf("cleared %d", len(done)))
	return nil
}

func doList(_ *cobra.Command, a *app, _ []string) error {
	todos := a.store.Todos()
	th := ui.Current()

	// Header + progress
	d, p := model.Stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		th.Title.Render("Todos"),
		th.Success.Render(th.SymDone), d,
		th.Pending.Render(th.SymPending), p,
		th.Accent.Render("Total"), len(todos),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, th.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if a.cfg.UI.Group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos, indexOf(todos))...)
	}
	lines = append(lines, "")
	lines = append(lines, th.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(a.out, lines)
	return nil
}

// resolve finds a todo by exact id, 1-based position, or unique id prefix,
// in that order.
func resolve(s *store.Store, ref string) (model.Todo, error) {
	if t, ok := s.Get(ref); ok {
		return t, nil
	}

	todos := s.Todos()
	n, numErr := strconv.Atoi(ref)
	if numErr == nil && n >= 1 && n <= len(todos) {
		return todos[n-1], nil
	}

	var matches []model.Todo
	if ref != "" {
		for _, t := range todos {
			if strings.HasPrefix(t.ID, ref) {
				matches = append(matches, t)
			}
		}
	}
	switch {
	case len(matches) == 1:
		return matches[0], nil
	case len(matches) > 1:
		return model.Todo{}, withHint(
			usageErrorf("ambiguous id %q matches %d todos", ref, len(matches)),
			"Hint: type more characters of the id")
	case numErr == nil:
		return model.Todo{}, withHint(
			usageErrorf("index out of range: have %d, got %d", len(todos), n), lsHint)
	}
	return model.Todo{}, withHint(usageErrorf("no such todo: %s", ref), lsHint)
}

// -------------- rendering helpers --------------

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func indexOf(todos []model.Todo) map[string]int {
	idx := make(map[string]int, len(todos))
	for i, t := range todos {
		idx[t.ID] = i + 1
	}
	return idx
}

func flatLines(todos []model.Todo, positions map[string]int) []string {
	th := ui.Current()
	if len(todos) == 0 {
		return []string{th.Muted.Render("no items")}
	}
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		idx := fmt.Sprintf("%2d.", positions[t.ID])
		box := th.Muted.Render(th.BoxUnchecked)
		title := t.Title
		if len([]rune(title)) > 80 {
			title = string([]rune(title)[:77]) + "..."
		}
		if t.Done {
			box = th.Success.Render(th.BoxChecked)
			title = th.Done.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s %s",
			th.Muted.Render(idx), box, th.Muted.Render(shortID(t.ID)), title))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	th := ui.Current()
	positions := indexOf(todos)
	pend, done := model.Split(todos)

	var lines []string
	lines = append(lines, th.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, th.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend, positions)...)
	}
	lines = append(lines, "")
	lines = append(lines, th.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, th.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done, positions)...)
	}
	return lines
}
