package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dshills/themeforge/internal/app"
	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/preview"
	"github.com/dshills/themeforge/internal/transfer"
)

const editHelp = `Commands:
  set <path> <value>     write a literal or function source
  unset <path>           reset a path to the base value
  field <path>           show a path's value and state
  show [path]            print the preview configuration
  diff                   list paths changed by uncommitted edits
  commit | discard       commit or drop uncommitted edits
  undo | redo            step through history
  history                list history entries
  toggle <id> on|off     enable or disable a composable
  base <ref>             change the base template
  scheme <name>          select a color scheme ("" for the default)
  render                 draw the live theme
  save [name]            save the design
  quit                   leave (refused while edits are uncommitted)`

func newEditCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [design]",
		Short: "Edit a design interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openDesign(cmd, flags, optionalArg(args))
			if err != nil {
				return err
			}
			defer s.Close()

			r := &repl{editor: s.editor, out: cmd.OutOrStdout()}
			return r.run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

type repl struct {
	editor *app.Editor
	out    io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	r.prompt()
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := r.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		r.prompt()
	}
	return scanner.Err()
}

func (r *repl) prompt() {
	name := r.editor.DesignName()
	if name == "" {
		name = "unsaved"
	}
	mark := ""
	if r.editor.Store().IsDirty() {
		mark = "*"
	}
	fmt.Fprintf(r.out, "%s%s> ", name, mark)
}

func (r *repl) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	e := r.editor

	switch cmd {
	case "":
		return nil
	case "help", "?":
		fmt.Fprintln(r.out, editHelp)
		return nil
	case "quit", "exit":
		if e.Store().IsDirty() {
			return app.ErrUnsavedChanges
		}
		return errQuit
	case "set":
		path, raw, ok := strings.Cut(rest, " ")
		if !ok {
			return errors.New("usage: set <path> <value>")
		}
		return e.SetValue(path, r.parseValue(strings.TrimSpace(raw)))
	case "unset":
		return e.ResetToBase(rest)
	case "field":
		return r.showField(ctx, rest)
	case "show":
		return r.show(ctx, rest)
	case "diff":
		changes, err := e.PendingChanges(ctx)
		if err != nil {
			return err
		}
		if changes.IsEmpty() {
			fmt.Fprintln(r.out, "no changes")
		}
		for _, p := range changes.Added {
			fmt.Fprintf(r.out, "+ %s\n", p)
		}
		for _, p := range changes.Modified {
			fmt.Fprintf(r.out, "~ %s\n", p)
		}
		for _, p := range changes.Removed {
			fmt.Fprintf(r.out, "- %s\n", p)
		}
		return nil
	case "commit":
		if _, err := e.Commit(ctx); err != nil {
			return err
		}
		return nil
	case "discard":
		e.Discard()
		return nil
	case "undo":
		step, ok := e.Store().PeekUndo()
		if !ok || !e.Store().Undo() {
			fmt.Fprintln(r.out, "nothing to undo")
			return nil
		}
		fmt.Fprintf(r.out, "undid %s\n", step.Label)
		return nil
	case "redo":
		step, ok := e.Store().PeekRedo()
		if !ok || !e.Store().Redo() {
			fmt.Fprintln(r.out, "nothing to redo")
			return nil
		}
		fmt.Fprintf(r.out, "redid %s\n", step.Label)
		return nil
	case "history":
		for i, info := range e.Store().History() {
			fmt.Fprintf(r.out, "%3d  %s  %s\n", i+1, info.Timestamp.Format("15:04:05"), info.Label)
		}
		return nil
	case "toggle":
		id, state, _ := strings.Cut(rest, " ")
		enabled, err := parseSwitch(state)
		if err != nil {
			return err
		}
		return e.ToggleComposable(id, enabled)
	case "base":
		ref, err := catalog.ParseRef(rest)
		if err != nil {
			return err
		}
		return e.SetBaseTheme(ref)
	case "scheme":
		return e.SetColorScheme(strings.Trim(rest, `"`))
	case "render":
		fmt.Fprintln(r.out, preview.Render(e.LiveTheme(ctx)))
		return nil
	case "save":
		d, err := e.Save(ctx, rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "saved %s (%s)\n", d.Name, d.ID)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (r *repl) showField(ctx context.Context, path string) error {
	f, err := r.editor.Field(ctx, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s = %v\n", f.Path, formatValue(f.Value))
	if f.IsControlledByFunction {
		fmt.Fprintf(r.out, "  function: %s\n", f.Function)
	}
	if f.IsOverridden {
		fmt.Fprintln(r.out, "  overridden")
	}
	return nil
}

func (r *repl) show(ctx context.Context, path string) error {
	tree, err := r.editor.Preview(ctx)
	if err != nil {
		return err
	}
	data, err := transfer.ExportTheme(tree)
	if err != nil {
		return err
	}
	if path != "" {
		v, ok := transfer.Lookup(data, path)
		if !ok {
			return fmt.Errorf("%s: %w", path, app.ErrInvalidPath)
		}
		fmt.Fprintln(r.out, formatValue(v))
		return nil
	}
	_, err = fmt.Fprintln(r.out, strings.TrimRight(string(data), "\n"))
	return err
}

// parseValue reads a typed value from the command line. Function sources
// are kept verbatim; JSON objects, arrays and quoted strings are decoded;
// numbers and booleans are typed; anything else is a plain string.
func (r *repl) parseValue(raw string) any {
	if r.editor.Resolver().Classifier().IsFunction(raw) {
		return raw
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, `"`) {
		if gjson.Valid(raw) {
			return gjson.Parse(raw).Value()
		}
	}
	return raw
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "(unset)"
	case string:
		return strconv.Quote(v)
	case map[string]any:
		data, err := transfer.ExportTheme(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return strings.TrimRight(string(data), "\n")
	default:
		return fmt.Sprint(v)
	}
}
