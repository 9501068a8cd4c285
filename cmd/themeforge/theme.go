package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/themeforge/internal/catalog"
	"github.com/dshills/themeforge/internal/preview"
	"github.com/dshills/themeforge/internal/transfer"
)

type newOptions struct {
	base        string
	scheme      string
	composables []string
}

func newNewCmd(flags *rootFlags) *cobra.Command {
	opts := &newOptions{}

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create and save a design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openDesign(cmd, flags, "")
			if err != nil {
				return err
			}
			defer s.Close()

			e := s.editor
			if opts.base != "" {
				ref, err := catalog.ParseRef(opts.base)
				if err != nil {
					return err
				}
				if err := e.SetBaseTheme(ref); err != nil {
					return err
				}
			}
			if err := e.SetColorScheme(opts.scheme); err != nil {
				return err
			}
			for _, id := range opts.composables {
				if err := e.ToggleComposable(id, true); err != nil {
					return err
				}
			}

			d, err := e.Save(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", d.Name, d.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.base, "base", "", "Base template reference (static:<id> or imported:<id>)")
	cmd.Flags().StringVar(&opts.scheme, "scheme", "", "Color scheme")
	cmd.Flags().StringSliceVar(&opts.composables, "with", nil, "Composables to enable, in order")

	return cmd
}

type resolveOptions struct {
	export bool
}

func newResolveCmd(flags *rootFlags) *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [design]",
		Short: "Print the resolved configuration of a design",
		Long: "Print the resolved configuration. By default functions that fail fall back\n" +
			"to safe values; --export fails instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openDesign(cmd, flags, optionalArg(args))
			if err != nil {
				return err
			}
			defer s.Close()

			var tree map[string]any
			if opts.export {
				tree, err = s.editor.Export(cmd.Context())
			} else {
				tree, err = s.editor.Preview(cmd.Context())
			}
			if err != nil {
				return err
			}
			data, err := transfer.ExportTheme(tree)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", data)
		},
	}

	cmd.Flags().BoolVar(&opts.export, "export", false, "Resolve strictly, failing on any function error")

	return cmd
}

type exportOptions struct {
	modifications bool
	output        string
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <design>",
		Short: "Export a design's theme or modifications as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openDesign(cmd, flags, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			var data []byte
			if opts.modifications {
				data, err = s.editor.ExportModifications()
			} else {
				data, err = s.editor.ExportTheme(cmd.Context())
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd, opts.output, data)
		},
	}

	cmd.Flags().BoolVar(&opts.modifications, "modifications", false, "Export the edit set instead of the resolved theme")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

type importOptions struct {
	template string
	name     string
}

func newImportCmd(flags *rootFlags) *cobra.Command {
	opts := &importOptions{}

	cmd := &cobra.Command{
		Use:   "import <design|template-id> <file>",
		Short: "Import modifications into a design, or a theme as a template",
		Long: "Without --template the file is a modification set that replaces the edits\n" +
			"of the named design. With --template the file is a theme configuration\n" +
			"written to the catalog directory as a new template.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			if opts.template != "" {
				return importTemplate(cmd, flags, opts, data)
			}

			s, err := openDesign(cmd, flags, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.editor.ImportModifications(cmd.Context(), data); err != nil {
				return err
			}
			if _, err := s.editor.Save(cmd.Context(), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %s\n", args[1], s.editor.DesignName())
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.template, "template", "", "Import the file as a template with this id")
	cmd.Flags().StringVar(&opts.name, "name", "", "Display name for an imported template")

	return cmd
}

func importTemplate(cmd *cobra.Command, flags *rootFlags, opts *importOptions, data []byte) error {
	s, err := openSession(cmd, flags, false)
	if err != nil {
		return err
	}
	defer s.Close()

	dir := s.settings.Catalog.Dir
	if dir == "" {
		return errors.New("importing a template needs a catalog directory (--catalog)")
	}

	name := opts.name
	if name == "" {
		name = opts.template
	}
	if _, err := s.editor.ImportTemplate(opts.template, name, data); err != nil {
		return err
	}

	theme, err := s.editor.Export(cmd.Context())
	if err != nil {
		return err
	}
	themeJSON, err := transfer.ExportTheme(theme)
	if err != nil {
		return err
	}
	doc, err := sjson.SetBytes([]byte(`{}`), "name", name)
	if err != nil {
		return err
	}
	doc, err = sjson.SetRawBytes(doc, "theme", themeJSON)
	if err != nil {
		return err
	}

	target := filepath.Join(dir, catalog.TemplatesDir, opts.template+".json")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, pretty.Pretty(doc), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported template %s:%s to %s\n", catalog.RefImported, opts.template, target)
	return nil
}

func newPreviewCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [design]",
		Short: "Render a design's theme in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openDesign(cmd, flags, optionalArg(args))
			if err != nil {
				return err
			}
			defer s.Close()

			fmt.Fprintln(cmd.OutOrStdout(), preview.Render(s.editor.LiveTheme(cmd.Context())))
			return nil
		},
	}
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if !strings.HasSuffix(string(data), "\n") {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
