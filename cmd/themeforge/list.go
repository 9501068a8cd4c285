package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/themeforge/internal/catalog"
)

func newTemplatesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List base templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, false)
			if err != nil {
				return err
			}
			defer s.Close()
			return renderTemplates(cmd.OutOrStdout(), s.editor.Catalog())
		},
	}
}

func renderTemplates(w io.Writer, c *catalog.Catalog) error {
	title := cases.Title(language.English)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\tNAME\tSCHEMES")
	for _, ref := range c.Templates() {
		t, err := c.Lookup(ref)
		if err != nil {
			return err
		}
		schemes := t.SchemeNames()
		for i, name := range schemes {
			schemes[i] = title.String(name)
			if name == t.DefaultScheme {
				schemes[i] += "*"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ref, t.Name, strings.Join(schemes, ", "))
	}
	return tw.Flush()
}

func newComposablesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "composables",
		Short: "List composables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, false)
			if err != nil {
				return err
			}
			defer s.Close()
			return renderComposables(cmd.OutOrStdout(), s.editor.Catalog())
		},
	}
}

func renderComposables(w io.Writer, c *catalog.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tDESCRIPTION")
	for _, comp := range c.Composables() {
		kind := "static"
		if comp.IsDynamic() {
			kind = "dynamic"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", comp.ID, kind, comp.Description)
	}
	return tw.Flush()
}

func newDesignsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "designs",
		Short: "Manage saved designs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved designs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close()

			designs, err := s.editor.Designs(cmd.Context())
			if err != nil {
				return err
			}
			if len(designs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved designs.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tUPDATED")
			for _, d := range designs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, d.UpdatedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a saved design",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, flags, true)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.editor.DeleteDesign(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}
