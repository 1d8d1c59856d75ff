package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lifecat/internal/models"
)

func newSearchCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search categories by name, grouped by main category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.svc.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return a.rn.Search(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the category hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return a.rn.Tree(cmd.OutOrStdout(), snap.Taxonomy.Tree(depth))
		},
	}
	cmd.Flags().IntVar(&depth, "depth", -1, "levels below the main categories to show (-1 for all)")
	return cmd
}

func newMainCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "main",
		Short: "List the main categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			return a.rn.List(cmd.OutOrStdout(), snap.Taxonomy.MainCategories())
		},
	}
}

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path <id>",
		Short: "Print the chain from the main category down to id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			path, err := a.svc.Path(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.rn.Path(cmd.OutOrStdout(), path)
		},
	}
}

func newDescendantsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "descendants <id>",
		Short: "List every category below id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ids, err := a.svc.Descendants(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"id": id, "descendant_ids": ids})
			}

			snap, err := a.svc.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			cats := make([]*models.Category, 0, len(ids))
			for _, d := range ids {
				if c, ok := snap.Taxonomy.Get(d); ok {
					cats = append(cats, c)
				}
			}
			return a.rn.List(cmd.OutOrStdout(), cats)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the ids as JSON")
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid category id %q", s)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
