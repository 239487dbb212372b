package commands

import (
	"MyPass/internal/cli/api"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newItemsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage vault items",
	}
	cmd.AddCommand(newItemsListCmd(a), newItemsGetCmd(a), newItemsAddCmd(a), newItemsRmCmd(a))
	return cmd
}

func parseID(cmd *cobra.Command, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErr(cmd, fmt.Sprintf("invalid item id %q", s))
	}
	return id, nil
}

func printItem(w io.Writer, it *api.Item) {
	_, _ = keyColor.Fprintf(w, "#%d %s", it.ID, it.Name)
	fmt.Fprintf(w, " (%s)\n", it.TypeTitle)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, f := range it.Fields {
		v := f.Value
		if f.Unreadable {
			v = "<unreadable>"
		}
		fmt.Fprintf(tw, "  %s\t%s\n", f.Key, v)
	}
	_ = tw.Flush()
}

func newItemsListCmd(a *app) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vault items (values masked unless --reveal)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(true)
			if err != nil {
				return err
			}
			items, err := c.ListItems(cmd.Context(), reveal)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No items")
				return nil
			}
			for i := range items {
				printItem(out, &items[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show field values")
	return cmd
}

func newItemsGetCmd(a *app) *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one vault item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := a.client(true)
			if err != nil {
				return err
			}
			it, err := c.GetItem(cmd.Context(), id, reveal)
			if err != nil {
				return err
			}
			printItem(cmd.OutOrStdout(), it)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show field values")
	return cmd
}

func newItemsAddCmd(a *app) *cobra.Command {
	var typ, name string
	var fields []string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a vault item",
		Long: `Adds an item. Fields are given as key=value.

Example:
  vaultctl items add --type login --name Email --field user=alice --field pass=secret1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := api.NewItem{Type: typ, Name: name}
			for _, kv := range fields {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return usageErr(cmd, fmt.Sprintf("field %q must be key=value", kv))
				}
				in.Fields = append(in.Fields, api.Field{Key: k, Value: v})
			}
			c, err := a.client(true)
			if err != nil {
				return err
			}
			it, err := c.AddItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Item #%d created", it.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "login", "login | credit_card | identity | secure_note")
	cmd.Flags().StringVarP(&name, "name", "n", "", "item name")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field as key=value (repeatable)")
	return cmd
}

func newItemsRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a vault item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(cmd, args[0])
			if err != nil {
				return err
			}
			c, err := a.client(true)
			if err != nil {
				return err
			}
			if err := c.DeleteItem(cmd.Context(), id); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Item #%d deleted", id)
			return nil
		},
	}
}
