package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eringen/adminpanel"
	"github.com/eringen/adminpanel/api"
	"github.com/eringen/adminpanel/categories"
	"github.com/eringen/adminpanel/model"
	"github.com/eringen/adminpanel/resource"
)

// runList loads one collection through a Table and prints a page of it.
func runList(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: adminpanel list <blogs|key-features|types|categories> [-q filter] [-page n] [-size n]")
	}
	kind := args[0]
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	q := fs.String("q", "", "name filter")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", resource.DefaultPageSize, "page size")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	cfg, err := adminpanel.LoadConfig(configPath())
	if err != nil {
		return err
	}
	client := api.New(cfg.BackendURL, api.WithTimeout(cfg.RequestTimeout))
	ctx := context.Background()

	switch kind {
	case "blogs":
		t := resource.NewTable(client.Blogs().List, resource.WithPageSize[model.Blog](*size))
		return printTable(ctx, out, t, *q, *page, func(b model.Blog) []string {
			return []string{b.Category.Name, b.SortOrder.String(), b.Status.String()}
		})
	case "key-features":
		t := resource.NewTable(client.KeyFeatures().List, resource.WithPageSize[model.KeyFeature](*size))
		return printTable(ctx, out, t, *q, *page, func(k model.KeyFeature) []string {
			return []string{k.SortOrder.String(), k.Status.String()}
		})
	case "types":
		t := resource.NewTable(client.Types().List, resource.WithPageSize[model.Type](*size))
		return printTable(ctx, out, t, *q, *page, func(t model.Type) []string {
			return []string{t.Department, t.SortOrder.String(), t.Status.String()}
		})
	case "categories":
		s := categories.NewStore(client.Categories(api.Auth{Token: cfg.BackendToken}))
		if err := s.List(ctx); err != nil {
			return err
		}
		cats := resource.FilterByName(s.Categories(), *q)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, c := range resource.Paginate(cats, *page, *size) {
			fmt.Fprintf(w, "%s\t%s\n", c.ID, c.Name)
		}
		return w.Flush()
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
}

func printTable[T model.Entity](ctx context.Context, out io.Writer, t *resource.Table[T], q string, page int, cells func(T) []string) error {
	if err := t.Load(ctx); err != nil {
		return err
	}
	t.SetFilter(q)
	t.SetPage(page)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, it := range t.Current() {
		fmt.Fprintf(w, "%s\t%s", it.EntityID(), it.DisplayName())
		for _, c := range cells(it) {
			fmt.Fprintf(w, "\t%s", c)
		}
		fmt.Fprintln(w)
	}
	p := t.Pagination()
	fmt.Fprintf(w, "\npage %d of %d, %d items\n", p.PageNo, p.PageCount, p.TotalItems)
	return w.Flush()
}
