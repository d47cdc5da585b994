package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/magegihk/modinstaller/internal/catalog"
	moderrors "github.com/magegihk/modinstaller/internal/errors"
)

// catalogView is the printable form of a loaded catalog.
type catalogView struct {
	Offline  bool                  `json:"offline,omitempty" yaml:"offline,omitempty"`
	CachedAt *time.Time            `json:"cached_at,omitempty" yaml:"cached_at,omitempty"`
	APILink  string                `json:"api_link,omitempty" yaml:"api_link,omitempty"`
	Mods     []*catalog.Descriptor `json:"mods" yaml:"mods"`
}

func newCatalogView(res *catalog.Result, names []string) (*catalogView, error) {
	v := &catalogView{Offline: res.Offline, APILink: res.Catalog.APILink}
	if !res.CachedAt.IsZero() {
		at := res.CachedAt
		v.CachedAt = &at
	}

	if len(names) == 0 {
		v.Mods = res.Catalog.Descriptors()
		return v, nil
	}
	for _, name := range names {
		desc, ok := res.Catalog.Get(name)
		if !ok {
			return nil, moderrors.UnknownMod(name)
		}
		v.Mods = append(v.Mods, desc)
	}
	return v, nil
}

func (v *catalogView) String() string {
	var b strings.Builder
	if v.CachedAt != nil {
		fmt.Fprintf(&b, "Cached manifest from %s\n\n", v.CachedAt.Format("2006-01-02 15:04:05"))
	}
	if len(v.Mods) == 0 {
		b.WriteString("Catalog is empty.")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tFILES\tDEPENDENCIES\tOPTIONAL")
	for _, d := range v.Mods {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.Name,
			strings.Join(d.FileKeys(), ", "),
			orDash(strings.Join(d.Requires, ", ")),
			orDash(strings.Join(d.Optional, ", ")),
		)
	}
	_ = w.Flush()

	fmt.Fprintf(&b, "\n%d mods", len(v.Mods))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or refresh the mod catalog",
		Long: `The catalog is built from the mod manifest. The last manifest fetched is
cached so the catalog stays available with --offline.`,
	}

	cmd.AddCommand(newCatalogShowCmd())
	cmd.AddCommand(newCatalogRefreshCmd())

	return cmd
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show [mod...]",
		Short:             "Show catalog entries",
		ValidArgsFunction: completeCatalogMods,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := newModService(cmd, env)
			if err != nil {
				return err
			}

			res, err := svc.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			view, err := newCatalogView(res, args)
			if err != nil {
				return err
			}
			return writeOutput(env, view)
		},
	}
}

func newCatalogRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the manifest and update the cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			svc, err := newModService(cmd, env)
			if err != nil {
				return err
			}

			cat, err := svc.RefreshCatalog(cmd.Context())
			if err != nil {
				return err
			}
			return writeOutput(env, &catalogView{APILink: cat.APILink, Mods: cat.Descriptors()})
		},
	}
}
