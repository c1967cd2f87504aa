package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/skillmonitor/internal/ui/page"
)

var renderUser string

var renderCommand = &cobra.Command{
	Use:   "render <dashboard|registro|perfil|analisis>",
	Short: "Print a page as served after its initial loads",
	Long: `Enters the view once against the configured backend, waits for its requests to
settle and prints the page HTML to stdout. Logs go to stderr.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(page.ViewDashboard), string(page.ViewRegistration), string(page.ViewProfile), string(page.ViewMarket)},
	RunE:      runRender,
}

func init() {
	renderCommand.Flags().StringVar(&renderUser, "user", "", "User id to preselect on the profile view")
}

func runRender(cmd *cobra.Command, args []string) error {
	v, ok := page.ParseView(args[0])
	if !ok {
		return fmt.Errorf("unknown view %q", args[0])
	}

	ctx := cmd.Context()
	cfg, err := setup(ctx, os.Stderr)
	if err != nil {
		return err
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	params := url.Values{}
	if renderUser != "" {
		params.Set("user", renderUser)
	}
	out, err := svc.Render(ctx, v, params)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", v, err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
