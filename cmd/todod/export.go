package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sandeepkv93/todod/internal/collection"
	"github.com/sandeepkv93/todod/internal/export"
	"github.com/sandeepkv93/todod/internal/model"
	"github.com/sandeepkv93/todod/internal/session"
	"github.com/spf13/cobra"
)

func exportCmd(configPath *string) *cobra.Command {
	var (
		username string
		pin      string
		format   string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every task of an account as markdown, JSON or CSV",
		Long: `Export signs in with the given account and writes all of its tasks,
ignoring any filters. Without --out the document goes to stdout.

Examples:
  todod export --user alice --pin 1234
  todod export --user alice --pin 1234 --format csv --out tasks.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if pin == "" {
				pin = os.Getenv("TODOD_PIN")
			}

			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			acc, err := a.auth().Login(ctx, username, pin)
			if err != nil {
				return err
			}
			sess, snap := session.Start(ctx, a.repo, acc, a.sessionOptions())
			switch err := sess.LoadErr(); {
			case errors.Is(err, collection.ErrSkippedRecords):
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", snap.Notice.Text)
			case err != nil:
				return fmt.Errorf("load tasks: %w", err)
			}

			tasks := sess.Tasks()
			opts := export.Options{
				Title: fmt.Sprintf("%s's tasks", acc.Username),
				Today: model.DateOf(time.Now()),
			}
			if out == "" {
				return export.Write(cmd.OutOrStdout(), f, tasks, opts)
			}
			if err := export.WriteFile(out, f, tasks, opts); err != nil {
				return err
			}
			a.log.Info("exported tasks", "user", acc.Username, "path", out, "format", f, "count", len(tasks))
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d task(s) to %s\n", len(tasks), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "account username")
	cmd.Flags().StringVar(&pin, "pin", "", "account PIN (defaults to $TODOD_PIN)")
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatMarkdown), "markdown, json or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
