package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/schooladmin/schooladmin/internal/app"
	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
)

var now = time.Now // mockable

type commandLine struct {
	db  *store.DB
	svc app.Services
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:          "schooladmin",
		Short:        "Administer the school records database",
		SilenceUsage: true,
	}
	root.AddCommand(cli.migrateCmd(), cli.seedCmd(), cli.statsCmd(), cli.studentsCmd())
	return root
}

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and indexes when missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cli.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database migrated")
			return nil
		},
	}
}

func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Add demo students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := app.Seed(cmd.Context(), cli.svc.Students)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d students added\n", n)
			return nil
		},
	}
}

func (cli *commandLine) statsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard figures as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := model.DateOf(now())
			if date != "" {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				day = d
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cli.svc.Dashboard.Stats(cmd.Context(), day))
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to report on (YYYY-MM-DD), defaults to today")
	return cmd
}

func (cli *commandLine) studentsCmd() *cobra.Command {
	students := &cobra.Command{
		Use:   "students",
		Short: "Inspect the roster",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List students ordered by roll number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roster, err := cli.svc.Students.Search(cmd.Context(), search)
			if err != nil {
				return err
			}
			return printStudents(cmd.OutOrStdout(), roster)
		},
	}
	list.Flags().StringVar(&search, "search", "", "only students whose name, roll number or class contains this")
	students.AddCommand(list)
	return students
}

func printStudents(w io.Writer, list []model.Student) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROLL\tNAME\tCLASS")
	for _, s := range list {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.ID, s.RollNumber, s.Name, s.Class)
	}
	return tw.Flush()
}
