package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// JobsCmd creates the jobs command with subcommands.
// The env parameter provides injectable dependencies for testing.
func JobsCmd(env *Env) *cobra.Command {
	var jobsDB string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect localization jobs",
		Long: `Inspect the localization jobs recorded by "dubline process".

Jobs live in a local database next to the config file.`,
		Example: `  dubline jobs list
  dubline jobs show 6f1c9c1e-...`,
	}

	cmd.PersistentFlags().StringVar(&jobsDB, "jobs-db", "", "Path to the jobs database (default: <config dir>/jobs.db)")

	cmd.AddCommand(jobsListCmd(env, &jobsDB))
	cmd.AddCommand(jobsShowCmd(env, &jobsDB))

	return cmd
}

// jobsListCmd creates the "jobs list" subcommand.
func jobsListCmd(env *Env, jobsDB *string) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all jobs, newest first",
		Example: `  dubline jobs list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsList(cmd, env, *jobsDB)
		},
	}
}

// jobsShowCmd creates the "jobs show" subcommand.
func jobsShowCmd(env *Env, jobsDB *string) *cobra.Command {
	return &cobra.Command{
		Use:     "show <id>",
		Short:   "Show one job's status, warnings, and error",
		Example: `  dubline jobs show 6f1c9c1e-...`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJobsShow(cmd, env, *jobsDB, args[0])
		},
	}
}

// runJobsList handles the "jobs list" command.
func runJobsList(cmd *cobra.Command, env *Env, jobsDB string) error {
	ctx := cmd.Context()

	dbPath, err := jobsDBPath(jobsDB)
	if err != nil {
		return err
	}
	store, err := env.StoreOpener.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	jobs, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(env.Stdout, "No jobs yet.")
		return nil
	}

	w := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tFILENAME")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			j.ID, j.Status, j.CreatedAt.Local().Format(time.DateTime), j.Filename)
	}
	return w.Flush()
}

// runJobsShow handles the "jobs show" command.
func runJobsShow(cmd *cobra.Command, env *Env, jobsDB, id string) error {
	ctx := cmd.Context()

	dbPath, err := jobsDBPath(jobsDB)
	if err != nil {
		return err
	}
	store, err := env.StoreOpener.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	j, err := store.Get(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stdout, "ID:       %s\n", j.ID)
	fmt.Fprintf(env.Stdout, "Filename: %s\n", j.Filename)
	fmt.Fprintf(env.Stdout, "Status:   %s\n", j.Status)
	if j.OriginalLanguage != "" {
		fmt.Fprintf(env.Stdout, "Language: %s\n", j.OriginalLanguage)
	}
	fmt.Fprintf(env.Stdout, "Created:  %s\n", j.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(env.Stdout, "Updated:  %s\n", j.UpdatedAt.Local().Format(time.DateTime))
	if j.Error != "" {
		fmt.Fprintf(env.Stdout, "Error:    %s\n", j.Error)
	}
	if len(j.Warnings) > 0 {
		fmt.Fprintln(env.Stdout, "Warnings:")
		for _, warning := range j.Warnings {
			fmt.Fprintf(env.Stdout, "  - %s\n", warning)
		}
	}
	return nil
}
