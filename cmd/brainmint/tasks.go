package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nhle/brainmint/internal/board"
	"github.com/nhle/brainmint/internal/model"
	"github.com/nhle/brainmint/internal/view"
)

// taskQuery holds the listing flags of the tasks command.
type taskQuery struct {
	search   string
	priority string
	status   string
	sprint   string
	sort     string
	desc     bool
	page     int
	perPage  int
}

// criteria converts the flags into view criteria.
func (q taskQuery) criteria() (view.Criteria, error) {
	c := view.Criteria{Search: q.search}
	if q.priority != "" {
		p, err := model.ParsePriority(q.priority)
		if err != nil {
			return c, err
		}
		c.Priority = p
	}
	if q.status != "" {
		s, err := model.ParseStatus(q.status)
		if err != nil {
			return c, err
		}
		c.Status = s
	}
	f, err := view.ParseSprintFilter(q.sprint)
	if err != nil {
		return c, err
	}
	c.Sprint = f
	return c, nil
}

func newTasksCmd(configPath *string) *cobra.Command {
	var (
		flags clientFlags
		q     taskQuery
	)

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Long:  "Lists the user's tasks filtered, sorted and paginated the same way as the Backlog tab.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, err := clientSetup(cmd, *configPath, &flags)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cfg))
			defer cancel()

			coll, err := board.Load(ctx, st, cfg.API.UserID)
			if err != nil {
				return fmt.Errorf("loading tasks: %w", err)
			}
			page, err := queryTasks(coll.Tasks(), q)
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), page)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&q.search, "search", "", "case-insensitive title substring")
	cmd.Flags().StringVar(&q.priority, "priority", "", "High, Medium or Low")
	cmd.Flags().StringVar(&q.status, "status", "", "todo, progress, review or done")
	cmd.Flags().StringVar(&q.sprint, "sprint", "", "none for the backlog, or a sprint id")
	cmd.Flags().StringVar(&q.sort, "sort", string(view.SortTitle), "title, priority, dueDate, status or sprint")
	cmd.Flags().BoolVar(&q.desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&q.page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.perPage, "per-page", 20, "tasks per page")
	return cmd
}

// queryTasks filters, sorts and paginates tasks by q.
func queryTasks(tasks []model.Task, q taskQuery) (view.Page, error) {
	c, err := q.criteria()
	if err != nil {
		return view.Page{}, err
	}
	key, err := view.ParseSortKey(q.sort)
	if err != nil {
		return view.Page{}, err
	}
	dir := view.Asc
	if q.desc {
		dir = view.Desc
	}
	return view.Paginate(view.Sort(view.Filter(tasks, c), key, dir), q.page, q.perPage), nil
}

func printTasks(out io.Writer, page view.Page) {
	if page.TotalItems == 0 {
		fmt.Fprintln(out, "No tasks match.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tPRIORITY\tSTATUS\tDUE\tSPRINT\tPROGRESS")
	for _, t := range page.Items {
		sprint := t.SprintName
		if t.InBacklog() {
			sprint = "-"
		}
		due := t.DueKey()
		if due == "" {
			due = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d%%\n",
			t.ID, t.Title, t.Priority, t.Status.Label(), due, sprint, t.Progress)
	}
	w.Flush()
	fmt.Fprintf(out, "page %d of %d · %d tasks\n", page.Page, page.TotalPages, page.TotalItems)
}
