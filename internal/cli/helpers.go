package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/mesh-intelligence/shelf/pkg/shelf"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// openStore opens the configured record store. The caller must Close it.
func (a *app) openStore() (types.RecordStore, error) {
	store, _, err := shelf.OpenStore(a.storeConfig(), a.logger)
	if err != nil {
		return nil, sysError(fmt.Errorf("open store: %w", err))
	}
	return store, nil
}

// parseID reads a project id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("invalid project id %q", arg))
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal JSON: %w", err))
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func printProjects(w io.Writer, projects []types.Project) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tURL\tPATH")
	for _, p := range projects {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.URL, p.Path)
	}
	return tw.Flush()
}

func printProject(w io.Writer, p types.Project) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "id:\t%d\n", p.ID)
	fmt.Fprintf(tw, "name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "description:\t%s\n", p.Description)
	fmt.Fprintf(tw, "url:\t%s\n", p.URL)
	fmt.Fprintf(tw, "path:\t%s\n", p.Path)
	fmt.Fprintf(tw, "image:\t%s\n", p.Image)
	fmt.Fprintf(tw, "created:\t%s\n", p.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(tw, "updated:\t%s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return tw.Flush()
}
