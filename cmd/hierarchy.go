package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/internal/domain/hierarchy"
	"github.com/okian/skilltree/internal/domain/model"
	"github.com/spf13/cobra"
)

// Output formats of the hierarchy command.
const (
	formatJSON = "json"
	formatTree = "tree"
)

// cliCaller is the identity used by the hierarchy command: an admin without
// an employee record, so no subtree scoping applies.
var cliCaller = model.Caller{Email: "cli@localhost", Role: model.RoleAdmin}

func newHierarchyCmd(c *cli) *cobra.Command {
	var (
		p      filter.Params
		format string
	)
	cmd := &cobra.Command{
		Use:   "hierarchy",
		Short: "Print the org hierarchy with aggregated skill scores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatJSON && format != formatTree {
				return fmt.Errorf("unsupported --format %q (use %s or %s)", format, formatJSON, formatTree)
			}
			if p.ScoringMode == "" {
				p.ScoringMode = c.cfg.DefaultScoringMode
			}

			ctx := cmd.Context()
			svc := newService(c.cfg)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop()

			forest, err := svc.Hierarchy(ctx, p, cliCaller)
			if err != nil {
				return err
			}
			if format == formatJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(forest)
			}
			return renderTree(cmd.OutOrStdout(), forest)
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.ScoringMode, "scoring-mode", "", "average, team_readiness or coverage (default from config)")
	f.StringVar(&p.Skills, "skills", "", "comma-separated skill ids")
	f.StringVar(&p.Roles, "roles", "", "comma-separated departments")
	f.StringVar(&p.ManagerID, "manager-id", "", "root the output at this employee")
	f.StringVar(&p.NotAssessed, "not-assessed", "", "exclude or count_as_zero (default from settings)")
	f.StringVar(&format, "format", formatTree, "output format: json or tree")
	return cmd
}

// renderTree prints one line per node, indented by depth, followed by the
// node's skill scores. Missing scores print as "-".
func renderTree(w io.Writer, forest []*model.HierarchyNode) error {
	for _, row := range hierarchy.Flatten(forest) {
		n := row.Node
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", row.Depth))
		b.WriteString(n.Name)
		if n.Title != nil {
			b.WriteString(" (" + *n.Title + ")")
		}
		if n.IsManager {
			fmt.Fprintf(&b, " [%d direct, %d total]", n.DirectReportCount, n.TotalDescendantCount)
		}
		for _, s := range n.SkillScores {
			v := "-"
			if s.Score != nil {
				v = strconv.FormatFloat(*s.Score, 'f', 1, 64)
			}
			fmt.Fprintf(&b, " %s=%s", s.SkillName, v)
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("render tree: %w", err)
		}
	}
	return nil
}
