package cli

import (
	"fmt"
	"io"
	"sort"

	"iso-games-service/internal/config"
	"iso-games-service/internal/scenarios"

	"github.com/spf13/cobra"
)

// NewScenariosCmd prints pool statistics and validation results.
func NewScenariosCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "Describe and validate the scenario pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return reportPools(cmd.OutOrStdout(), cfg)
		},
	}
}

// reportPools writes one block per game and fails when any pool is invalid.
func reportPools(w io.Writer, cfg config.Config) error {
	pools, err := loadPools(cfg)
	if err != nil {
		return err
	}
	var invalid []string
	for _, g := range cfg.Games {
		pool := pools[g.ID]
		st := scenarios.Describe(pool)
		v := scenarios.Validate(pool)

		fmt.Fprintf(w, "%s (%s)\n", g.ID, g.Name)
		fmt.Fprintf(w, "  scenarios:    %d\n", st.Total)
		fmt.Fprintf(w, "  languages:    %v\n", st.Languages)
		fmt.Fprintf(w, "  categories:   %s\n", formatCounts(st.Categories))
		fmt.Fprintf(w, "  difficulties: %s\n", formatCounts(st.Difficulties))
		for _, e := range v.Errors {
			fmt.Fprintf(w, "  error:   %s\n", e)
		}
		for _, warn := range v.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
		if !v.Valid || v.Total == 0 {
			invalid = append(invalid, g.ID)
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid scenario pools: %v", invalid)
	}
	return nil
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return out
}
