package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/linkmapper/internal/linktable"
	"github.com/mesh-intelligence/linkmapper/pkg/types"
)

// reportJSON is the --json form of a link table summary.
type reportJSON struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Corridors  int            `json:"corridors"`
	Components int            `json:"components"`
	Dropped    int            `json:"dropped"`
	ByType     map[string]int `json:"by_type"`
	Types      []typeJSON     `json:"types"`
}

// typeJSON describes the links of one link type code.
type typeJSON struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
	Count       int    `json:"count"`
}

func newReportCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report <table.csv>",
		Short: "Summarize a link table",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := linktable.ReadFile(args[0])
			if err != nil {
				return err
			}
			sum := t.Summarize()
			if !flags.jsonMode {
				fmt.Fprint(cmd.OutOrStdout(), sum.String())
				return nil
			}
			rep := reportJSON{
				Total:      sum.Total,
				Active:     sum.Active,
				Corridors:  sum.Corridors,
				Components: sum.Components,
				Dropped:    sum.Dropped(),
				ByType:     make(map[string]int, len(sum.ByType)),
			}
			for lt, n := range sum.ByType {
				rep.ByType[strconv.Itoa(int(lt))] = n
				active, desc := types.LinkTypeDesc(int(lt))
				rep.Types = append(rep.Types, typeJSON{Code: int(lt), Description: desc, Active: active, Count: n})
			}
			slices.SortFunc(rep.Types, func(a, b typeJSON) int { return a.Code - b.Code })
			return writeJSON(cmd, rep)
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
