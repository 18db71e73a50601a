package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alswn8268/ai-cii/internal/logging"
	"github.com/alswn8268/ai-cii/internal/rag"
)

// NewSearchCmd constructs the `aicii search` subcommand: retrieval without
// answer generation, using the same pipeline as GET /api/v1/search.
func NewSearchCmd() *cobra.Command {
	var (
		mode   string
		lat    float64
		lng    float64
		budget int
		k      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the restaurant index without generating an answer",
		Example: `  aicii search "파스타" --mode text
  aicii search "분위기 좋은 카페" --lat 37.556 --lng 126.923 --budget 15000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			m, err := rag.ParseMode(mode)
			if err != nil {
				return err
			}

			svc, _, cleanup, err := buildService(ctx, log)
			if err != nil {
				return err
			}
			defer cleanup()

			req := &rag.RetrievalRequest{
				Query: strings.Join(args, " "),
				K:     k,
				Mode:  m,
			}
			if cmd.Flags().Changed("lat") != cmd.Flags().Changed("lng") {
				return fmt.Errorf("--lat and --lng must be provided together")
			}
			if cmd.Flags().Changed("lat") {
				req.Lat, req.Lng = &lat, &lng
			}
			if cmd.Flags().Changed("budget") {
				req.Budget = &budget
			}

			hits, err := svc.Retrieve(ctx, req)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("검색 결과가 없습니다.")
				return nil
			}
			printHits(hits)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "hybrid", "Search mode: vector, text, or hybrid")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the user location")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the user location")
	cmd.Flags().IntVar(&budget, "budget", 0, "Per-person budget in won")
	cmd.Flags().IntVar(&k, "k", 5, "Number of results to return")

	return cmd
}
