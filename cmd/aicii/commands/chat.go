package commands

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/alswn8268/ai-cii/internal/logging"
	"github.com/alswn8268/ai-cii/internal/rag"
	"github.com/alswn8268/ai-cii/internal/tracing"
)

// NewChatCmd constructs the `aicii chat` subcommand: a one-shot recommendation
// query from the terminal, using the same pipeline as POST /api/v1/chat.
func NewChatCmd() *cobra.Command {
	var (
		lat    float64
		lng    float64
		budget int
		k      int
	)

	cmd := &cobra.Command{
		Use:   "chat <query>",
		Short: "Ask for a restaurant recommendation from the command line",
		Example: `  aicii chat "강남역 근처 이탈리안 맛집 추천해줘" --lat 37.498 --lng 127.028 --budget 30000
  aicii chat "혼밥하기 좋은 국밥집" --k 3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if handler, flush, ok := tracing.Setup(); ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
			}

			svc, _, cleanup, err := buildService(ctx, log)
			if err != nil {
				return err
			}
			defer cleanup()

			req := &rag.ChatRequest{
				Query: strings.Join(args, " "),
				K:     k,
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

			result, err := svc.Chat(ctx, req)
			if err != nil {
				return err
			}

			fmt.Println(result.Answer)
			if len(result.Results) > 0 {
				fmt.Println()
				fmt.Println("참고한 맛집:")
				printHits(result.Results)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the user location")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the user location")
	cmd.Flags().IntVar(&budget, "budget", 0, "Per-person budget in won")
	cmd.Flags().IntVar(&k, "k", 5, "Number of candidates to retrieve")

	return cmd
}

// printHits renders ranked hits as a numbered list.
func printHits(hits []rag.Hit) {
	for i, h := range hits {
		fmt.Printf("%d. %s (%s, %s)", i+1, h.Data.Name, h.Data.Category, h.Data.Location)
		if h.Data.Price > 0 {
			fmt.Printf(", %d원", h.Data.Price)
		}
		if h.Data.Rating > 0 {
			fmt.Printf(" ★%.1f", h.Data.Rating)
		}
		fmt.Printf(" [score %.4f]\n", h.Score)
	}
}
