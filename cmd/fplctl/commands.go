package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/stitts-dev/fpl-scout/internal/analytics"
	"github.com/stitts-dev/fpl-scout/internal/api/middleware"
	"github.com/stitts-dev/fpl-scout/internal/models"
	"github.com/stitts-dev/fpl-scout/internal/services"
	"github.com/stitts-dev/fpl-scout/pkg/config"
	"github.com/stitts-dev/fpl-scout/pkg/database"
)

func recommendCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show the four recommendation lists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFeed(func(ctx context.Context, e *env) error {
				recs := e.players.Recommendations()
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), recs)
				}
				out := cmd.OutOrStdout()
				for _, r := range recs {
					fmt.Fprintf(out, "%s (confidence %d%%)\n", r.Title, r.Confidence)
					if len(r.Players) == 0 {
						fmt.Fprintln(out, "  no eligible players")
					}
					for i, p := range r.Players {
						fmt.Fprintf(out, "  %d. %-24s %-4s %-3s £%.1fm  %.1f pts\n", i+1, p.Name, p.Team, p.Position, p.Price, p.PredPtsGW)
					}
					fmt.Fprintln(out)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var rulesOnly bool
	cmd := &cobra.Command{
		Use:   "analyze <player-id>",
		Short: "Print the narrative assessment for one player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithFeed(func(ctx context.Context, e *env) error {
				player, err := e.players.Player(args[0])
				if err != nil {
					return err
				}

				opts := services.NarrativeOptions{TTL: e.cfg.NarrativeCacheTTL}
				if e.cfg.HasAI() && !rulesOnly {
					opts.Generator = services.NewClaudeClient(services.ClaudeConfig{
						APIKey:            e.cfg.AnthropicAPIKey,
						BaseURL:           e.cfg.AIBaseURL,
						Model:             e.cfg.AIModel,
						RequestsPerMinute: e.cfg.AIRateLimit,
						Timeout:           e.cfg.AITimeout,
					}, e.log)
				}
				narrative := services.NewNarrativeService(services.NewMemoryCache(), opts, e.log).Analyze(ctx, player)

				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"playerId":  player.ID,
					"name":      player.Name,
					"narrative": narrative,
				})
			})
		},
	}
	cmd.Flags().BoolVar(&rulesOnly, "rules-only", false, "Skip the external narrative generator")
	return cmd
}

type filterOptions struct {
	positions      []string
	teams          []string
	query          string
	minPrice       float64
	maxPrice       float64
	maxFDR         int
	noInjuryDoubts bool
	noRotationRisk bool
	sort           string
	dir            string
	limit          int
}

// spec turns the flags into a validated filter spec. Unset bounds stay open.
func (o filterOptions) spec() (analytics.FilterSpec, error) {
	spec := analytics.DefaultFilterSpec()
	for _, p := range o.positions {
		spec.Positions = append(spec.Positions, models.Position(strings.ToUpper(strings.TrimSpace(p))))
	}
	spec.Teams = append(spec.Teams, o.teams...)
	if o.minPrice > 0 {
		spec.Price.Min = o.minPrice
	}
	if o.maxPrice > 0 {
		spec.Price.Max = o.maxPrice
	}
	if o.maxFDR > 0 {
		spec.FDR.Max = float64(o.maxFDR)
	}
	spec.InjuryDoubts = !o.noInjuryDoubts
	spec.RotationRisk = !o.noRotationRisk
	return analytics.NewFilterSpec(spec)
}

// run evaluates the options against players and applies sort and limit.
func (o filterOptions) run(players []models.PlayerRecord) ([]models.PlayerRecord, error) {
	spec, err := o.spec()
	if err != nil {
		return nil, err
	}
	dir, err := analytics.ParseSortDirection(o.dir)
	if err != nil {
		return nil, err
	}
	out := analytics.Evaluate(players, spec, o.query)
	if o.sort != "" {
		if out, err = analytics.SortPlayers(out, o.sort, dir); err != nil {
			return nil, err
		}
	}
	if o.limit > 0 && len(out) > o.limit {
		out = out[:o.limit]
	}
	return out, nil
}

func filterCmd() *cobra.Command {
	var opts filterOptions
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List players matching a filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Reject bad flags before touching the network.
			if _, err := opts.spec(); err != nil {
				return err
			}
			return runWithFeed(func(ctx context.Context, e *env) error {
				players, err := opts.run(e.players.Players())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), players)
				}
				return writeTable(cmd.OutOrStdout(), players)
			})
		},
	}
	cmd.Flags().StringSliceVar(&opts.positions, "position", nil, "Positions to include (GK, DEF, MID, FWD)")
	cmd.Flags().StringSliceVar(&opts.teams, "team", nil, "Team short names to include")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Name or team substring")
	cmd.Flags().Float64Var(&opts.minPrice, "min-price", 0, "Minimum price in £m")
	cmd.Flags().Float64Var(&opts.maxPrice, "max-price", 0, "Maximum price in £m")
	cmd.Flags().IntVar(&opts.maxFDR, "max-fdr", 0, "Maximum next-fixture difficulty (1-5)")
	cmd.Flags().BoolVar(&opts.noInjuryDoubts, "no-injury-doubts", false, "Drop players who are not fully fit")
	cmd.Flags().BoolVar(&opts.noRotationRisk, "no-rotation-risk", false, "Clear the rotation-risk flag (drops players under 20% rotation risk)")
	cmd.Flags().StringVar(&opts.sort, "sort", "predPts_gw", "Sort key")
	cmd.Flags().StringVar(&opts.dir, "dir", "desc", "Sort direction (asc or desc)")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "Maximum rows, 0 for all")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Create or drop the audit tables",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, false)
			if err != nil {
				return err
			}
			defer db.Close()

			if args[0] == "down" {
				if err := database.DropAll(db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Tables dropped")
				return nil
			}
			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed")
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var subject, role string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the admin endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			token, err := middleware.IssueToken(cfg.JWTSecret, subject, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "fplctl", "Token subject")
	cmd.Flags().StringVar(&role, "role", middleware.RoleAdmin, "Token role")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTable(w io.Writer, players []models.PlayerRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTEAM\tPOS\tPRICE\tOWN%\tPRED\tNEXT\tFDR\tROT%\tSTATUS")
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\t%.1f\t%.1f\t%s\t%d\t%.0f\t%s\n",
			p.ID, p.Name, p.Team, p.Position, p.Price, p.Ownership, p.PredPtsGW,
			p.NextOpponent, p.NextOpponentFDR, p.RotationRiskPct, p.InjuryStatus)
	}
	return tw.Flush()
}
