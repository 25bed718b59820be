package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameCreateCmd())
	cmd.AddCommand(newGameShowCmd())
	cmd.AddCommand(newGameJoinCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameRecruitCmd())
	cmd.AddCommand(newGameBuildCmd())
	cmd.AddCommand(newGameEndTurnCmd())

	return cmd
}

func gamePath(id string, suffix string) (string, error) {
	if _, err := strconv.ParseUint(id, 10, 32); err != nil {
		return "", fmt.Errorf("invalid game id %q", id)
	}
	return "/api/v1/games/" + id + suffix, nil
}

// parsePosition reads a row and column from two positional arguments
func parsePosition(rowArg, colArg string) (Position, error) {
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return Position{}, fmt.Errorf("invalid row: %w", err)
	}
	col, err := strconv.Atoi(colArg)
	if err != nil {
		return Position{}, fmt.Errorf("invalid col: %w", err)
	}
	return Position{Row: row, Col: col}, nil
}

func newGameCreateCmd() *cobra.Command {
	var (
		maxPlayers  int
		multiplayer bool
		mapSize     string
		botStrategy string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"max_players":    maxPlayers,
				"is_multiplayer": multiplayer,
				"map_size":       mapSize,
			}
			if botStrategy != "" {
				req["bot_strategy"] = botStrategy
			}

			var result Game
			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPlayers, "players", 2, "Number of player slots (1-4)")
	cmd.Flags().BoolVar(&multiplayer, "multiplayer", false, "Reserve a seat for a second human")
	cmd.Flags().StringVar(&mapSize, "map", "small", "Map size: small, medium, large")
	cmd.Flags().StringVar(&botStrategy, "bots", "", "Bot strategy: heuristic, random")

	return cmd
}

func newGameShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the game state and map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "")
			if err != nil {
				return err
			}

			var result Game
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Join a multiplayer game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "/join")
			if err != nil {
				return err
			}

			var result Game
			if err := client.Post(path, nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <from-row> <from-col> <to-row> <to-col>",
		Short: "Move a stack to a neighbouring tile",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "/move")
			if err != nil {
				return err
			}
			from, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			to, err := parsePosition(args[3], args[4])
			if err != nil {
				return err
			}

			var result MoveResult
			if err := client.Post(path, map[string]Position{"from": from, "to": to}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameRecruitCmd() *cobra.Command {
	var unitType string

	cmd := &cobra.Command{
		Use:   "recruit <id> <row> <col> <quantity>",
		Short: "Recruit units onto an owned tile",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "/recruit")
			if err != nil {
				return err
			}
			at, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("invalid quantity: %w", err)
			}

			req := map[string]any{
				"unit_type": unitType,
				"quantity":  quantity,
				"at":        at,
			}
			var result RecruitResult
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&unitType, "type", "infantry", "Unit type: infantry, tank, plane")

	return cmd
}

func newGameBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build <id> <row> <col> <building>",
		Short: "Construct or upgrade a building (base, gas_plant, tank_factory, plane_factory)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "/build")
			if err != nil {
				return err
			}
			at, err := parsePosition(args[1], args[2])
			if err != nil {
				return err
			}

			req := map[string]any{
				"building_type": args[3],
				"at":            at,
			}
			var result BuildResult
			if err := client.Post(path, req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newGameEndTurnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end-turn <id>",
		Short: "End your turn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := gamePath(args[0], "/end-turn")
			if err != nil {
				return err
			}

			var result EndTurnResult
			if err := client.Post(path, nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
