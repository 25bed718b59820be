package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/conquest-go/internal/dependencies/clock"
	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/bot"
	"github.com/mcoot/conquest-go/internal/services/combat"
	"github.com/mcoot/conquest-go/internal/services/economy"
	"github.com/mcoot/conquest-go/internal/services/mapgen"
	"github.com/mcoot/conquest-go/internal/services/turn"
	"github.com/mcoot/conquest-go/internal/storage"
)

const (
	// WinExperience is awarded to the winner of a finished game
	WinExperience = 100
	// PlayExperience is awarded to every other human who took part
	PlayExperience = 20
)

// CreateOptions holds the parameters of a new game
type CreateOptions struct {
	MaxPlayers    int
	IsMultiplayer bool
	MapSize       model.MapSize
	BotStrategy   string // empty selects the heuristic strategy
}

// Publisher receives the events produced by successful operations
type Publisher interface {
	Publish(event model.Event)
}

// Controller runs game sessions: creation, joining and every in-game action.
// Each operation loads the game, applies the change to that copy and saves
// it while holding the game's lock, so a failed operation stores nothing.
type Controller struct {
	storage   storage.Storage
	generator *mapgen.Generator
	resolver  *combat.Resolver
	ledger    *economy.Ledger
	turns     *turn.Controller
	bots      *bot.Service
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger

	locks *gameLocks
	// profileMu serialises read-modify-write cycles on profiles
	profileMu sync.Mutex
}

// NewController creates a new GameController
func NewController(
	storage storage.Storage,
	generator *mapgen.Generator,
	resolver *combat.Resolver,
	ledger *economy.Ledger,
	turns *turn.Controller,
	bots *bot.Service,
	publisher Publisher,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:   storage,
		generator: generator,
		resolver:  resolver,
		ledger:    ledger,
		turns:     turns,
		bots:      bots,
		publisher: publisher,
		clock:     clock,
		logger:    logger.With(slog.String("component", "game")),
		locks:     newGameLocks(),
	}
}

// CreateGame creates a game with the creator in slot 0 and bots in the slots
// no human will take
func (c *Controller) CreateGame(ctx context.Context, creator model.PlayerID, opts CreateOptions) (*model.Game, error) {
	if opts.MaxPlayers < 1 || opts.MaxPlayers > model.MaxPlayers {
		return nil, model.ErrInvalidMaxPlayers
	}
	if opts.IsMultiplayer && opts.MaxPlayers < 2 {
		return nil, model.ErrInvalidMaxPlayers
	}
	if _, err := model.ParseMapSize(string(opts.MapSize)); err != nil {
		return nil, err
	}
	if opts.BotStrategy == "" {
		opts.BotStrategy = model.BotStrategyHeuristic
	}
	if !c.bots.HasStrategy(opts.BotStrategy) {
		return nil, model.ErrInvalidBotStrategy
	}

	now := c.clock.Now()

	game, err := c.storeNewGame(ctx, creator, opts, now)
	if err != nil {
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", game.ID.String()),
		slog.String("creator", string(creator)),
		slog.Int("max_players", game.MaxPlayers),
		slog.Bool("multiplayer", game.IsMultiplayer),
		slog.String("map_size", string(game.MapSize)),
	)
	c.publish(game, creator, model.EventGameCreated, nil)
	if game.Status == model.GameStatusLive {
		c.publish(game, creator, model.EventGameStarted, nil)
	}
	return game, nil
}

// storeNewGame allocates the id and stores the game with the creator's profile
func (c *Controller) storeNewGame(ctx context.Context, creator model.PlayerID, opts CreateOptions, now time.Time) (*model.Game, error) {
	c.profileMu.Lock()
	defer c.profileMu.Unlock()

	return c.storage.CreateGame(ctx, creator, func(id model.GameID, profile *model.PlayerProfile) (*model.Game, error) {
		if !profile.CanJoinAnotherGame() {
			return nil, model.ErrTooManyActiveGames
		}
		g, err := c.newGame(id, creator, opts, now)
		if err != nil {
			return nil, err
		}
		g.MustHoldInvariants()

		profile.AddActiveGame(id)
		profile.UpdatedAt = now
		return g, nil
	})
}

// newGame lays out the map and seats the creator and any bots
func (c *Controller) newGame(id model.GameID, creator model.PlayerID, opts CreateOptions, now time.Time) (*model.Game, error) {
	g := &model.Game{
		ID:            id,
		Creator:       creator,
		Status:        model.GameStatusNotStarted,
		IsMultiplayer: opts.IsMultiplayer,
		MaxPlayers:    opts.MaxPlayers,
		MapSize:       opts.MapSize,
		BotStrategy:   opts.BotStrategy,
		Round:         1,
		TurnTimestamp: now.UnixMilli(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if !opts.IsMultiplayer {
		g.Status = model.GameStatusLive
	}

	tiles, err := c.generator.Generate(opts.MapSize, mapgen.Seed(id, now))
	if err != nil {
		return nil, err
	}
	g.Tiles = tiles

	if err := c.seat(g, 0, creator, false); err != nil {
		return nil, err
	}
	for slot := g.RequiredHumans(); slot < g.MaxPlayers; slot++ {
		if err := c.seat(g, slot, model.BotPlayerID(id, slot), true); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// seat fills a slot and hands it its base
func (c *Controller) seat(g *model.Game, slot int, player model.PlayerID, isBot bool) error {
	g.Players[slot] = &model.PlayerSlot{
		Player:       player,
		IsBot:        isBot,
		IsAlive:      true,
		Balance:      model.StartingBalance,
		AttackPoints: model.StartingAttackPoints,
		SlotIndex:    slot,
	}
	_, err := c.generator.PlaceBase(g, slot, player)
	return err
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// JoinGame seats a second human in a multiplayer game, starting it once the
// human slots are filled
func (c *Controller) JoinGame(ctx context.Context, gameID model.GameID, player model.PlayerID) (*model.Game, error) {
	unlock := c.locks.lock(gameID)
	defer unlock()
	c.profileMu.Lock()
	defer c.profileMu.Unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if !game.IsMultiplayer {
		return nil, model.ErrGameIsSinglePlayer
	}
	if game.Status != model.GameStatusNotStarted {
		return nil, model.ErrGameAlreadyStarted
	}
	if idx, _ := game.SlotOf(player); idx >= 0 {
		return nil, model.ErrPlayerAlreadyInGame
	}
	slot := -1
	for i := 0; i < game.MaxPlayers; i++ {
		if game.Players[i] == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, model.ErrGameIsFull
	}

	profile, err := c.storage.GetProfile(ctx, player)
	if err != nil {
		return nil, err
	}
	if !profile.CanJoinAnotherGame() {
		return nil, model.ErrTooManyActiveGames
	}

	if err := c.seat(game, slot, player, false); err != nil {
		return nil, err
	}
	started := game.Humans() >= game.RequiredHumans()
	if started {
		game.Status = model.GameStatusLive
	}

	now := c.clock.Now()
	game.UpdatedAt = now
	game.MustHoldInvariants()
	profile.AddActiveGame(gameID)
	profile.UpdatedAt = now

	if err := c.storage.SaveGame(ctx, game, profile); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", gameID.String()),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	base, _ := mapgen.BasePosition(game.MapSize, slot)
	c.logger.Info("player joined",
		slog.String("game_id", gameID.String()),
		slog.String("player_id", string(player)),
		slog.Int("slot", slot),
		slog.Bool("started", started),
	)
	c.publish(game, player, model.EventPlayerJoined, model.PlayerJoinedPayload{SlotIndex: slot, Base: base})
	if started {
		c.publish(game, player, model.EventGameStarted, nil)
	}
	return game, nil
}

// MoveUnit moves the whole stack on from to the adjacent tile to, fighting
// whatever stands there
func (c *Controller) MoveUnit(ctx context.Context, gameID model.GameID, player model.PlayerID, from, to model.Position) (*combat.Outcome, error) {
	var out *combat.Outcome
	err := c.mutate(ctx, gameID, player, func(g *model.Game) ([]model.Event, error) {
		if _, err := c.turns.Authorize(g, player); err != nil {
			return nil, err
		}
		var err error
		out, err = c.resolver.Move(g, player, from, to)
		if err != nil {
			return nil, err
		}

		if !out.Combat {
			return []model.Event{c.event(g, player, model.EventUnitMoved, model.UnitMovedPayload{
				From:     out.From,
				To:       out.To,
				UnitType: out.UnitType,
				Quantity: out.Survivors,
			})}, nil
		}
		return []model.Event{c.event(g, player, model.EventCombatResolved, model.CombatResolvedPayload{
			From:             out.From,
			To:               out.To,
			Defender:         out.Defender,
			AttackerQuantity: out.AttackerQuantity,
			DefenderQuantity: out.DefenderQuantity,
			Survivors:        out.Survivors,
			Captured:         out.Kind == combat.OutcomeCaptured,
			BaseDestroyed:    out.BaseDestroyed,
		})}, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecruitUnits buys units onto a tile the player owns
func (c *Controller) RecruitUnits(ctx context.Context, gameID model.GameID, player model.PlayerID, unitType model.UnitType, quantity int, pos model.Position) (*economy.RecruitResult, error) {
	var res *economy.RecruitResult
	err := c.mutate(ctx, gameID, player, func(g *model.Game) ([]model.Event, error) {
		if _, err := c.turns.Authorize(g, player); err != nil {
			return nil, err
		}
		var err error
		res, err = c.ledger.Recruit(g, player, unitType, quantity, pos)
		if err != nil {
			return nil, err
		}
		return []model.Event{c.event(g, player, model.EventUnitsRecruited, model.UnitsRecruitedPayload{
			Position: pos,
			UnitType: unitType,
			Quantity: uint16(quantity),
			Cost:     res.Cost,
		})}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// BuildConstruction builds or upgrades a building on a tile the player owns
func (c *Controller) BuildConstruction(ctx context.Context, gameID model.GameID, player model.PlayerID, pos model.Position, buildingType model.BuildingType) (*economy.BuildResult, error) {
	var res *economy.BuildResult
	err := c.mutate(ctx, gameID, player, func(g *model.Game) ([]model.Event, error) {
		if _, err := c.turns.Authorize(g, player); err != nil {
			return nil, err
		}
		var err error
		res, err = c.ledger.Build(g, player, pos, buildingType)
		if err != nil {
			return nil, err
		}
		return []model.Event{c.event(g, player, model.EventConstructionBuilt, model.ConstructionBuiltPayload{
			Position:     pos,
			BuildingType: buildingType,
			Level:        res.Level,
			Cost:         res.Cost,
		})}, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// EndTurn passes play to the next human, running bot turns on wrap
func (c *Controller) EndTurn(ctx context.Context, gameID model.GameID, player model.PlayerID) (*turn.Result, error) {
	var res *turn.Result
	err := c.mutate(ctx, gameID, player, func(g *model.Game) ([]model.Event, error) {
		var err error
		res, err = c.turns.EndTurn(g, player, c.clock.Now().UnixMilli())
		if err != nil {
			return nil, err
		}

		var events []model.Event
		for _, bt := range res.BotTurns {
			events = append(events, c.event(g, g.Players[bt.SlotIndex].Player, model.EventBotActed, model.BotActedPayload{
				SlotIndex: bt.SlotIndex,
				Actions:   len(bt.Actions),
			}))
		}
		next := g.CurrentPlayer()
		events = append(events, c.event(g, player, model.EventTurnEnded, model.TurnEndedPayload{
			Round:              g.Round,
			CurrentPlayerIndex: g.CurrentPlayerIndex,
			NextPlayer:         next.Player,
			Income:             res.Income,
			TurnTimestamp:      g.TurnTimestamp,
		}))
		if res.Finished {
			events = append(events, c.event(g, g.Winner, model.EventGameFinished, model.GameFinishedPayload{
				Winner: g.Winner,
				Round:  g.Round,
			}))
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// mutate loads a game, applies apply to it and stores the result. Nothing is
// stored when apply fails. A game that finished during apply also closes the
// game on every human participant's profile.
func (c *Controller) mutate(ctx context.Context, gameID model.GameID, player model.PlayerID, apply func(g *model.Game) ([]model.Event, error)) error {
	unlock := c.locks.lock(gameID)
	defer unlock()

	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	wasStatus := game.Status

	events, err := apply(game)
	if err != nil {
		c.logger.Debug("action rejected",
			slog.String("game_id", gameID.String()),
			slog.String("player_id", string(player)),
			slog.String("error", err.Error()),
		)
		return err
	}

	if !wasStatus.CanTransitionTo(game.Status) {
		panic(fmt.Sprintf("game %d: status moved backwards from %s to %s", game.ID, wasStatus, game.Status))
	}
	game.UpdatedAt = c.clock.Now()
	game.MustHoldInvariants()

	var profiles []*model.PlayerProfile
	if wasStatus != model.GameStatusFinished && game.Status == model.GameStatusFinished {
		c.profileMu.Lock()
		defer c.profileMu.Unlock()
		profiles, err = c.completeProfiles(ctx, game)
		if err != nil {
			return err
		}
	}

	if err := c.storage.SaveGame(ctx, game, profiles...); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", gameID.String()),
			slog.String("error", err.Error()),
		)
		return err
	}

	for _, e := range events {
		c.logger.Info(string(e.Type),
			slog.String("game_id", gameID.String()),
			slog.String("player_id", string(e.PlayerID)),
			slog.Int("round", int(game.Round)),
		)
		if c.publisher != nil {
			c.publisher.Publish(e)
		}
	}
	return nil
}

// completeProfiles moves a finished game from active to completed on each
// human's profile
func (c *Controller) completeProfiles(ctx context.Context, game *model.Game) ([]*model.PlayerProfile, error) {
	now := c.clock.Now()
	var profiles []*model.PlayerProfile
	for _, slot := range game.Players {
		if slot == nil || slot.IsBot {
			continue
		}
		profile, err := c.storage.GetProfile(ctx, slot.Player)
		if err != nil {
			return nil, err
		}
		experience := uint32(PlayExperience)
		if slot.Player == game.Winner {
			experience = WinExperience
		}
		profile.CompleteGame(game.ID, experience)
		profile.UpdatedAt = now
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func (c *Controller) event(g *model.Game, player model.PlayerID, eventType model.EventType, payload any) model.Event {
	return model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		GameID:    g.ID,
		PlayerID:  player,
		Payload:   payload,
	}
}

func (c *Controller) publish(g *model.Game, player model.PlayerID, eventType model.EventType, payload any) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(c.event(g, player, eventType, payload))
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, creator model.PlayerID, opts CreateOptions) (*model.Game, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	JoinGame(ctx context.Context, gameID model.GameID, player model.PlayerID) (*model.Game, error)
	MoveUnit(ctx context.Context, gameID model.GameID, player model.PlayerID, from, to model.Position) (*combat.Outcome, error)
	RecruitUnits(ctx context.Context, gameID model.GameID, player model.PlayerID, unitType model.UnitType, quantity int, pos model.Position) (*economy.RecruitResult, error)
	BuildConstruction(ctx context.Context, gameID model.GameID, player model.PlayerID, pos model.Position, buildingType model.BuildingType) (*economy.BuildResult, error)
	EndTurn(ctx context.Context, gameID model.GameID, player model.PlayerID) (*turn.Result, error)
}

var _ ControllerInterface = (*Controller)(nil)
