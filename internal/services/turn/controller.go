package turn

import (
	"github.com/mcoot/conquest-go/internal/model"
	"github.com/mcoot/conquest-go/internal/services/bot"
	"github.com/mcoot/conquest-go/internal/services/economy"
)

// BotTurn records what one bot did when its round came up
type BotTurn struct {
	SlotIndex int
	Actions   []bot.Action
}

// Result describes the effect of ending a turn
type Result struct {
	Income     uint32
	Wrapped    bool
	BotTurns   []BotTurn
	Eliminated []model.PlayerID
	Finished   bool
}

// Controller owns turn order: who may act, and what happens between turns
type Controller struct {
	ledger *economy.Ledger
	bots   *bot.Service
}

// NewController creates a new turn Controller
func NewController(ledger *economy.Ledger, bots *bot.Service) *Controller {
	return &Controller{
		ledger: ledger,
		bots:   bots,
	}
}

// Authorize returns the caller's slot if the game is live and it is their turn
func (c *Controller) Authorize(g *model.Game, player model.PlayerID) (*model.PlayerSlot, error) {
	if g.Status != model.GameStatusLive {
		return nil, model.ErrNotYourTurn
	}
	current := g.CurrentPlayer()
	if current == nil || current.Player != player {
		return nil, model.ErrNotYourTurn
	}
	return current, nil
}

// EndTurn closes the caller's turn and hands play to the next human.
// now is the caller-supplied time in unix millis.
func (c *Controller) EndTurn(g *model.Game, player model.PlayerID, now int64) (*Result, error) {
	slot, err := c.Authorize(g, player)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	result.Income = c.ledger.CloseTurn(g, slot)
	result.Eliminated = append(result.Eliminated, c.eliminate(g)...)

	from := g.CurrentPlayerIndex
	next, wrapped := nextHuman(g, from)
	result.Wrapped = wrapped
	if wrapped {
		g.Round++
		result.BotTurns = c.playBots(g)
		result.Eliminated = append(result.Eliminated, c.eliminate(g)...)
		if s := g.Players[next]; s == nil || !s.IsAlive {
			next, _ = nextHuman(g, next)
		}
	}
	g.CurrentPlayerIndex = next

	if decided(g) {
		c.finish(g)
		result.Finished = true
	}

	g.TurnTimestamp = max(now, g.TurnTimestamp+1)
	return result, nil
}

// playBots gives every living bot its turn in slot order
func (c *Controller) playBots(g *model.Game) []BotTurn {
	if c.bots == nil {
		return nil
	}
	var turns []BotTurn
	for i, s := range g.Players {
		if s == nil || !s.IsBot || !s.IsAlive {
			continue
		}
		actions := c.bots.PlayTurn(g, i)
		c.ledger.CloseTurn(g, s)
		turns = append(turns, BotTurn{SlotIndex: i, Actions: actions})
	}
	return turns
}

// eliminate marks players without a base as dead and returns who fell
func (c *Controller) eliminate(g *model.Game) []model.PlayerID {
	var fallen []model.PlayerID
	for _, s := range g.Players {
		if s == nil || !s.IsAlive {
			continue
		}
		if !g.OwnsBase(s.Player) {
			s.IsAlive = false
			fallen = append(fallen, s.Player)
		}
	}
	return fallen
}

// finish ends the game, naming the last player standing if there is one
func (c *Controller) finish(g *model.Game) {
	g.Status = model.GameStatusFinished
	for _, s := range g.Players {
		if s != nil && s.IsAlive {
			g.Winner = s.Player
			return
		}
	}
}

// decided reports whether no human is left alive, or only one player of many is
func decided(g *model.Game) bool {
	alive, humansAlive := 0, 0
	for _, s := range g.Players {
		if s == nil || !s.IsAlive {
			continue
		}
		alive++
		if !s.IsBot {
			humansAlive++
		}
	}
	if humansAlive == 0 {
		return true
	}
	return g.OccupiedSlots() > 1 && alive <= 1
}

// nextHuman walks the slots after from, wrapping past the end, and returns the
// first living human. wrapped is true when the walk passed the last slot.
func nextHuman(g *model.Game, from int) (int, bool) {
	for step := 1; step <= model.MaxPlayers; step++ {
		idx := (from + step) % model.MaxPlayers
		s := g.Players[idx]
		if s == nil || s.IsBot || !s.IsAlive {
			continue
		}
		return idx, idx <= from
	}
	return from, true
}
