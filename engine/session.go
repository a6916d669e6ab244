package engine

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hybridboard/gametable-backend/engine/board"
	"github.com/hybridboard/gametable-backend/engine/dice"
	"github.com/hybridboard/gametable-backend/engine/rules"
	"github.com/hybridboard/gametable-backend/engine/state"
)

// Session is one running game. It holds the authoritative state, the
// modules composed from the rule configuration, and the per-turn flags of
// the command loop. All methods must be called from a single goroutine;
// the transport serializes commands in arrival order, which is the
// engine's whole concurrency story.
type Session struct {
	ID     string
	cfg    rules.Config
	layout *board.Layout
	decks  *board.Decks
	st     *state.SessionState
	roller *dice.Roller
	mods   ModuleSet
	log    *logrus.Entry

	hasRolled    bool
	hasAttacked  bool
	doubleStreak int
	lastRoll     int

	pending state.Delta
	events  []Event
}

// NewSession validates the configuration and builds an empty session in
// the waiting phase. Players join before Start.
func NewSession(id string, cfg rules.Config, seed int64, log *logrus.Entry) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	layout, err := board.Load()
	if err != nil {
		return nil, err
	}
	decks, err := board.LoadDecks()
	if err != nil {
		return nil, err
	}
	roller, err := dice.NewRoller(seed, cfg.DiceCount, cfg.DiceSides)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Session{
		ID:     id,
		cfg:    cfg,
		layout: layout,
		decks:  decks,
		st:     state.NewSessionState(),
		roller: roller,
		log:    log.WithField("session", id),
	}
	s.mods = Compose(s)
	return s, nil
}

// Config returns the session's immutable rule configuration.
func (s *Session) Config() rules.Config { return s.cfg }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() state.Phase { return s.st.Phase }

// State exposes the authoritative state for read-only inspection.
func (s *Session) State() *state.SessionState { return s.st }

// AddPlayer seats a player while the session is still waiting to start.
func (s *Session) AddPlayer(id, name string) error {
	if s.st.Phase != state.PhaseWaiting {
		return reject(CodeWrongPhase, "game already started")
	}
	if _, dup := s.st.Players[id]; dup {
		return reject(CodeUnknownPlayer, "player %s already seated", id)
	}
	if len(s.st.Order) >= s.cfg.MaxPlayers {
		return reject(CodeWrongPhase, "game is full")
	}
	s.st.Players[id] = &state.PlayerRecord{ID: id, Seat: len(s.st.Order), Name: name}
	s.st.Order = append(s.st.Order, id)
	return nil
}

// RemovePlayer unseats a player before start.
func (s *Session) RemovePlayer(id string) error {
	if s.st.Phase != state.PhaseWaiting {
		return reject(CodeWrongPhase, "game already started")
	}
	if _, ok := s.st.Players[id]; !ok {
		return reject(CodeUnknownPlayer, "player %s not seated", id)
	}
	delete(s.st.Players, id)
	order := s.st.Order[:0]
	for _, pid := range s.st.Order {
		if pid != id {
			order = append(order, pid)
		}
	}
	s.st.Order = order
	for i, pid := range order {
		s.st.Players[pid].Seat = i
	}
	return nil
}

// Start arms the session: players receive their starting records, decks
// are shuffled, and the phase moves to ship placement or straight into
// play depending on the composed modules.
func (s *Session) Start() ([]Event, error) {
	s.begin()
	if s.st.Phase != state.PhaseWaiting {
		return nil, reject(CodeWrongPhase, "game already started")
	}
	if len(s.st.Order) < s.cfg.MinPlayers {
		return nil, reject(CodeWrongPhase, "need at least %d players", s.cfg.MinPlayers)
	}

	for _, id := range s.st.Order {
		p := s.st.Players[id]
		if s.mods.Currency != nil {
			p.Money = s.cfg.StartingBalance
		}
		if len(s.cfg.Resources) > 0 {
			p.Resources = make(map[string]int, len(s.cfg.Resources))
			for _, r := range s.cfg.Resources {
				p.Resources[r] = 0
			}
		}
		s.patchPlayer(fullPlayerPatch(*p))
	}
	if s.mods.Cards != nil {
		s.mods.Cards.shuffle()
	}
	if s.mods.Combat != nil {
		s.mods.Combat.setup()
		s.setPhase(state.PhasePlacingShips)
		s.emit(GameMessage{Text: "place your ships"})
	} else {
		s.setPhase(state.PhaseInProgress)
		s.setTurn(0)
		s.emit(TurnChanged{PlayerID: s.st.CurrentPlayer()})
	}
	return s.finish(), nil
}

// Forfeit removes a player who left mid-game from turn rotation, exactly
// as an elimination would. Host-issued, not a player command.
func (s *Session) Forfeit(playerID string) ([]Event, error) {
	s.begin()
	p, ok := s.st.Players[playerID]
	if !ok {
		return nil, reject(CodeUnknownPlayer, "player %s not in session", playerID)
	}
	if s.st.Phase == state.PhaseGameOver || !p.Active() {
		return s.finish(), nil
	}
	p.Eliminated = true
	s.patchPlayer(state.PlayerPatch{ID: playerID, Eliminated: state.BoolPtr(true)})
	s.releaseProperties(playerID)
	s.dropFromTrade(playerID)
	s.emit(PlayerEliminated{PlayerID: playerID})
	s.emit(GameMessage{Text: p.Name + " left the game"})
	s.checkLastActive()
	if s.mods.Combat != nil {
		// The leaver's unspent quota must not keep everyone else in the
		// placement phase.
		s.mods.Combat.finishPlacement()
	}
	if s.st.Phase == state.PhaseInProgress && s.st.CurrentPlayer() == playerID {
		if err := s.advanceTurn(); err != nil {
			s.log.WithError(err).Error("consistency violation, aborting session")
			s.emit(GameMessage{Text: fmt.Sprintf("session aborted: %v", err)})
			s.gameOver("")
		}
	}
	return s.finish(), nil
}

// HandleCommand validates and applies one player command, returning the
// notification events (including the state delta) to broadcast. A
// *Rejection error means nothing changed and only the issuing client
// should hear about it.
func (s *Session) HandleCommand(playerID string, cmd Command) ([]Event, error) {
	s.begin()

	p, ok := s.st.Players[playerID]
	if !ok {
		return nil, reject(CodeUnknownPlayer, "player %s not in session", playerID)
	}

	switch s.st.Phase {
	case state.PhaseWaiting:
		return nil, reject(CodeWrongPhase, "game has not started")
	case state.PhaseGameOver:
		return nil, reject(CodeWrongPhase, "game is over")
	case state.PhasePlacingShips:
		if _, ok := cmd.(PlaceShip); !ok {
			return nil, reject(CodeWrongPhase, "ship placement in progress")
		}
	case state.PhaseInProgress:
		if _, ok := cmd.(PlaceShip); ok {
			return nil, reject(CodeWrongPhase, "placement phase is over")
		}
	}

	if !p.Active() {
		return nil, reject(CodeWrongTurn, "player is out of the game")
	}
	if turnGated(cmd) && s.st.CurrentPlayer() != playerID {
		return nil, reject(CodeWrongTurn, "not your turn")
	}

	if err := s.dispatch(playerID, cmd); err != nil {
		if _, isReject := AsRejection(err); isReject {
			return nil, err
		}
		// Consistency violation: terminal for the whole session.
		s.log.WithError(err).Error("consistency violation, aborting session")
		s.emit(GameMessage{Text: fmt.Sprintf("session aborted: %v", err)})
		s.gameOver("")
		return s.finish(), nil
	}
	return s.finish(), nil
}

func (s *Session) dispatch(playerID string, cmd Command) error {
	switch c := cmd.(type) {
	case RollDice:
		return s.mods.Movement.roll(playerID)
	case EndTurn:
		return s.endTurn(playerID)
	case PurchaseProperty:
		if s.mods.Property == nil {
			return reject(CodeRuleDisabled, "property rules are not active")
		}
		return s.mods.Property.purchase(playerID)
	case BuildHouse:
		if s.mods.Property == nil {
			return reject(CodeRuleDisabled, "property rules are not active")
		}
		return s.mods.Property.buildHouse(playerID, c.CellID)
	case BuildHotel:
		if s.mods.Property == nil {
			return reject(CodeRuleDisabled, "property rules are not active")
		}
		return s.mods.Property.buildHotel(playerID, c.CellID)
	case UseJailToken:
		return s.mods.Movement.useJailToken(playerID)
	case PayJailFine:
		if s.mods.Currency == nil {
			return reject(CodeRuleDisabled, "jail fines require currency")
		}
		return s.mods.Movement.payJailFine(playerID)
	case PlaceShip:
		if s.mods.Combat == nil {
			return reject(CodeRuleDisabled, "combat is not active")
		}
		return s.mods.Combat.placeShip(playerID, c)
	case Attack:
		if s.mods.Combat == nil {
			return reject(CodeRuleDisabled, "combat is not active")
		}
		return s.mods.Combat.attack(playerID, c)
	case ProposeTrade:
		if s.mods.Trade == nil {
			return reject(CodeRuleDisabled, "trading is not active")
		}
		return s.mods.Trade.propose(playerID, c)
	case RespondTrade:
		if s.mods.Trade == nil {
			return reject(CodeRuleDisabled, "trading is not active")
		}
		return s.mods.Trade.respond(playerID, c.Accept)
	case CancelTrade:
		if s.mods.Trade == nil {
			return reject(CodeRuleDisabled, "trading is not active")
		}
		return s.mods.Trade.cancel(playerID)
	default:
		return reject(CodeWrongPhase, "unknown command %q", cmd.name())
	}
}

// endTurn yields to the next eligible player. The acting player must have
// spent their turn: a roll on board games, an attack on pure combat games.
func (s *Session) endTurn(playerID string) error {
	if s.cfg.SharedBoard {
		if !s.hasRolled {
			return reject(CodeMustRoll, "roll the dice first")
		}
	} else if s.mods.Combat != nil && !s.hasAttacked {
		return reject(CodeMustRoll, "attack first")
	}
	return s.advanceTurn()
}

// advanceTurn moves the cursor to the next non-eliminated, non-bankrupt
// player. Cycling through every seat without finding one is a consistency
// violation handled by the caller.
func (s *Session) advanceTurn() error {
	if s.st.Phase == state.PhaseGameOver {
		return nil
	}
	s.hasRolled = false
	s.hasAttacked = false
	s.doubleStreak = 0
	n := len(s.st.Order)
	for i := 1; i <= n; i++ {
		next := (s.st.Turn + i) % n
		if s.st.Players[s.st.Order[next]].Active() {
			s.setTurn(next)
			s.emit(TurnChanged{PlayerID: s.st.Order[next]})
			return nil
		}
	}
	return ErrNoEligiblePlayer
}

// checkLastActive ends the game when a single player remains in rotation.
func (s *Session) checkLastActive() {
	if s.st.Phase == state.PhaseGameOver {
		return
	}
	if last, ok := s.st.LastActive(); ok {
		s.gameOver(last)
	}
}

// checkMoneyVictory ends the game when a balance reaches the configured
// threshold.
func (s *Session) checkMoneyVictory() {
	if s.st.Phase == state.PhaseGameOver || s.cfg.Victory != rules.VictoryMoneyThreshold {
		return
	}
	for _, id := range s.st.Order {
		if p := s.st.Players[id]; p.Active() && p.Money >= s.cfg.MoneyThreshold {
			s.gameOver(id)
			return
		}
	}
}

func (s *Session) gameOver(winner string) {
	if s.st.Phase == state.PhaseGameOver {
		return
	}
	s.setPhase(state.PhaseGameOver)
	s.st.Winner = winner
	s.pending.Winner = state.StrPtr(winner)
	s.emit(GameOver{WinnerID: winner})
	s.log.WithField("winner", winner).Info("game over")
}

// Delta/event plumbing. Every mutation within one command folds into a
// single delta broadcast after the command's events, in mutation order.

func (s *Session) begin() {
	s.pending = state.Delta{}
	s.events = nil
}

func (s *Session) finish() []Event {
	events := s.events
	if !s.pending.Empty() {
		s.st.Seq++
		s.pending.Seq = s.st.Seq
		events = append(events, StateDelta{Delta: s.pending})
	}
	s.events = nil
	s.pending = state.Delta{}
	return events
}

func (s *Session) emit(ev Event) {
	s.events = append(s.events, ev)
}

func (s *Session) patchPlayer(p state.PlayerPatch) {
	s.pending.Players = append(s.pending.Players, p)
}

func (s *Session) patchCell(c state.CellPatch) {
	s.pending.Cells = append(s.pending.Cells, c)
}

func (s *Session) patchCombat(c state.CombatPatch) {
	s.pending.Combat = append(s.pending.Combat, c)
}

func (s *Session) setPhase(ph state.Phase) {
	s.st.Phase = ph
	s.pending.Phase = state.PhasePtr(ph)
}

func (s *Session) setTurn(i int) {
	s.st.Turn = i
	s.pending.Turn = state.IntPtr(i)
}

func fullPlayerPatch(p state.PlayerRecord) state.PlayerPatch {
	patch := state.PlayerPatch{
		ID:         p.ID,
		Seat:       state.IntPtr(p.Seat),
		Name:       state.StrPtr(p.Name),
		Position:   state.IntPtr(p.Position),
		Money:      state.IntPtr(p.Money),
		InJail:     state.BoolPtr(p.InJail),
		JailTurns:  state.IntPtr(p.JailTurns),
		JailTokens: state.IntPtr(p.JailTokens),
		Bankrupt:   state.BoolPtr(p.Bankrupt),
		Eliminated: state.BoolPtr(p.Eliminated),
	}
	if p.Resources != nil {
		patch.Resources = make(map[string]int, len(p.Resources))
		for k, v := range p.Resources {
			patch.Resources[k] = v
		}
	}
	return patch
}
