package main

// GameState is the full mutable state of one game. It is mutated only through
// Apply, one action at a time; the caller owns any locking around it.
type GameState struct {
	Players          []Color                `json:"players"`
	VictoryThreshold int                    `json:"victory_threshold"`
	Layout           map[Location]Tile      `json:"layout"`
	Tiles            map[Tile]*TileState    `json:"tiles"`
	Seats            map[Color]*PlayerState `json:"seats"`

	Turn           TurnState `json:"turn"`
	PendingRewards int       `json:"pending_rewards"`
	Round          int       `json:"round"`
	QualifiedRound int       `json:"qualified_round"` // 0 until someone reaches the threshold
	Completed      bool      `json:"completed"`

	// Set while a family member executes a tile action by proxy from the
	// police station; suppresses captures during the nested resolution.
	familyActing bool
}

// NewGame builds the initial state for a validated Setup. Seats start at the
// fountain with 2,3,4,... lira by turn order; family members start at the
// police station.
func NewGame(setup Setup) (*GameState, error) {
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	g := &GameState{
		Players:          append([]Color(nil), setup.TurnOrder...),
		VictoryThreshold: 5,
		Layout:           map[Location]Tile{},
		Tiles:            map[Tile]*TileState{},
		Seats:            map[Color]*PlayerState{},
		Turn:             TurnState{Phase: PhaseMove},
		Round:            1,
	}
	if len(g.Players) == 2 {
		g.VictoryThreshold = 6
	}
	for loc, tile := range setup.Layout {
		g.Layout[loc] = tile
		g.Tiles[tile] = initialTileState(tile, len(g.Players))
	}
	g.Tiles[TileSmallMarket].Demand = copyGoods(setup.SmallDemand)
	g.Tiles[TileLargeMarket].Demand = copyGoods(setup.LargeDemand)
	g.Tiles[g.Layout[setup.GovernorAt]].Governor = true
	g.Tiles[g.Layout[setup.SmugglerAt]].Smuggler = true

	fountain := g.locationOf(TileFountain)
	station := g.locationOf(TilePoliceStation)
	for i, color := range g.Players {
		g.Seats[color] = newPlayerState(color, setup.Hands[color], 2+i, fountain, station)
		g.Tiles[TileFountain].Merchants = addColor(g.Tiles[TileFountain].Merchants, color)
		g.Tiles[TilePoliceStation].FamilyMembers = addColor(g.Tiles[TilePoliceStation].FamilyMembers, color)
	}
	return g, nil
}

func (g *GameState) currentColor() Color {
	return g.Players[g.Turn.CurrentIdx]
}

func (g *GameState) cur() *PlayerState {
	return g.Seats[g.currentColor()]
}

func (g *GameState) locationOf(t Tile) Location {
	for loc, tile := range g.Layout {
		if tile == t {
			return loc
		}
	}
	return 0
}

func (g *GameState) curTile() Tile {
	return g.Layout[g.cur().Location]
}

func (g *GameState) curTileState() *TileState {
	return g.Tiles[g.curTile()]
}

// Apply validates and applies one action atomically: on any rejection the
// state is restored to its pre-call value and the error reports the kind.
func (g *GameState) Apply(a Action) error {
	if g.Completed {
		return ruleErr(ErrGameCompleted, "no further actions accepted")
	}
	backup := g.clone()
	if err := g.apply(a); err != nil {
		*g = *backup
		return err
	}
	return nil
}

func (g *GameState) apply(a Action) error {
	if g.PendingRewards > 0 && a.Kind == ActYield {
		return ruleErr(ErrIllegalPhase, "capture reward must be chosen before yielding")
	}
	if a.Kind == ActChooseReward {
		if g.PendingRewards == 0 {
			return ruleErr(ErrIllegalPhase, "no reward to choose")
		}
		return g.chooseReward(a)
	}
	if a.Kind == ActYield {
		return g.applyYield()
	}
	if !g.Turn.legalInPhase(a.Kind) {
		if g.Turn.YieldRequired {
			return ruleErr(ErrIllegalPhase, "%s not allowed while yield is pending", a.Kind)
		}
		return ruleErr(ErrIllegalPhase, "%s not allowed during %s", a.Kind, g.Turn.Phase)
	}

	switch a.Kind {
	case ActMove, ActExtraMoveCard, ActNoMoveCard:
		return g.applyMove(a)
	case ActReturnAssistant:
		if err := g.discard(CardReturnAssistant); err != nil {
			return err
		}
		return g.recallAssistant(a.From)
	case ActPay:
		return g.applyPay()
	case ActSkipTile:
		g.encounterFamilies()
		g.Turn.Phase = PhaseEncounter
		return nil
	case ActGovernor:
		return g.applyGovernor(a)
	case ActSmuggler:
		return g.applySmuggler(a)
	case ActOneGoodCard:
		if !validGood(a.Good) {
			return ruleErr(ErrIllegalTarget, "unknown good %q", a.Good)
		}
		if err := g.discard(CardOneGood); err != nil {
			return err
		}
		g.cur().acquire(a.Good)
		return nil
	case ActFiveLiraCard:
		if err := g.discard(CardFiveLira); err != nil {
			return err
		}
		g.cur().Lira += 5
		return nil
	case ActArrestFamilyCard:
		return g.applyArrestFamily(a)
	case ActYellowTileUse:
		if !g.cur().ownsMosqueTile(GoodYellow) {
			return ruleErr(ErrIllegalTarget, "%s does not own the yellow mosque tile", g.currentColor())
		}
		if err := g.spend(2); err != nil {
			return err
		}
		return g.recallAssistant(a.From)
	}

	if tilePhaseKind(a.Kind) || a.Kind == ActPoliceStation {
		if err := g.resolveTile(a); err != nil {
			return err
		}
		g.encounterFamilies()
		g.Turn.Phase = PhaseEncounter
		return nil
	}
	return ruleErr(ErrIllegalTarget, "unknown action kind %q", a.Kind)
}

func (g *GameState) applyYield() error {
	if !g.Turn.legalInPhase(ActYield) {
		return ruleErr(ErrIllegalPhase, "cannot yield during %s", g.Turn.Phase)
	}
	if g.Turn.CurrentIdx == len(g.Players)-1 && g.QualifiedRound > 0 {
		g.Completed = true
	}
	if g.Turn.advance(len(g.Players)) {
		g.Round++
	}
	return nil
}

// applyMove handles the three movement variants and the arrival assistant
// resolution they share.
func (g *GameState) applyMove(a Action) error {
	p := g.cur()
	switch a.Kind {
	case ActMove:
		if !validLocation(a.To) {
			return ruleErr(ErrIllegalTarget, "no such location %d", a.To)
		}
		if d := taxicabDist(p.Location, a.To); d < 1 || d > 2 {
			return ruleErr(ErrIllegalTarget, "cannot move %d spaces", d)
		}
		g.moveTo(a.To)
	case ActExtraMoveCard:
		if !validLocation(a.To) {
			return ruleErr(ErrIllegalTarget, "no such location %d", a.To)
		}
		if d := taxicabDist(p.Location, a.To); d < 3 || d > 4 {
			return ruleErr(ErrIllegalTarget, "extra-move must cover 3-4 spaces, not %d", d)
		}
		if err := g.discard(CardExtraMove); err != nil {
			return err
		}
		g.moveTo(a.To)
	case ActNoMoveCard:
		if err := g.discard(CardNoMove); err != nil {
			return err
		}
	}

	tile := g.curTile()
	ts := g.Tiles[tile]
	if !a.SkipAssistant {
		switch {
		case hasColor(ts.Assistants, p.Color):
			ts.Assistants = removeColor(ts.Assistants, p.Color)
			p.removeAssistantAt(p.Location)
			p.StackSize++
		case p.StackSize > 0:
			p.StackSize--
			p.Assistants = append(p.Assistants, p.Location)
			ts.Assistants = addColor(ts.Assistants, p.Color)
		default:
			if tile != TileFountain {
				return ruleErr(ErrInsufficientResources, "no assistant in stack or at destination")
			}
		}
	}
	g.Turn.Phase = PhasePay
	if a.SkipAssistant {
		g.Turn.YieldRequired = true
	}
	if len(ts.Merchants) == 1 || tile == TileFountain {
		g.Turn.Phase = PhaseTile
	}
	return nil
}

func (g *GameState) moveTo(to Location) {
	p := g.cur()
	from := g.Layout[p.Location]
	g.Tiles[from].Merchants = removeColor(g.Tiles[from].Merchants, p.Color)
	p.Location = to
	g.Tiles[g.Layout[to]].Merchants = addColor(g.Tiles[g.Layout[to]].Merchants, p.Color)
}

func (g *GameState) applyPay() error {
	p := g.cur()
	ts := g.curTileState()
	cost := (len(ts.Merchants) - 1) * 2
	if cost <= 0 {
		return ruleErr(ErrIllegalTarget, "no other merchant to pay here")
	}
	if p.Lira < cost {
		return ruleErr(ErrInsufficientResources, "cannot pay %d with %d lira", cost, p.Lira)
	}
	for _, other := range ts.Merchants {
		if other == p.Color {
			continue
		}
		g.Seats[other].Lira += 2
		p.Lira -= 2
	}
	g.Turn.Phase = PhaseTile
	return nil
}

// recallAssistant returns one of the player's placed assistants to the stack.
func (g *GameState) recallAssistant(from Location) error {
	p := g.cur()
	if !p.hasAssistantAt(from) {
		return ruleErr(ErrIllegalTarget, "%s has no assistant at %d", p.Color, from)
	}
	tile := g.Layout[from]
	g.Tiles[tile].Assistants = removeColor(g.Tiles[tile].Assistants, p.Color)
	p.removeAssistantAt(from)
	p.StackSize++
	return nil
}

func (g *GameState) applyArrestFamily(a Action) error {
	p := g.cur()
	station := g.locationOf(TilePoliceStation)
	if p.Family == station {
		return ruleErr(ErrIllegalTarget, "family member is already at the police station")
	}
	if err := g.discard(CardArrestFamily); err != nil {
		return err
	}
	familyTile := g.Layout[p.Family]
	g.Tiles[familyTile].FamilyMembers = removeColor(g.Tiles[familyTile].FamilyMembers, p.Color)
	g.Tiles[TilePoliceStation].FamilyMembers = addColor(g.Tiles[TilePoliceStation].FamilyMembers, p.Color)
	p.Family = station
	g.PendingRewards++
	return g.chooseReward(a)
}

// chooseReward settles one outstanding capture reward: 3 lira or a named
// card drawn from the pool.
func (g *GameState) chooseReward(a Action) error {
	p := g.cur()
	if a.TakeLira {
		p.Lira += 3
	} else {
		if !validCard(a.RewardCard) {
			return ruleErr(ErrIllegalTarget, "unknown reward card %q", a.RewardCard)
		}
		p.Hand[a.RewardCard]++
	}
	g.PendingRewards--
	return nil
}

// encounterFamilies captures every other player's family member on the
// current tile. The police station is a safe haven, and family members acting
// by proxy never trigger captures.
func (g *GameState) encounterFamilies() {
	if g.familyActing {
		return
	}
	tile := g.curTile()
	if tile == TilePoliceStation {
		return
	}
	ts := g.Tiles[tile]
	station := g.locationOf(TilePoliceStation)
	var captured []Color
	for _, c := range ts.FamilyMembers {
		if c != g.currentColor() {
			captured = append(captured, c)
		}
	}
	for _, c := range captured {
		ts.FamilyMembers = removeColor(ts.FamilyMembers, c)
		g.Tiles[TilePoliceStation].FamilyMembers = addColor(g.Tiles[TilePoliceStation].FamilyMembers, c)
		g.Seats[c].Family = station
	}
	g.PendingRewards += len(captured)
}

func (g *GameState) applyGovernor(a Action) error {
	ts := g.curTileState()
	if !ts.Governor {
		return ruleErr(ErrIllegalTarget, "governor is not at %s", g.curTile())
	}
	if !validCard(a.Card) {
		return ruleErr(ErrIllegalTarget, "unknown card %q", a.Card)
	}
	if !validRoll(a.Roll) {
		return ruleErr(ErrIllegalTarget, "invalid roll %v", a.Roll)
	}
	g.cur().Hand[a.Card]++
	if a.PayLira {
		if err := g.spend(2); err != nil {
			return err
		}
	} else if err := g.discard(a.CostCard); err != nil {
		return err
	}
	ts.Governor = false
	g.Tiles[rollTiles[a.Roll.Total()]].Governor = true
	return nil
}

func (g *GameState) applySmuggler(a Action) error {
	p := g.cur()
	ts := g.curTileState()
	if !ts.Smuggler {
		return ruleErr(ErrIllegalTarget, "smuggler is not at %s", g.curTile())
	}
	if !validGood(a.Good) {
		return ruleErr(ErrIllegalTarget, "unknown good %q", a.Good)
	}
	if !validRoll(a.Roll) {
		return ruleErr(ErrIllegalTarget, "invalid roll %v", a.Roll)
	}
	p.acquire(a.Good)
	if a.PayLira {
		if err := g.spend(2); err != nil {
			return err
		}
	} else {
		if !validGood(a.CostGood) {
			return ruleErr(ErrIllegalTarget, "unknown cost good %q", a.CostGood)
		}
		if p.Cart[a.CostGood] < 1 {
			return ruleErr(ErrInsufficientResources, "no %s to trade", a.CostGood)
		}
		p.Cart[a.CostGood]--
	}
	ts.Smuggler = false
	g.Tiles[rollTiles[a.Roll.Total()]].Smuggler = true
	return nil
}

// discard moves one card from the current hand onto the caravansary pile.
func (g *GameState) discard(c Card) error {
	p := g.cur()
	if p.Hand[c] < 1 {
		return ruleErr(ErrInsufficientResources, "%s does not hold %s", p.Color, c)
	}
	p.Hand[c]--
	cs := g.Tiles[TileCaravansary]
	cs.Discard = append(cs.Discard, c)
	return nil
}

func (g *GameState) spend(lira int) error {
	p := g.cur()
	if p.Lira < lira {
		return ruleErr(ErrInsufficientResources, "%s has %d lira, needs %d", p.Color, p.Lira, lira)
	}
	p.Lira -= lira
	return nil
}

// awardRuby credits a ruby and records the round the victory threshold was
// first reached.
func (g *GameState) awardRuby(p *PlayerState) {
	p.Rubies++
	if p.Rubies >= g.VictoryThreshold && g.QualifiedRound == 0 {
		g.QualifiedRound = g.Round
	}
}

// checkRoll validates a plain roll or a red-tile modified roll and returns
// the effective total.
func (g *GameState) checkRoll(roll Roll, red *RedTileUse) (int, error) {
	if red == nil {
		if !validRoll(roll) {
			return 0, ruleErr(ErrIllegalTarget, "invalid roll %v", roll)
		}
		return roll.Total(), nil
	}
	if !g.cur().ownsMosqueTile(GoodRed) {
		return 0, ruleErr(ErrIllegalTarget, "%s does not own the red mosque tile", g.currentColor())
	}
	if !validRoll(red.Initial) || !validRoll(red.Final) {
		return 0, ruleErr(ErrIllegalTarget, "invalid roll %v -> %v", red.Initial, red.Final)
	}
	switch red.Method {
	case RedTileReroll:
	case RedTileToFour:
		i, f := red.Initial, red.Final
		ok := (i[0] == f[0] && f[1] == 4) ||
			(i[1] == f[1] && f[0] == 4) ||
			(i[0] == f[1] && f[0] == 4) ||
			(i[1] == f[0] && f[1] == 4)
		if !ok {
			return 0, ruleErr(ErrIllegalTarget, "to-four must keep one die and set the other to 4")
		}
	default:
		return 0, ruleErr(ErrIllegalTarget, "unknown red tile method %q", red.Method)
	}
	return red.Final.Total(), nil
}

func copyGoods(m map[Good]int) map[Good]int {
	out := make(map[Good]int, len(m))
	for g, n := range m {
		out[g] = n
	}
	return out
}

func goodsTotal(m map[Good]int) int {
	n := 0
	for _, c := range m {
		n += c
	}
	return n
}

// clone is a deep copy used for atomic rollback and snapshot persistence.
func (g *GameState) clone() *GameState {
	out := &GameState{
		Players:          append([]Color(nil), g.Players...),
		VictoryThreshold: g.VictoryThreshold,
		Layout:           make(map[Location]Tile, len(g.Layout)),
		Tiles:            make(map[Tile]*TileState, len(g.Tiles)),
		Seats:            make(map[Color]*PlayerState, len(g.Seats)),
		Turn:             g.Turn,
		PendingRewards:   g.PendingRewards,
		Round:            g.Round,
		QualifiedRound:   g.QualifiedRound,
		Completed:        g.Completed,
		familyActing:     g.familyActing,
	}
	for loc, tile := range g.Layout {
		out.Layout[loc] = tile
	}
	for tile, ts := range g.Tiles {
		c := *ts
		c.Assistants = append([]Color(nil), ts.Assistants...)
		c.FamilyMembers = append([]Color(nil), ts.FamilyMembers...)
		c.Merchants = append([]Color(nil), ts.Merchants...)
		c.Discard = append([]Card(nil), ts.Discard...)
		if ts.MosqueCosts != nil {
			c.MosqueCosts = make(map[Good]int, len(ts.MosqueCosts))
			for g2, n := range ts.MosqueCosts {
				c.MosqueCosts[g2] = n
			}
		}
		if ts.Demand != nil {
			c.Demand = copyGoods(ts.Demand)
		}
		out.Tiles[tile] = &c
	}
	for color, p := range g.Seats {
		cp := *p
		cp.Hand = make(map[Card]int, len(p.Hand))
		for card, n := range p.Hand {
			cp.Hand[card] = n
		}
		cp.Cart = copyGoods(p.Cart)
		cp.MosqueTiles = append([]Good(nil), p.MosqueTiles...)
		cp.Assistants = append([]Location(nil), p.Assistants...)
		out.Seats[color] = &cp
	}
	return out
}
