package main

import "testing"

func TestOneGoodAndFiveLiraAnyPhase(t *testing.T) {
	g := newTestGame(t)
	p := g.cur()
	p.Hand[CardFiveLira] = 1

	// Movement phase: both interrupt cards work.
	mustApply(t, g, Action{Kind: ActOneGoodCard, Good: GoodGreen})
	if p.Cart[GoodGreen] != 1 {
		t.Fatalf("one-good card not applied: %v", p.Cart)
	}
	lira := p.Lira
	mustApply(t, g, Action{Kind: ActFiveLiraCard})
	if p.Lira != lira+5 {
		t.Fatalf("five-lira card paid %d", p.Lira-lira)
	}
	if len(g.Tiles[TileCaravansary].Discard) != 2 {
		t.Fatalf("played cards not discarded: %v", g.Tiles[TileCaravansary].Discard)
	}
	// Without the card in hand the play is rejected.
	wantRuleError(t, g, Action{Kind: ActFiveLiraCard}, ErrInsufficientResources)
}

func TestExtraMoveAndNoMoveCards(t *testing.T) {
	g := newTestGame(t)
	// Distance 2 is too short for the extra-move card.
	wantRuleError(t, g, Action{Kind: ActExtraMoveCard, To: g.locationOf(TilePostOffice)}, ErrIllegalTarget)

	p := g.cur()
	p.Hand[CardExtraMove] = 1
	p.Hand[CardNoMove] = 1

	dest := g.locationOf(TileBlackMarket) // distance 3 from the fountain
	mustApply(t, g, Action{Kind: ActExtraMoveCard, To: dest})
	if p.Location != dest || p.Hand[CardExtraMove] != 0 {
		t.Fatalf("extra move failed: loc=%d hand=%v", p.Location, p.Hand)
	}
	mustApply(t, g, Action{Kind: ActSkipTile})
	mustApply(t, g, Action{Kind: ActYield})

	// Blue stays put with the no-move card.
	g.Seats[ColorBlue].Hand[CardNoMove] = 1
	fountain := g.locationOf(TileFountain)
	mustApply(t, g, Action{Kind: ActNoMoveCard})
	if g.Seats[ColorBlue].Location != fountain {
		t.Fatalf("no-move card moved the player")
	}
	if g.Turn.Phase != PhaseTile {
		t.Fatalf("phase = %s after staying alone at the fountain", g.Turn.Phase)
	}
}

func TestReturnAssistantCard(t *testing.T) {
	g := newTestGame(t)
	p := g.cur()
	loc := g.locationOf(TileTeaHouse)
	p.Assistants = append(p.Assistants, loc)
	g.Tiles[TileTeaHouse].Assistants = addColor(g.Tiles[TileTeaHouse].Assistants, p.Color)
	p.StackSize = 3
	p.Hand[CardReturnAssistant] = 1

	mustApply(t, g, Action{Kind: ActReturnAssistant, From: loc})
	if p.StackSize != 4 || len(p.Assistants) != 0 {
		t.Fatalf("assistant not returned: stack=%d placed=%v", p.StackSize, p.Assistants)
	}
	if g.Turn.Phase != PhaseMove {
		t.Fatalf("return-assistant should not consume the move")
	}
}

func TestYellowTileRecall(t *testing.T) {
	g := newTestGame(t)
	loc := g.locationOf(TileTeaHouse)
	wantRuleError(t, g, Action{Kind: ActYellowTileUse, From: loc}, ErrIllegalTarget)

	p := g.cur()
	p.Assistants = append(p.Assistants, loc)
	g.Tiles[TileTeaHouse].Assistants = addColor(g.Tiles[TileTeaHouse].Assistants, p.Color)
	p.StackSize = 3
	p.Lira = 3
	p.MosqueTiles = append(p.MosqueTiles, GoodYellow)
	mustApply(t, g, Action{Kind: ActYellowTileUse, From: loc})
	if p.StackSize != 4 || p.Lira != 1 {
		t.Fatalf("yellow tile recall wrong: stack=%d lira=%d", p.StackSize, p.Lira)
	}
}

func TestArrestFamilyCard(t *testing.T) {
	g := newTestGame(t)
	// Family already safe at the station: nothing to arrest.
	wantRuleError(t, g, Action{Kind: ActArrestFamilyCard, TakeLira: true}, ErrIllegalTarget)

	p := g.cur()
	p.Hand[CardArrestFamily] = 1
	station := g.locationOf(TilePoliceStation)
	dest := g.locationOf(TileTeaHouse)
	p.Family = dest
	g.Tiles[TilePoliceStation].FamilyMembers = removeColor(g.Tiles[TilePoliceStation].FamilyMembers, p.Color)
	g.Tiles[TileTeaHouse].FamilyMembers = addColor(g.Tiles[TileTeaHouse].FamilyMembers, p.Color)

	lira := p.Lira
	mustApply(t, g, Action{Kind: ActArrestFamilyCard, TakeLira: true})
	if p.Family != station || p.Lira != lira+3 {
		t.Fatalf("arrest not settled: family=%d lira=%d", p.Family, p.Lira)
	}
	if g.PendingRewards != 0 {
		t.Fatalf("arrest reward left pending")
	}
}

func TestSellAnyCard(t *testing.T) {
	g := newTestGame(t)
	placeCurrentAt(g, TileSmallMarket)
	p := g.cur()
	p.CartMax = 5
	p.Cart[GoodBlue] = 4 // default demand wants only one blue
	p.Hand[CardSellAny] = 1
	p.Lira = 0

	mustApply(t, g, Action{
		Kind:      ActSellAnyCard,
		Goods:     map[Good]int{GoodBlue: 4},
		NewDemand: map[Good]int{GoodGreen: 5},
	})
	if p.Lira != 2+3+4+5 {
		t.Fatalf("sell-any paid %d, want 14", p.Lira)
	}
	if g.Tiles[TileSmallMarket].Demand[GoodGreen] != 5 {
		t.Fatalf("demand not replaced")
	}

	// The card only works at the small market.
	mustApply(t, g, Action{Kind: ActYield})
	placeCurrentAt(g, TileLargeMarket)
	g.cur().Hand[CardSellAny] = 1
	g.cur().Cart[GoodBlue] = 1
	wantRuleError(t, g, Action{
		Kind:      ActSellAnyCard,
		Goods:     map[Good]int{GoodBlue: 1},
		NewDemand: map[Good]int{GoodGreen: 5},
	}, ErrIllegalTarget)
}

func TestDoubleDealerCard(t *testing.T) {
	g := newTestGame(t)
	placeCurrentAt(g, TileGemstoneDealer)
	p := g.cur()
	p.Lira = 40
	p.Hand[CardDoubleDealer] = 1

	mustApply(t, g, Action{Kind: ActDoubleCard, Card: CardDoubleDealer, Sub: []Action{
		{Kind: ActGenericTile}, {Kind: ActGenericTile},
	}})
	if p.Rubies != 2 || p.Lira != 40-15-16 {
		t.Fatalf("double dealer: rubies=%d lira=%d", p.Rubies, p.Lira)
	}

	// The card binds to its own tile even when standing elsewhere.
	mustApply(t, g, Action{Kind: ActYield})
	placeCurrentAt(g, TilePostOffice)
	g.cur().Hand[CardDoubleDealer] = 1
	g.cur().Lira = 40
	wantRuleError(t, g, Action{Kind: ActDoubleCard, Card: CardDoubleDealer, Sub: []Action{
		{Kind: ActGenericTile}, {Kind: ActGenericTile},
	}}, ErrIllegalTarget)
}

func TestDoublePostOfficeCard(t *testing.T) {
	g := newTestGame(t)
	placeCurrentAt(g, TilePostOffice)
	p := g.cur()
	p.Lira = 0
	p.Hand[CardDoublePO] = 1

	mustApply(t, g, Action{Kind: ActDoubleCard, Card: CardDoublePO, Sub: []Action{
		{Kind: ActGenericTile}, {Kind: ActGenericTile},
	}})
	if p.Lira != 2+3 {
		t.Fatalf("double post office paid %d, want 5", p.Lira)
	}
	if g.Tiles[TilePostOffice].MailPosition != 2 {
		t.Fatalf("dial advanced %d times", g.Tiles[TilePostOffice].MailPosition)
	}
}

func TestDoubleSultanCard(t *testing.T) {
	g := newTestGame(t)
	placeCurrentAt(g, TileSultansPalace)
	p := g.cur()
	p.CartMax = 5
	for _, good := range allGoods {
		p.Cart[good] = 5
	}
	p.Hand[CardDoubleSultan] = 1

	mustApply(t, g, Action{Kind: ActDoubleCard, Card: CardDoubleSultan, Sub: []Action{
		{Kind: ActSultansPalace, Goods: map[Good]int{GoodBlue: 2, GoodRed: 1, GoodGreen: 1, GoodYellow: 1}},
		{Kind: ActSultansPalace, Goods: map[Good]int{GoodBlue: 2, GoodRed: 1, GoodGreen: 1, GoodYellow: 2}},
	}})
	if p.Rubies != 2 {
		t.Fatalf("double sultan rubies = %d", p.Rubies)
	}
	if g.Tiles[TileSultansPalace].RequiredBeads != 7 {
		t.Fatalf("bundle size = %d, want 7", g.Tiles[TileSultansPalace].RequiredBeads)
	}

	g.Turn.Phase = PhaseTile
	g.cur().Hand[CardFiveLira] = 1
	wantRuleError(t, g, Action{Kind: ActDoubleCard, Card: CardFiveLira, Sub: []Action{
		{Kind: ActSultansPalace}, {Kind: ActSultansPalace},
	}}, ErrIllegalTarget)
}

func TestGovernorEncounter(t *testing.T) {
	g := newTestGame(t)
	dest := g.locationOf(TileFabricWarehouse)
	g.Tiles[TileFabricWarehouse].Governor = true
	g.Tiles[TileFountain].Governor = false

	mustApply(t, g, Action{Kind: ActMove, To: dest})
	mustApply(t, g, Action{Kind: ActSkipTile})

	p := g.cur()
	lira := p.Lira
	mustApply(t, g, Action{Kind: ActGovernor, Card: CardExtraMove, PayLira: true, Roll: Roll{4, 5}})
	if p.Hand[CardExtraMove] != 1 || p.Lira != lira-2 {
		t.Fatalf("governor trade wrong: hand=%v lira=%d", p.Hand, p.Lira)
	}
	if g.Tiles[TileFabricWarehouse].Governor {
		t.Fatalf("governor did not leave")
	}
	if !g.Tiles[rollTiles[9]].Governor {
		t.Fatalf("governor not at the rolled tile")
	}
	// Gone means gone.
	wantRuleError(t, g, Action{Kind: ActGovernor, Card: CardOneGood, PayLira: true, Roll: Roll{1, 1}}, ErrIllegalTarget)
}

func TestGovernorCardCost(t *testing.T) {
	g := newTestGame(t)
	placeCurrentAt(g, TileFabricWarehouse)
	g.Tiles[TileFabricWarehouse].Governor = true
	g.Tiles[TileFountain].Governor = false
	g.Turn.Phase = PhaseEncounter

	p := g.cur()
	mustApply(t, g, Action{Kind: ActGovernor, Card: CardFiveLira, CostCard: CardOneGood, Roll: Roll{1, 1}})
	if p.Hand[CardFiveLira] != 1 || p.Hand[CardOneGood] != 0 {
		t.Fatalf("card-for-card trade wrong: %v", p.Hand)
	}
}

func TestSmugglerEncounter(t *testing.T) {
	g := newTestGame(t)
	placeCurrentAt(g, TileTeaHouse)
	g.Tiles[TileTeaHouse].Smuggler = true
	g.Tiles[TileFountain].Smuggler = false
	g.Turn.Phase = PhaseEncounter

	p := g.cur()
	p.Cart[GoodRed] = 1
	mustApply(t, g, Action{Kind: ActSmuggler, Good: GoodBlue, CostGood: GoodRed, Roll: Roll{2, 3}})
	if p.Cart[GoodBlue] != 1 || p.Cart[GoodRed] != 0 {
		t.Fatalf("smuggler trade wrong: %v", p.Cart)
	}
	if g.Tiles[TileTeaHouse].Smuggler || !g.Tiles[rollTiles[5]].Smuggler {
		t.Fatalf("smuggler relocation wrong")
	}

	g.Turn.Phase = PhaseEncounter
	wantRuleError(t, g, Action{Kind: ActSmuggler, Good: GoodBlue, PayLira: true, Roll: Roll{2, 3}}, ErrIllegalTarget)
}

func TestPoliceStationProxy(t *testing.T) {
	g := newTestGame(t)
	station := g.locationOf(TilePoliceStation)
	dealer := g.locationOf(TileGemstoneDealer)

	// Blue's family member waits at the dealer; the proxy must not arrest it.
	g.Seats[ColorBlue].Family = dealer
	g.Tiles[TilePoliceStation].FamilyMembers = removeColor(g.Tiles[TilePoliceStation].FamilyMembers, ColorBlue)
	g.Tiles[TileGemstoneDealer].FamilyMembers = addColor(g.Tiles[TileGemstoneDealer].FamilyMembers, ColorBlue)

	mustApply(t, g, Action{Kind: ActMove, To: station})
	p := g.cur()
	p.Lira = 20
	mustApply(t, g, Action{Kind: ActPoliceStation, To: dealer, Sub: []Action{{Kind: ActGenericTile}}})

	if p.Rubies != 1 || p.Lira != 5 {
		t.Fatalf("proxy purchase wrong: rubies=%d lira=%d", p.Rubies, p.Lira)
	}
	if p.Location != station {
		t.Fatalf("merchant did not return to the station")
	}
	if p.Family != dealer {
		t.Fatalf("family member not at the proxy destination")
	}
	if g.PendingRewards != 0 || g.Seats[ColorBlue].Family != dealer {
		t.Fatalf("proxy must not capture: pending=%d", g.PendingRewards)
	}
}

func TestPoliceStationProxyRequiresFamilyHome(t *testing.T) {
	g := newTestGame(t)
	station := g.locationOf(TilePoliceStation)
	dealer := g.locationOf(TileGemstoneDealer)

	mustApply(t, g, Action{Kind: ActMove, To: station})
	p := g.cur()
	p.Family = dealer
	g.Tiles[TilePoliceStation].FamilyMembers = removeColor(g.Tiles[TilePoliceStation].FamilyMembers, p.Color)
	g.Tiles[TileGemstoneDealer].FamilyMembers = addColor(g.Tiles[TileGemstoneDealer].FamilyMembers, p.Color)

	wantRuleError(t, g, Action{Kind: ActPoliceStation, To: dealer, Sub: []Action{{Kind: ActGenericTile}}}, ErrIllegalTarget)
	// A nested proxy payload is rejected too.
	p = g.cur()
	p.Family = station
	g.Tiles[TileGemstoneDealer].FamilyMembers = removeColor(g.Tiles[TileGemstoneDealer].FamilyMembers, p.Color)
	g.Tiles[TilePoliceStation].FamilyMembers = addColor(g.Tiles[TilePoliceStation].FamilyMembers, p.Color)
	wantRuleError(t, g, Action{Kind: ActPoliceStation, To: dealer, Sub: []Action{
		{Kind: ActPoliceStation, To: dealer},
	}}, ErrIllegalTarget)
}
