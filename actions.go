package main

// ActionKind tags the single Action variant type. Dispatch is by kind; each
// kind reads only the fields its payload needs.
type ActionKind string

const (
	// Movement phase.
	ActMove            ActionKind = "Move"
	ActExtraMoveCard   ActionKind = "ExtraMoveCard"   // move exactly 3-4
	ActNoMoveCard      ActionKind = "NoMoveCard"      // stay put
	ActReturnAssistant ActionKind = "ReturnAssistant" // card: one assistant back

	// Payment phase.
	ActPay ActionKind = "Pay"

	// Tile-action phase.
	ActGenericTile   ActionKind = "GenericTile" // warehouses, post office, fountain, wainwright, dealer
	ActMosque        ActionKind = "Mosque"
	ActMarket        ActionKind = "Market"
	ActSultansPalace ActionKind = "SultansPalace"
	ActBlackMarket   ActionKind = "BlackMarket"
	ActTeaHouse      ActionKind = "TeaHouse"
	ActCaravansary   ActionKind = "Caravansary"
	ActFountain      ActionKind = "Fountain" // explicit assistant subset
	ActPoliceStation ActionKind = "PoliceStation"
	ActGreenTileUse  ActionKind = "GreenTileUse" // warehouse fill + paid extra good
	ActDoubleCard    ActionKind = "DoubleCard"
	ActSellAnyCard   ActionKind = "SellAnyCard"
	ActSkipTile      ActionKind = "SkipTile"

	// Encounter phase.
	ActGovernor     ActionKind = "Governor"
	ActSmuggler     ActionKind = "Smuggler"
	ActChooseReward ActionKind = "ChooseReward"

	// Any phase.
	ActOneGoodCard      ActionKind = "OneGoodCard"
	ActFiveLiraCard     ActionKind = "FiveLiraCard"
	ActArrestFamilyCard ActionKind = "ArrestFamilyCard"
	ActYellowTileUse    ActionKind = "YellowTileUse" // pay 2 lira, one assistant back

	ActYield ActionKind = "Yield"
)

// RedTileUse is the red mosque tile's dice modification: either turn one die
// into a four or reroll both. Both rolls are caller-supplied.
type RedTileUse struct {
	Method  string `json:"method"` // "to-four" or "reroll"
	Initial Roll   `json:"initial"`
	Final   Roll   `json:"final"`
}

const (
	RedTileToFour = "to-four"
	RedTileReroll = "reroll"
)

// CaravanDraw is one of the two caravansary draws: a named card from the
// unlimited deck, or the top of the discard pile.
type CaravanDraw struct {
	FromDiscard bool `json:"from_discard,omitempty"`
	Card        Card `json:"card,omitempty"`
}

// Action is the engine's single input variant. Dice rolls and all caller
// choices arrive as explicit fields so replays are bit-for-bit reproducible.
type Action struct {
	Kind ActionKind `json:"kind"`

	To            Location `json:"to,omitempty"`   // move destination / family destination
	From          Location `json:"from,omitempty"` // assistant pickup location
	SkipAssistant bool     `json:"skip_assistant,omitempty"`

	Good      Good         `json:"good,omitempty"`       // mosque color, black market pick, smuggler gain, extra good
	Goods     map[Good]int `json:"goods,omitempty"`      // market sale / sultan bundle
	NewDemand map[Good]int `json:"new_demand,omitempty"` // market demand replacement

	Card     Card `json:"card,omitempty"`      // double card, governor gain
	CostCard Card `json:"cost_card,omitempty"` // governor cost, caravansary discard
	CostGood Good `json:"cost_good,omitempty"` // smuggler good cost
	PayLira  bool `json:"pay_lira,omitempty"`  // governor/smuggler pays 2 lira instead

	TakeLira   bool `json:"take_lira,omitempty"`   // capture reward: 3 lira
	RewardCard Card `json:"reward_card,omitempty"` // capture reward: drawn card

	Roll    Roll        `json:"roll,omitempty"`
	RedTile *RedTileUse `json:"red_tile,omitempty"`
	Call    int         `json:"call,omitempty"` // tea house call

	Draws     []CaravanDraw `json:"draws,omitempty"`     // exactly two
	Locations []Location    `json:"locations,omitempty"` // fountain assistant subset

	Sub []Action `json:"sub,omitempty"` // double card (two) / police station (one)
}

// anyPhase reports whether the kind is playable in every phase, including
// pending-yield.
func anyPhase(k ActionKind) bool {
	switch k {
	case ActOneGoodCard, ActFiveLiraCard, ActArrestFamilyCard, ActYellowTileUse:
		return true
	}
	return false
}

// tilePhaseKind reports whether the kind resolves a tile action, which also
// makes it a valid police-station proxy payload.
func tilePhaseKind(k ActionKind) bool {
	switch k {
	case ActGenericTile, ActMosque, ActMarket, ActSultansPalace, ActBlackMarket,
		ActTeaHouse, ActCaravansary, ActFountain, ActGreenTileUse,
		ActDoubleCard, ActSellAnyCard:
		return true
	}
	return false
}
