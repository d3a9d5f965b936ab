package main

// Good identifies one of the four trade goods. Each good doubles as a mosque
// tile color (Red=fabric, Blue=jewelry, Green=spice, Yellow=fruit).
type Good string

const (
	GoodRed    Good = "Red"
	GoodBlue   Good = "Blue"
	GoodGreen  Good = "Green"
	GoodYellow Good = "Yellow"
)

var allGoods = []Good{GoodRed, GoodBlue, GoodGreen, GoodYellow}

func validGood(g Good) bool {
	switch g {
	case GoodRed, GoodBlue, GoodGreen, GoodYellow:
		return true
	}
	return false
}

// Card identifies a bonus card type. The deck is an unlimited pool of each
// type; cards only ever accumulate in hands and on the caravansary discard.
type Card string

const (
	CardOneGood         Card = "OneGood"
	CardFiveLira        Card = "FiveLira"
	CardExtraMove       Card = "ExtraMove"
	CardNoMove          Card = "NoMove"
	CardReturnAssistant Card = "ReturnAssistant"
	CardArrestFamily    Card = "ArrestFamily"
	CardSellAny         Card = "SellAny"
	CardDoubleSultan    Card = "2xSultansPalace"
	CardDoublePO        Card = "2xPostOffice"
	CardDoubleDealer    Card = "2xGemstoneDealer"
)

var allCards = []Card{
	CardOneGood, CardFiveLira, CardExtraMove, CardNoMove, CardReturnAssistant,
	CardArrestFamily, CardSellAny, CardDoubleSultan, CardDoublePO, CardDoubleDealer,
}

func validCard(c Card) bool {
	for _, k := range allCards {
		if c == k {
			return true
		}
	}
	return false
}

// Color identifies a player seat by merchant color.
type Color string

const (
	ColorRed    Color = "Red"
	ColorGreen  Color = "Green"
	ColorBlue   Color = "Blue"
	ColorYellow Color = "Yellow"
	ColorWhite  Color = "White"
)

func validColor(c Color) bool {
	switch c {
	case ColorRed, ColorGreen, ColorBlue, ColorYellow, ColorWhite:
		return true
	}
	return false
}

// Tile identifies one of the sixteen board tiles.
type Tile string

const (
	TileGreatMosque     Tile = "Great Mosque"
	TilePostOffice      Tile = "Post Office"
	TileFabricWarehouse Tile = "Fabric Warehouse"
	TileSmallMosque     Tile = "Small Mosque"
	TileFruitWarehouse  Tile = "Fruit Warehouse"
	TilePoliceStation   Tile = "Police Station"
	TileFountain        Tile = "Fountain"
	TileSpiceWarehouse  Tile = "Spice Warehouse"
	TileBlackMarket     Tile = "Black Market"
	TileCaravansary     Tile = "Caravansary"
	TileSmallMarket     Tile = "Small Market"
	TileTeaHouse        Tile = "Tea House"
	TileSultansPalace   Tile = "Sultan's Palace"
	TileLargeMarket     Tile = "Large Market"
	TileWainwright      Tile = "Wainwright"
	TileGemstoneDealer  Tile = "Gemstone Dealer"
)

// allTiles is the canonical tile order; defaultLayout places them row-major.
var allTiles = []Tile{
	TileGreatMosque, TilePostOffice, TileFabricWarehouse, TileSmallMosque,
	TileFruitWarehouse, TilePoliceStation, TileFountain, TileSpiceWarehouse,
	TileBlackMarket, TileCaravansary, TileSmallMarket, TileTeaHouse,
	TileSultansPalace, TileLargeMarket, TileWainwright, TileGemstoneDealer,
}

// Location is a board position, row-major 1..16 on the 4x4 grid.
type Location int

func validLocation(l Location) bool {
	return l >= 1 && l <= 16
}

// taxicabDist is the movement distance between two board positions.
func taxicabDist(a, b Location) int {
	ar, ac := int(a-1)/4, int(a-1)%4
	br, bc := int(b-1)/4, int(b-1)%4
	dr := ar - br
	if dr < 0 {
		dr = -dr
	}
	dc := ac - bc
	if dc < 0 {
		dc = -dc
	}
	return dr + dc
}

// Roll is a pair of six-sided dice supplied by the caller, never rolled
// internally.
type Roll [2]int

func (r Roll) Total() int { return r[0] + r[1] }

func validRoll(r Roll) bool {
	return r[0] >= 1 && r[0] <= 6 && r[1] >= 1 && r[1] <= 6
}

// rollTiles maps a two-dice total to the tile the governor or smuggler moves
// to. Five tiles never appear here and are unreachable by dice.
var rollTiles = map[int]Tile{
	2:  TileFabricWarehouse,
	3:  TileSpiceWarehouse,
	4:  TileFruitWarehouse,
	5:  TilePostOffice,
	6:  TileCaravansary,
	7:  TileFountain,
	8:  TileBlackMarket,
	9:  TileTeaHouse,
	10: TileLargeMarket,
	11: TileSmallMarket,
	12: TilePoliceStation,
}

// rollSlot reports the dice total that reaches a tile, or 0 if none does.
// Used only by the state snapshot.
func rollSlot(t Tile) int {
	for total, tile := range rollTiles {
		if tile == t {
			return total
		}
	}
	return 0
}

// warehouseGoods maps each warehouse to the good it fills.
var warehouseGoods = map[Tile]Good{
	TileFabricWarehouse: GoodRed,
	TileSpiceWarehouse:  GoodGreen,
	TileFruitWarehouse:  GoodYellow,
}

// mosquePairs are the tile-color pairs that award a ruby when completed.
var mosquePairs = [2][2]Good{
	{GoodBlue, GoodYellow},
	{GoodRed, GoodGreen},
}

// sultanCycle is the repeating good sequence for the palace bundle; the empty
// slot means any good of the player's choice.
var sultanCycle = []Good{GoodBlue, GoodRed, GoodGreen, GoodYellow, ""}
