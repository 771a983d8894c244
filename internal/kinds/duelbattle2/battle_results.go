package duelbattle2

import (
	"github.com/rokbattles/mailcore/internal/codec"
	"github.com/rokbattles/mailcore/internal/extract"
)

// BattleResultsExtractor extracts the symmetric win/loss stat bundle for
// both the sender and opponent.
type BattleResultsExtractor struct{}

// NewBattleResultsExtractor returns a new battle_results extractor.
func NewBattleResultsExtractor() *BattleResultsExtractor { return &BattleResultsExtractor{} }

// Section returns the battle_results section name.
func (BattleResultsExtractor) Section() string { return "battle_results" }

// Extract builds the sender/opponent win-loss stat bundles from AtkPlayer
// and DefPlayer.
func (BattleResultsExtractor) Extract(input codec.Value) (*extract.Section, error) {
	sender, err := locatePlayer(input, "AtkPlayer")
	if err != nil {
		return nil, err
	}
	opponent, err := locatePlayer(input, "DefPlayer")
	if err != nil {
		return nil, err
	}

	senderResults, err := playerResults(sender)
	if err != nil {
		return nil, err
	}
	opponentResults, err := playerResults(opponent)
	if err != nil {
		return nil, err
	}

	section := extract.NewSection()
	section.Insert("sender", senderResults)
	section.Insert("opponent", opponentResults)
	return section, nil
}

func playerResults(player *codec.Object) (map[string]codec.Value, error) {
	win, err := requireBoolField(player, "IsWin")
	if err != nil {
		return nil, err
	}
	killPoints, err := requireUintField(player, "KillScore")
	if err != nil {
		return nil, err
	}
	power, err := requireUintField(player, "LosePower")
	if err != nil {
		return nil, err
	}
	units, err := requireUintField(player, "UnitTotal")
	if err != nil {
		return nil, err
	}
	slightlyWounded, err := requireUintField(player, "UnitHurt")
	if err != nil {
		return nil, err
	}
	severelyWounded, err := requireUintField(player, "UnitBadHurt")
	if err != nil {
		return nil, err
	}
	dead, err := requireUintField(player, "UnitDead")
	if err != nil {
		return nil, err
	}
	heal, err := requireUintField(player, "UnitReturn")
	if err != nil {
		return nil, err
	}

	return map[string]codec.Value{
		"win":              win,
		"kill_points":      float64(killPoints),
		"power":            float64(power),
		"units":            float64(units),
		"slightly_wounded": float64(slightlyWounded),
		"severely_wounded": float64(severelyWounded),
		"dead":             float64(dead),
		"heal":             float64(heal),
	}, nil
}
