package assets

import "strconv"

// Constantes do jogo. Todos os valores monetários e odds em basis points (10000 = 1.0x).
const (
	RosterSize       = 20
	MatchesPerTurn   = 10
	TurnsPerSeason   = 36
	MinBet           = 100
	MaxBet           = 1_000_000
	MaxBetsPerSlip   = 20
	MinOdds          = 10_000  // 1.0x
	MaxOdds          = 100_000 // 10.0x
	MaxBadgeBonusBps = 1_000   // 10%
)

// Teams é o roster fixo da liga; o índice é o TeamID.
var Teams = [RosterSize]string{
	"Arsenal", "Aston Villa", "Bournemouth", "Brentford", "Brighton",
	"Chelsea", "Crystal Palace", "Everton", "Fulham", "Ipswich Town",
	"Leicester City", "Liverpool", "Manchester City", "Manchester United", "Newcastle",
	"Nottingham Forest", "Southampton", "Tottenham", "West Ham", "Wolves",
}

// TeamID indexa Teams. Serializa como número (nunca base64 dentro de slices).
type TeamID uint8

func (id TeamID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(id))), nil
}

// Valid informa se o id cabe no roster.
func (id TeamID) Valid() bool { return int(id) < RosterSize }

// TeamName retorna o nome do time; false se o id estiver fora do roster.
func TeamName(id TeamID) (string, bool) {
	if !id.Valid() {
		return "", false
	}
	return Teams[id], true
}

// LookupTeam resolve o nome para o id no roster.
func LookupTeam(name string) (TeamID, bool) {
	for i, t := range Teams {
		if t == name {
			return TeamID(i), true
		}
	}
	return 0, false
}
