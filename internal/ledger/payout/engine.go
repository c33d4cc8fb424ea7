package payout

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"math"
	"math/bits"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
)

// Parâmetros econômicos, em basis points (10000 = 1.0x).
const (
	BpsScale = 10_000

	HouseEdgeBps         = 400 // 4%
	BadgeBonusBps        = 500 // 5%
	SeasonPoolBps        = 200
	ProtocolRevenueBps   = 200
	MarketplaceFeeBps    = 250
	MaxPayoutPerBet      = 100_000
	MaxParlayMultiplier  = 12_500
	LockedOddsMin        = 12_500
	LockedOddsMax        = 19_500
	rawOddsMin           = 18_000
	rawOddsMax           = 55_000
	lockedOddsBandWidth  = LockedOddsMax - LockedOddsMin
	rawOddsWidth         = rawOddsMax - rawOddsMin
	outcomeHomeThreshold = 45
	outcomeDrawThreshold = 75
)

// ErrZeroSeed: seed zero levaria a divisão por zero no cálculo parimutuel.
var ErrZeroSeed = errors.New("odds seed must be non-zero")

var parlayTable = [...]uint64{10_000, 10_500, 11_000, 11_300, 11_600, 11_900, 12_100, 12_300, 12_400}

// SatMul, SatAdd e SatSub saturam em vez de dar overflow/underflow
func SatMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

func SatAdd(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return s
}

func SatSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// CompressOdds mapeia odds parimutuel brutas para a faixa segura [12500, 19500].
func CompressOdds(raw uint64) uint64 {
	switch {
	case raw < rawOddsMin:
		return LockedOddsMin
	case raw > rawOddsMax:
		return LockedOddsMax
	default:
		return LockedOddsMin + (raw-rawOddsMin)*lockedOddsBandWidth/rawOddsWidth
	}
}

// LockOdds calcula as odds travadas a partir do volume semente de cada resultado.
func LockOdds(homeSeed, awaySeed, drawSeed uint64) (assets.LockedOdds, error) {
	if homeSeed == 0 || awaySeed == 0 || drawSeed == 0 {
		return assets.LockedOdds{}, ErrZeroSeed
	}
	total := SatAdd(SatAdd(homeSeed, awaySeed), drawSeed)
	scaled := SatMul(total, BpsScale)
	return assets.LockedOdds{
		HomeOdds: CompressOdds(scaled / homeSeed),
		AwayOdds: CompressOdds(scaled / awaySeed),
		DrawOdds: CompressOdds(scaled / drawSeed),
		Locked:   true,
	}, nil
}

// ParlayMultiplier é o bônus por número de pernas, limitado a MaxParlayMultiplier.
func ParlayMultiplier(legs int) uint64 {
	var m uint64
	switch {
	case legs < 1:
		m = BpsScale
	case legs <= len(parlayTable):
		m = parlayTable[legs-1]
	default:
		m = MaxParlayMultiplier
	}
	if m > MaxParlayMultiplier {
		m = MaxParlayMultiplier
	}
	return m
}

// CombinedOdds multiplica as odds das pernas, dividindo por 10000 a cada passo.
func CombinedOdds(legs []assets.SingleBet) uint64 {
	combined := uint64(BpsScale)
	for _, leg := range legs {
		combined = SatMul(combined, leg.Odds) / BpsScale
	}
	return combined
}

// WeightedAllocations distribui o stake para que cada perna contribua igualmente ao
// payout alvo. O resto de targetPayout/len(legs) é descartado: o payout final fica
// levemente abaixo do alvo e nunca é arredondado para cima.
func WeightedAllocations(totalStake uint64, legs []assets.SingleBet, multiplier uint64) []assets.BetAllocation {
	if len(legs) == 0 {
		return nil
	}
	target := SatMul(SatMul(totalStake, CombinedOdds(legs)), multiplier) / (BpsScale * BpsScale)
	perLeg := target / uint64(len(legs))

	out := make([]assets.BetAllocation, len(legs))
	for i, leg := range legs {
		var alloc uint64
		if leg.Odds > 0 {
			alloc = SatMul(perLeg, BpsScale) / leg.Odds
		}
		out[i] = assets.BetAllocation{MatchID: leg.MatchID, Allocation: alloc}
	}
	return out
}

func withBadge(odds uint64) uint64 {
	return SatAdd(odds, SatMul(odds, BadgeBonusBps)/BpsScale)
}

func withHouseEdge(odds uint64) uint64 {
	return SatSub(odds, SatMul(odds, HouseEdgeBps)/BpsScale)
}

// SingleBetPayout aplica bônus de badge (opcional) e house edge sobre as odds.
func SingleBetPayout(stake, odds uint64, hasBadge bool) uint64 {
	final := odds
	if hasBadge {
		final = withBadge(final)
	}
	return SatMul(stake, withHouseEdge(final)) / BpsScale
}

// HasBadge: qualquer badge do apostador vale para todas as pernas. O engine não
// cruza o time do badge com os times da partida.
func HasBadge(badges []assets.TeamID) bool { return len(badges) > 0 }

// ParlayPayout acumula as odds perna a perna (com bônus de badge por perna) e aplica
// o house edge uma única vez sobre as odds combinadas.
func ParlayPayout(stake uint64, legs []assets.SingleBet, badges []assets.TeamID) uint64 {
	badge := HasBadge(badges)
	combined := uint64(BpsScale)
	for _, leg := range legs {
		odds := leg.Odds
		if badge {
			odds = withBadge(odds)
		}
		combined = SatMul(combined, odds) / BpsScale
	}
	return SatMul(stake, withHouseEdge(combined)) / BpsScale
}

// Result é o resultado conhecido de uma partida, usado na liquidação.
type Result struct {
	MatchID string
	Outcome assets.MatchResult
}

func lookup(results []Result, matchID string) (assets.MatchResult, bool) {
	for _, r := range results {
		if r.MatchID == matchID {
			return r.Outcome, true
		}
	}
	return "", false
}

func won(leg assets.SingleBet, results []Result) bool {
	r, ok := lookup(results, leg.MatchID)
	return ok && r == leg.Prediction
}

// BetslipPayout calcula quanto o betslip paga dados os resultados. Para ids repetidos
// em results vale a primeira ocorrência.
func BetslipPayout(slip assets.Betslip, results []Result) uint64 {
	badge := HasBadge(slip.Badges)
	switch slip.BetType {
	case assets.Single:
		if len(slip.Bets) == 0 || !won(slip.Bets[0], results) {
			return 0
		}
		return SingleBetPayout(slip.TotalStake, slip.Bets[0].Odds, badge)
	case assets.Parlay:
		// parlay sem pernas não paga nada (não vale como vitória vazia)
		if len(slip.Bets) == 0 {
			return 0
		}
		for _, leg := range slip.Bets {
			if !won(leg, results) {
				return 0
			}
		}
		return ParlayPayout(slip.TotalStake, slip.Bets, slip.Badges)
	case assets.SystemBet:
		var total uint64
		for _, leg := range slip.Bets {
			if won(leg, results) {
				total = SatAdd(total, SingleBetPayout(slip.StakePerBet, leg.Odds, badge))
			}
		}
		return total
	default:
		return 0
	}
}

// PotentialPayout é o payout máximo exibido na montagem do betslip (todas as pernas ganhando).
func PotentialPayout(kind assets.BetKind, stake uint64, legs []assets.SingleBet, badges []assets.TeamID) uint64 {
	if len(legs) == 0 {
		return 0
	}
	switch kind {
	case assets.Single:
		return SingleBetPayout(stake, legs[0].Odds, HasBadge(badges))
	case assets.Parlay:
		boosted := SatMul(ParlayPayout(stake, legs, badges), ParlayMultiplier(len(legs))) / BpsScale
		if boosted > MaxPayoutPerBet {
			boosted = MaxPayoutPerBet
		}
		return boosted
	case assets.SystemBet:
		perLeg := stake / uint64(len(legs))
		var total uint64
		for _, leg := range legs {
			total = SatAdd(total, SingleBetPayout(perLeg, leg.Odds, HasBadge(badges)))
		}
		return total
	default:
		return 0
	}
}

// GenerateOutcome sorteia o resultado a partir de sha256(seed || matchIndex).
// Distribuição: 45% mandante, 30% empate, 25% visitante.
func GenerateOutcome(seed string, matchIndex uint8) assets.MatchResult {
	h := sha256.New()
	h.Write([]byte(seed))
	h.Write([]byte{matchIndex})
	sum := h.Sum(nil)

	v := binary.BigEndian.Uint32(sum[:4]) % 100
	switch {
	case v < outcomeHomeThreshold:
		return assets.HomeWin
	case v < outcomeDrawThreshold:
		return assets.Draw
	default:
		return assets.AwayWin
	}
}

// Points é a pontuação de tabela: vitória 3, empate 1, derrota 0.
func Points(result assets.MatchResult, home bool) uint32 {
	switch result {
	case assets.Draw:
		return 1
	case assets.HomeWin:
		if home {
			return 3
		}
	case assets.AwayWin:
		if !home {
			return 3
		}
	}
	return 0
}

func HouseEdgeAmount(stake, odds uint64) uint64 {
	gross := SatMul(stake, odds) / BpsScale
	return SatMul(gross, HouseEdgeBps) / BpsScale
}

func ProtocolShare(houseEdge uint64) uint64 { return SatMul(houseEdge, ProtocolRevenueBps) / BpsScale }

func SeasonPoolShare(stake uint64) uint64 { return SatMul(stake, SeasonPoolBps) / BpsScale }

func MarketplaceFee(price uint64) uint64 { return SatMul(price, MarketplaceFeeBps) / BpsScale }
