package fixtures

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/payout"
	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/pkg/contracts/ledger"
)

const (
	InitialLiquidity = 1_000_000
	MinLiquidity     = 100_000
	SlipStake        = 1_000
	SlipLegs         = 3
	LeagueSupply     = 1_000_000_000
	houseAddress     = "league-house"
)

var ErrTurns = errors.New("turns must be in [1,36]")

// Step é uma transição pronta para ser proposta ao validador
type Step struct {
	Name    string
	Tx      ledger.Transaction
	Witness string
}

// Builder gera, de forma determinística, a história de uma temporada:
// gênese (bootstrap, season, house, pool, LP share) e dois passos por turno
// (abertura com partidas e betslip; liquidação com resultados e placar).
type Builder struct {
	SeasonID string
	Seed     string
	Turns    int
}

type utxo struct {
	id  ledger.UtxoID
	rec ledger.Record
}

type state struct {
	b      Builder
	season assets.Season
	pool   assets.LiquidityPool
	refs   map[string]utxo // nome lógico -> saída ainda não gasta
	steps  []Step
}

func (b Builder) Build() ([]Step, error) {
	if b.Turns < 1 || b.Turns > assets.TurnsPerSeason {
		return nil, fmt.Errorf("%w, got %d", ErrTurns, b.Turns)
	}
	s := &state{b: b, refs: map[string]utxo{}}
	if err := s.genesis(); err != nil {
		return nil, err
	}
	for turn := uint32(1); turn <= uint32(b.Turns); turn++ {
		matches, slip, err := s.openTurn(turn)
		if err != nil {
			return nil, err
		}
		if err := s.settleTurn(turn, matches, slip); err != nil {
			return nil, err
		}
	}
	return s.steps, nil
}

// txID deriva um id de 64 hex a partir do seed, da temporada e do nome do passo
func (s *state) txID(name string) string {
	sum := sha256.Sum256([]byte(s.b.Seed + "|" + s.b.SeasonID + "|" + name))
	return hex.EncodeToString(sum[:])
}

func (s *state) spend(name string) ledger.Input {
	u := s.refs[name]
	delete(s.refs, name)
	return ledger.Input{UtxoID: u.id, Record: u.rec}
}

// emit fecha o passo: registra as saídas nomeadas como novas UTXOs
func (s *state) emit(name, witness string, ins []ledger.Input, outs []ledger.Record, names []string) {
	id := s.txID(name)
	for i, n := range names {
		if n != "" {
			s.refs[n] = utxo{id: ledger.UtxoID(fmt.Sprintf("%s:%d", id, i)), rec: outs[i]}
		}
	}
	s.steps = append(s.steps, Step{
		Name:    name,
		Tx:      ledger.Transaction{ID: id, Inputs: ins, Outputs: outs},
		Witness: witness,
	})
}

func (s *state) genesis() error {
	funding := ledger.UtxoID(s.txID("funding") + ":0")
	fundRec, err := assets.Encode(ledger.KindToken, assets.TokenAmount(InitialLiquidity))
	if err != nil {
		return err
	}
	witness := string(funding)

	nft, err := assets.Encode(ledger.KindBootstrap, map[string]string{"season_id": s.b.SeasonID})
	if err != nil {
		return err
	}
	nft.Identity = validator.WitnessIdentity(witness)

	s.season = assets.Season{SeasonID: s.b.SeasonID, TeamScores: map[assets.TeamID]uint32{}}
	shares, err := payout.SharesForDeposit(InitialLiquidity, 0, 0)
	if err != nil {
		return err
	}
	s.pool = assets.LiquidityPool{
		PoolID:         s.b.SeasonID + "-pool",
		TotalLiquidity: InitialLiquidity,
		TotalShares:    shares,
		HouseBalance:   InitialLiquidity,
		IsActive:       true,
		MinLiquidity:   MinLiquidity,
	}

	outs, err := encodeAll(
		rec{ledger.KindBootstrap, nil},
		rec{ledger.KindSeason, s.season},
		rec{ledger.KindHouse, assets.House{TotalLeagueSupply: LeagueSupply, AirdropRemaining: LeagueSupply / 10, ProtocolAddress: houseAddress}},
		rec{ledger.KindLiquidityPool, s.pool},
		rec{ledger.KindLPShare, assets.LPShare{ShareID: s.b.SeasonID + "-lp-0", LPAddress: houseAddress, Shares: shares, InitialDeposit: InitialLiquidity}},
	)
	if err != nil {
		return err
	}
	outs[0] = nft
	ins := []ledger.Input{{UtxoID: funding, Record: fundRec}}
	s.emit("genesis", witness, ins, outs, []string{"", "season", "house", "pool", "lp"})
	return nil
}

type rec struct {
	kind ledger.Kind
	v    any
}

func encodeAll(rs ...rec) ([]ledger.Record, error) {
	out := make([]ledger.Record, len(rs))
	for i, r := range rs {
		if r.v == nil {
			continue
		}
		e, err := assets.Encode(r.kind, r.v)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func matchID(seasonID string, turn uint32, idx uint8) string {
	return fmt.Sprintf("%s-t%02d-m%d", seasonID, turn, idx)
}

// draw devolve um inteiro pseudoaleatório em [lo, hi] derivado do seed
func (s *state) draw(lo, hi uint64, parts ...any) uint64 {
	sum := sha256.Sum256([]byte(s.b.Seed + fmt.Sprint(parts...)))
	return lo + binary.BigEndian.Uint64(sum[:8])%(hi-lo+1)
}

// Pairings devolve os 10 confrontos do turno (método do círculo, 19 rodadas por
// turno; no returno mandante e visitante se invertem).
func Pairings(turn uint32) [assets.MatchesPerTurn][2]assets.TeamID {
	const n = assets.RosterSize
	round := int(turn-1) % (n - 1)
	swap := (int(turn-1)/(n-1))%2 == 1
	slot := func(pos int) assets.TeamID {
		if pos == 0 {
			return 0
		}
		return assets.TeamID(1 + (pos-1+round)%(n-1))
	}
	var out [assets.MatchesPerTurn][2]assets.TeamID
	for i := 0; i < n/2; i++ {
		home, away := slot(i), slot(n-1-i)
		if swap {
			home, away = away, home
		}
		out[i] = [2]assets.TeamID{home, away}
	}
	return out
}

func (s *state) openTurn(turn uint32) ([]assets.Match, assets.Betslip, error) {
	var (
		matches []assets.Match
		outs    []ledger.Record
		names   []string
	)
	for idx, pair := range Pairings(turn) {
		i := uint8(idx)
		home, _ := assets.TeamName(pair[0])
		away, _ := assets.TeamName(pair[1])
		locked, err := payout.LockOdds(
			s.draw(50, 1_000, turn, i, "home"),
			s.draw(50, 1_000, turn, i, "away"),
			s.draw(50, 1_000, turn, i, "draw"),
		)
		if err != nil {
			return nil, assets.Betslip{}, err
		}
		m := assets.Match{
			SeasonID:   s.b.SeasonID,
			Turn:       turn,
			MatchIndex: i,
			HomeTeam:   home,
			AwayTeam:   away,
			HomeOdds:   s.draw(15_000, 60_000, turn, i, "base-home"),
			AwayOdds:   s.draw(15_000, 60_000, turn, i, "base-away"),
			DrawOdds:   s.draw(20_000, 45_000, turn, i, "base-draw"),
			LockedOdds: &locked,
			Result:     assets.Pending,
		}
		r, err := assets.Encode(ledger.KindMatch, m)
		if err != nil {
			return nil, assets.Betslip{}, err
		}
		matches = append(matches, m)
		outs = append(outs, r)
		names = append(names, matchID(s.b.SeasonID, turn, i))
	}

	slip := s.parlay(turn, matches)
	slipRec, err := assets.Encode(ledger.KindBetslip, slip)
	if err != nil {
		return nil, assets.Betslip{}, err
	}
	outs = append(outs, slipRec)
	names = append(names, "slip")

	// stake entra no pool
	s.pool.TotalCollected += slip.TotalStake
	s.pool.TotalLiquidity += slip.TotalStake
	s.pool.TotalBetsInPlay += slip.TotalStake
	s.pool.HouseBalance = s.pool.TotalLiquidity
	poolRec, err := assets.Encode(ledger.KindLiquidityPool, s.pool)
	if err != nil {
		return nil, assets.Betslip{}, err
	}
	outs = append(outs, poolRec)
	names = append(names, "pool")

	ins := []ledger.Input{s.spend("pool")}
	s.emit(fmt.Sprintf("turn-%02d-open", turn), "", ins, outs, names)
	return matches, slip, nil
}

// parlay monta um betslip nas SlipLegs primeiras partidas, apostando no mandante
func (s *state) parlay(turn uint32, matches []assets.Match) assets.Betslip {
	legs := make([]assets.SingleBet, 0, SlipLegs)
	for _, m := range matches[:SlipLegs] {
		legs = append(legs, assets.SingleBet{
			MatchID:    matchID(s.b.SeasonID, turn, m.MatchIndex),
			Prediction: assets.HomeWin,
			Odds:       m.LockedOdds.HomeOdds,
		})
	}
	mult := payout.ParlayMultiplier(len(legs))
	return assets.Betslip{
		SlipID:           fmt.Sprintf("%s-t%02d-slip", s.b.SeasonID, turn),
		Bettor:           "sim-bettor",
		BetType:          assets.Parlay,
		Bets:             legs,
		TotalStake:       SlipStake,
		StakePerBet:      SlipStake,
		PotentialPayout:  payout.PotentialPayout(assets.Parlay, SlipStake, legs, nil),
		Badges:           []assets.TeamID{},
		Timestamp:        uint64(turn),
		Allocations:      payout.WeightedAllocations(SlipStake, legs, mult),
		LockedMultiplier: mult,
	}
}

// RandomSeed é o seed de sorteio dos resultados de um turno
func (b Builder) RandomSeed(turn uint32) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|turn-%d", b.Seed, b.SeasonID, turn)))
	return hex.EncodeToString(sum[:])
}

func (s *state) settleTurn(turn uint32, matches []assets.Match, slip assets.Betslip) error {
	seed := s.b.RandomSeed(turn)
	var (
		ins     []ledger.Input
		outs    []ledger.Record
		results []payout.Result
	)
	for _, m := range matches {
		id := matchID(s.b.SeasonID, turn, m.MatchIndex)
		ins = append(ins, s.spend(id))

		m.Result = payout.GenerateOutcome(seed, m.MatchIndex)
		m.RandomSeed = &seed
		r, err := assets.Encode(ledger.KindMatch, m)
		if err != nil {
			return err
		}
		outs = append(outs, r)
		results = append(results, payout.Result{MatchID: id, Outcome: m.Result})

		home, _ := assets.LookupTeam(m.HomeTeam)
		away, _ := assets.LookupTeam(m.AwayTeam)
		s.season.TeamScores[home] += payout.Points(m.Result, true)
		s.season.TeamScores[away] += payout.Points(m.Result, false)
	}

	paid := payout.BetslipPayout(slip, results)
	slip.Settled = true
	slip.PayoutAmount = paid
	ins = append(ins, s.spend("slip"))
	slipRec, err := assets.Encode(ledger.KindBetslip, slip)
	if err != nil {
		return err
	}
	outs = append(outs, slipRec)

	// pagamento e receita do protocolo saem da liquidez
	revenue := payout.ProtocolShare(payout.HouseEdgeAmount(slip.TotalStake, payout.CombinedOdds(slip.Bets)))
	s.pool.TotalPaidOut += paid
	s.pool.ProtocolRevenue += revenue
	s.pool.TotalLiquidity -= paid + revenue
	s.pool.TotalBetsInPlay -= slip.TotalStake
	s.pool.HouseBalance = s.pool.TotalLiquidity
	ins = append(ins, s.spend("pool"))
	poolRec, err := assets.Encode(ledger.KindLiquidityPool, s.pool)
	if err != nil {
		return err
	}
	outs = append(outs, poolRec)

	s.season.CurrentTurn = turn
	s.season.TotalBetsCollected += slip.TotalStake
	s.season.SeasonPool += payout.SeasonPoolShare(slip.TotalStake)
	if turn == assets.TurnsPerSeason {
		leader, _ := s.season.Leader()
		s.season.IsFinished = true
		s.season.WinnerTeamID = &leader
	}
	ins = append(ins, s.spend("season"))
	seasonRec, err := assets.Encode(ledger.KindSeason, cloneSeason(s.season))
	if err != nil {
		return err
	}
	outs = append(outs, seasonRec)

	names := make([]string, len(outs))
	names[len(names)-2] = "pool"
	names[len(names)-1] = "season"
	s.emit(fmt.Sprintf("turn-%02d-settle", turn), "", ins, outs, names)
	return nil
}

func cloneSeason(s assets.Season) assets.Season {
	scores := make(map[assets.TeamID]uint32, len(s.TeamScores))
	for k, v := range s.TeamScores {
		scores[k] = v
	}
	s.TeamScores = scores
	return s
}

// Standings devolve o placar final esperado, útil para conferência
func Standings(steps []Step) (assets.Season, error) {
	for i := len(steps) - 1; i >= 0; i-- {
		recs := steps[i].Tx.OutputsOf(ledger.KindSeason)
		if len(recs) == 0 {
			continue
		}
		var s assets.Season
		if err := assets.DecodePayload(recs[0].Payload, &s); err != nil {
			return assets.Season{}, err
		}
		return s, nil
	}
	return assets.Season{}, errors.New("no season output")
}
