package validator

import "github.com/radieske/league-ledger-validator/internal/ledger/assets"

func validateSeason(b batch) error {
	ins, outs, err := decodeSides[assets.Season](b)
	if err != nil {
		return err
	}
	switch {
	case len(outs) == 0:
		return nil
	case len(ins) == 0:
		for i := range outs {
			if err := checkSeasonCreation(b, i, &outs[i]); err != nil {
				return err
			}
		}
		return nil
	case len(ins) != len(outs):
		return reject(b.kind, RuleShape, "season pairs mismatch: %d inputs, %d outputs", len(ins), len(outs))
	}
	for i := range ins {
		if err := checkSeasonUpdate(b, i, &ins[i], &outs[i]); err != nil {
			return err
		}
	}
	return nil
}

func checkScoreKeys(b batch, i int, s *assets.Season) error {
	for id := range s.TeamScores {
		if !id.Valid() {
			return reject(b.kind, "season.score_key", "output %d scores team %d", i, id)
		}
	}
	return nil
}

func checkSeasonCreation(b batch, i int, s *assets.Season) error {
	if err := checkScoreKeys(b, i, s); err != nil {
		return err
	}
	if s.CurrentTurn != 0 {
		return reject(b.kind, "season.creation.turn", "output %d starts at turn %d", i, s.CurrentTurn)
	}
	for id := assets.TeamID(0); id < assets.RosterSize; id++ {
		if s.Score(id) != 0 {
			return reject(b.kind, "season.creation.scores", "output %d team %d starts with %d points", i, id, s.Score(id))
		}
	}
	if s.TotalBetsCollected != 0 || s.SeasonPool != 0 {
		return reject(b.kind, "season.creation.pool", "output %d starts with collected %d pool %d", i, s.TotalBetsCollected, s.SeasonPool)
	}
	if s.IsFinished || s.WinnerTeamID != nil {
		return reject(b.kind, "season.creation.finished", "output %d starts finished", i)
	}
	return nil
}

func checkSeasonUpdate(b batch, i int, in, out *assets.Season) error {
	if in.SeasonID != out.SeasonID {
		return reject(b.kind, "season.update.id", "pair %d %q -> %q", i, in.SeasonID, out.SeasonID)
	}
	if err := checkScoreKeys(b, i, out); err != nil {
		return err
	}

	// temporada encerrada é terminal
	if in.IsFinished {
		if !out.IsFinished || out.CurrentTurn != in.CurrentTurn {
			return reject(b.kind, "season.update.finished_terminal", "pair %d reopened or moved turn", i)
		}
		return nil
	}

	if out.CurrentTurn < in.CurrentTurn || out.CurrentTurn > in.CurrentTurn+1 || out.CurrentTurn > assets.TurnsPerSeason {
		return reject(b.kind, "season.update.turn", "pair %d turn %d -> %d", i, in.CurrentTurn, out.CurrentTurn)
	}
	if out.TotalBetsCollected < in.TotalBetsCollected || out.SeasonPool < in.SeasonPool {
		return reject(b.kind, "season.update.pool", "pair %d totals decreased", i)
	}
	if out.CurrentTurn == assets.TurnsPerSeason && !out.IsFinished {
		return reject(b.kind, "season.update.must_finish", "pair %d reached turn %d without finishing", i, out.CurrentTurn)
	}
	if !out.IsFinished {
		return nil
	}

	// encerrar antes do turno final é permitido, mas o vencedor segue a mesma regra
	if out.WinnerTeamID == nil {
		return reject(b.kind, "season.update.must_finish", "pair %d finished at turn %d without winner", i, out.CurrentTurn)
	}
	winner := *out.WinnerTeamID
	if !winner.Valid() {
		return reject(b.kind, "season.update.winner", "pair %d winner %d outside roster", i, winner)
	}
	// desempate: menor team id entre os que atingem a pontuação máxima
	leader, top := out.Leader()
	if out.Score(winner) != top {
		return reject(b.kind, "season.update.winner", "pair %d winner %d has %d, max is %d", i, winner, out.Score(winner), top)
	}
	if winner != leader {
		return reject(b.kind, "season.update.tie_break", "pair %d winner %d, lowest id at max is %d", i, winner, leader)
	}
	return nil
}
