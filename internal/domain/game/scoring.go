package game

import "sort"

var trackPoints = []int{8, 6, 4, 2, 1, 1}

// rankPoints ranks contributors by count, ties going to whoever appears first,
// and awards trackPoints shifted by offset ranks.
func rankPoints(track []string, offset int) map[string]int {
	counts := map[string]int{}
	first := map[string]int{}
	var names []string
	for i, n := range track {
		if _, ok := counts[n]; !ok {
			first[n] = i
			names = append(names, n)
		}
		counts[n]++
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return first[a] < first[b]
	})
	out := make(map[string]int, len(names))
	for rank, n := range names {
		pts := 1
		if idx := rank + offset; idx < len(trackPoints) {
			pts = trackPoints[idx]
		}
		out[n] += pts
	}
	return out
}

// TrackPoints scores a damage track: ranked points reduced by one rank per previous death, plus first blood.
func TrackPoints(damage []string, deaths int) map[string]int {
	if len(damage) == 0 {
		return nil
	}
	out := rankPoints(damage, deaths)
	out[damage[0]]++
	return out
}

func (m *Match) award(points map[string]int) {
	for name, pts := range points {
		if p, ok := m.Player(name); ok {
			p.Score += pts
		}
	}
}

// ScoreElimination scores a dead player's track, records the killshot and clears the player
// off the board. It reports true when this elimination triggered the final frenzy.
func (m *Match) ScoreElimination(victim *Player) bool {
	if !victim.Dead() {
		return false
	}
	m.award(TrackPoints(victim.Damage, victim.Deaths))
	killer := victim.Damage[KillshotDamage-1]
	frenzy := m.Board.TakeSkull(killer)
	if victim.Overkilled() {
		if k, ok := m.Player(killer); ok {
			k.TakeMarks(victim.Name, 1)
		}
	}
	victim.Deaths++
	victim.Damage = nil
	victim.Position = nil
	m.Publish(Update{Kind: UpdateScore, Player: victim.Name, Detail: "eliminated by " + killer})
	return frenzy
}

// ScoreFinal scores open damage tracks and the killshot track, then returns the leader.
// Ties go to the earlier seat.
func (m *Match) ScoreFinal() string {
	for _, p := range m.Players {
		if len(p.Damage) == 0 {
			continue
		}
		m.award(TrackPoints(p.Damage, p.Deaths))
		p.Damage = nil
	}
	m.award(rankPoints(m.Board.Killshots, 0))

	var winner *Player
	for _, p := range m.Players {
		if winner == nil || p.Score > winner.Score {
			winner = p
		}
	}
	return winner.Name
}
