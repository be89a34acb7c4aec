package turn

import (
	"context"
	"testing"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

const grabIndex = 1

func TestNormalTurn_TwoActionsThenReload(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-0")
	alice.Weapons = []game.WeaponCard{{ID: "w1", Name: "Rail", Cost: []game.Cube{game.CubeRed}}}

	asker := newScriptedAsker()
	turn := newTurn(m, alice, asker)
	if err := turn.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []protocol.QuestionKind{
		protocol.KindAction, protocol.KindDestination,
		protocol.KindAction, protocol.KindDestination,
		protocol.KindWeaponToReload,
	}
	if !sameKinds(asker.asked, want) {
		t.Fatalf("question order mismatch: got=%v want=%v", asker.asked, want)
	}
	if !alice.Weapons[0].Loaded {
		t.Fatalf("weapon should be reloaded")
	}
	if got := alice.Ammo[game.CubeRed]; got != 0 {
		t.Fatalf("reload should charge the full cost, red left=%d", got)
	}
	if turn.Phase() != PhaseDone {
		t.Fatalf("expected done, got %s", turn.Phase())
	}
}

func TestNormalTurn_StepWalksThePhases(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	asker := newScriptedAsker().answer(protocol.KindAction, grabIndex, grabIndex)
	turn := newTurn(m, alice, asker)

	ctx := context.Background()
	if got := turn.Step(ctx); got != PhaseAction || turn.Remaining() != 1 {
		t.Fatalf("after first action: phase=%s remaining=%d", got, turn.Remaining())
	}
	if got := turn.Step(ctx); got != PhaseReload {
		t.Fatalf("after second action: phase=%s", got)
	}
	if got := turn.Step(ctx); got != PhaseDone {
		t.Fatalf("after reload: phase=%s", got)
	}
	if got, want := asker.count(protocol.KindAction), ActionsPerTurn; got != want {
		t.Fatalf("action asks mismatch: got=%d want=%d", got, want)
	}
}

func TestNormalTurn_ExactlyTwoActionAsksEvenWhenAnswersAreUnusable(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	asker := newScriptedAsker().answer(protocol.KindAction, 9, -3)

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got, want := asker.count(protocol.KindAction), ActionsPerTurn; got != want {
		t.Fatalf("action asks mismatch: got=%d want=%d", got, want)
	}
	if alice.Position.ID != "1-1" {
		t.Fatalf("unusable answers should not move the participant")
	}
}

func TestNormalTurn_OffersPowerupAroundActions(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Powerups = []game.PowerupCard{{ID: "tp", Name: "Teleporter", Color: game.CubeBlue, Effect: "fx-teleport", Timing: game.TimingAction}}
	asker := newScriptedAsker().
		answer(protocol.KindPowerup, 1, 1, 1).
		answer(protocol.KindAction, grabIndex, grabIndex)

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []protocol.QuestionKind{
		protocol.KindPowerup, protocol.KindAction,
		protocol.KindPowerup, protocol.KindAction,
		protocol.KindPowerup,
	}
	if !sameKinds(asker.asked, want) {
		t.Fatalf("question order mismatch: got=%v want=%v", asker.asked, want)
	}
	if len(alice.Powerups) != 1 {
		t.Fatalf("declined card should stay in hand")
	}
}

func TestNormalTurn_ReceivingCardsAreNotOfferedOnOwnTurn(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Powerups = []game.PowerupCard{{ID: "tg", Timing: game.TimingReceiving}, {ID: "sc", Timing: game.TimingDealing}}
	asker := newScriptedAsker().answer(protocol.KindAction, grabIndex, grabIndex)

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := asker.count(protocol.KindPowerup); got != 0 {
		t.Fatalf("expected no reactive offers, got %d", got)
	}
}

func TestNormalTurn_ReloadSkippedWhenNothingAffordable(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Weapons = []game.WeaponCard{{ID: "w1", Name: "Heavy", Cost: []game.Cube{game.CubeRed, game.CubeRed}}}
	asker := newScriptedAsker().answer(protocol.KindAction, grabIndex, grabIndex)

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := asker.count(protocol.KindWeaponToReload); got != 0 {
		t.Fatalf("expected no reload question, got %d", got)
	}
}

func TestNormalTurn_ReloadOffersOnlyAffordableWeapons(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Weapons = []game.WeaponCard{
		{ID: "w1", Name: "Heavy", Cost: []game.Cube{game.CubeRed, game.CubeRed}},
		{ID: "w2", Name: "Rail", Cost: []game.Cube{game.CubeRed}},
	}
	asker := newScriptedAsker().
		answer(protocol.KindAction, grabIndex, grabIndex).
		answer(protocol.KindWeaponToReload, 1)

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := asker.count(protocol.KindWeaponToReload); got != 1 {
		t.Fatalf("expected one reload question, got %d", got)
	}
	got := asker.options[protocol.KindWeaponToReload]
	if len(got) != 2 || len(got[0]) != 1 || got[0][0] != "Rail" || len(got[1]) != 1 || got[1][0] != protocol.DeclineLabel {
		t.Fatalf("reload options mismatch: got=%v want=[[Rail] [%s]]", got, protocol.DeclineLabel)
	}
}

func TestNormalTurn_ReloadDeclineKeepsResources(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Weapons = []game.WeaponCard{{ID: "w1", Name: "Rail", Cost: []game.Cube{game.CubeRed}}}
	asker := newScriptedAsker().
		answer(protocol.KindAction, grabIndex, grabIndex).
		answer(protocol.KindWeaponToReload, 1)

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if alice.Weapons[0].Loaded || alice.Ammo[game.CubeRed] != 1 {
		t.Fatalf("decline should change nothing: loaded=%v ammo=%v", alice.Weapons[0].Loaded, alice.Ammo)
	}
}

func TestNormalTurn_ChannelFailureEndsTurn(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Weapons = []game.WeaponCard{{ID: "w1", Name: "Rail", Cost: []game.Cube{game.CubeRed}}}
	asker := newScriptedAsker()
	asker.fail[protocol.KindAction] = true
	asker.suspendOnFail = true

	turn := newTurn(m, alice, asker)
	if err := turn.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := asker.count(protocol.KindAction); got != 1 {
		t.Fatalf("expected a single action ask before suspension, got %d", got)
	}
	if got := asker.count(protocol.KindWeaponToReload); got != 0 {
		t.Fatalf("suspended participant should not be asked to reload")
	}
	if turn.Phase() != PhaseDone {
		t.Fatalf("expected done, got %s", turn.Phase())
	}
}

func TestNormalTurn_SuspendedParticipantIsNeverAsked(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	alice.Suspended = true
	asker := newScriptedAsker()

	if err := newTurn(m, alice, asker).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(asker.asked) != 0 {
		t.Fatalf("expected no questions, got %v", asker.asked)
	}
}

func TestNormalTurn_CancelledContext(t *testing.T) {
	m := newTestMatch(t)
	alice := placed(t, m, "alice", "1-1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := newTurn(m, alice, newScriptedAsker()).Run(ctx); err == nil {
		t.Fatalf("expected context error")
	}
}
