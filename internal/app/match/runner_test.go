package match

import (
	"context"
	"testing"
	"time"

	"skirmish/internal/domain/game"
	"skirmish/internal/domain/protocol"
)

const shootIndex = 2

func TestRunner_FrenzyGivesEveryoneOneMoreTurn(t *testing.T) {
	prompter := newStubPrompter()
	prompter.answers[protocol.KindAction] = []int{shootIndex}
	metrics := &countingMetrics{}
	r := newTestRunner(t, 1, prompter, nil, Options{MinActive: 2, Metrics: metrics})

	alice, _ := r.Match().Player("alice")
	alice.Weapons = []game.WeaponCard{{ID: "w-kill", Name: "Killer", Cost: []game.Cube{game.CubeRed}, FixedOrder: true, Sequences: [][]string{{"fx-kill"}}, Loaded: true}}

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != EndFrenzy {
		t.Fatalf("reason mismatch: got=%s", res.Reason)
	}
	if got, want := res.Turns, 4; got != want {
		t.Fatalf("turn count mismatch: got=%d want=%d", got, want)
	}
	if res.Winner != "alice" {
		t.Fatalf("winner mismatch: got=%s scores=%v", res.Winner, res.Scores)
	}
	bob, _ := r.Match().Player("bob")
	if bob.Deaths != 1 || bob.Position == nil {
		t.Fatalf("bob should have died once and respawned: deaths=%d pos=%v", bob.Deaths, bob.Position)
	}
	if got, want := metrics.completed, 4; got != want {
		t.Fatalf("completed metric mismatch: got=%d want=%d", got, want)
	}
	if metrics.started != 1 || metrics.finished != 1 {
		t.Fatalf("match metrics mismatch: started=%d finished=%d", metrics.started, metrics.finished)
	}
	if got, want := len(prompter.notified), 3; got != want {
		t.Fatalf("quit notifications mismatch: got=%d want=%d", got, want)
	}
	for _, n := range prompter.notified {
		if n.kind != protocol.KindQuit {
			t.Fatalf("unexpected notification %s", n.kind)
		}
	}
}

func TestRunner_SkipsSuspendedParticipants(t *testing.T) {
	prompter := newStubPrompter()
	metrics := &countingMetrics{}
	tracker := stubTracker{suspended: map[string]bool{"bob": true}}
	r := newTestRunner(t, 8, prompter, tracker, Options{MinActive: 2, MaxTurns: 4, Metrics: metrics})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != EndTurnLimit {
		t.Fatalf("reason mismatch: got=%s", res.Reason)
	}
	if got := prompter.askedBy("bob"); got != 0 {
		t.Fatalf("suspended participant was asked %d questions", got)
	}
	if got, want := metrics.skipped, 2; got != want {
		t.Fatalf("skipped metric mismatch: got=%d want=%d", got, want)
	}
	bob, _ := r.Match().Player("bob")
	if bob.Position == nil {
		t.Fatalf("suspended participant should still be placed on the board")
	}
	for _, n := range prompter.notified {
		if n.player == "bob" {
			t.Fatalf("suspended participant should not be notified")
		}
	}
}

func TestRunner_EndsWhenTooFewRemain(t *testing.T) {
	prompter := newStubPrompter()
	tracker := stubTracker{suspended: map[string]bool{"bob": true, "carol": true}}
	r := newTestRunner(t, 8, prompter, tracker, Options{MinActive: 2})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != EndTooFew || res.Turns != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(prompter.notified) != 1 || prompter.notified[0].player != "alice" {
		t.Fatalf("only alice should be told to quit, got %+v", prompter.notified)
	}
}

func TestRunner_ZeroMinActiveStillEndsWhenEveryoneIsSuspended(t *testing.T) {
	prompter := newStubPrompter()
	tracker := stubTracker{suspended: map[string]bool{"alice": true, "bob": true, "carol": true}}
	r := newTestRunner(t, 8, prompter, tracker, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != EndTooFew || res.Turns != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRunner_FailedSpawnChoiceStillPlacesEveryone(t *testing.T) {
	prompter := failingPrompter{newStubPrompter()}
	r := newTestRunner(t, 8, prompter, nil, Options{MinActive: 2})

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != EndTooFew {
		t.Fatalf("reason mismatch: got=%s", res.Reason)
	}
	for _, p := range r.Match().Players {
		if p.Position == nil || p.Position.SpawnColor != game.CubeRed {
			t.Fatalf("%s not placed on the red spawn: %+v", p.Name, p.Position)
		}
		if !p.Suspended {
			t.Fatalf("%s should be suspended", p.Name)
		}
	}
}

func TestRunner_SnapshotAndResultAreReadable(t *testing.T) {
	prompter := newStubPrompter()
	r := newTestRunner(t, 8, prompter, nil, Options{MinActive: 2, MaxTurns: 1})
	if _, done := r.Finished(); done {
		t.Fatalf("runner should not be finished before Run")
	}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	res, done := r.Finished()
	if !done || res.MatchID != "m-1" {
		t.Fatalf("unexpected result: %+v done=%v", res, done)
	}
	snap := r.Snapshot()
	if snap.MatchID != "m-1" || len(snap.Players) != 3 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	for _, p := range snap.Players {
		if p.Square == "" {
			t.Fatalf("%s missing from the board in snapshot", p.Name)
		}
	}
}

func TestRunner_CancelledContextAborts(t *testing.T) {
	r := newTestRunner(t, 8, newStubPrompter(), nil, Options{MinActive: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Run(ctx)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if res.Reason != EndAborted {
		t.Fatalf("reason mismatch: got=%s", res.Reason)
	}
}
