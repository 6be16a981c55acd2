package main

import "testing"

// recordingScene tracks which visuals are currently alive
type recordingScene struct {
	live    map[string]VisualKind
	removed int
}

func newRecordingScene() *recordingScene {
	return &recordingScene{live: make(map[string]VisualKind)}
}

func (s *recordingScene) Add(v Visual) { s.live[v.ID] = v.Kind }

func (s *recordingScene) Remove(v Visual) {
	delete(s.live, v.ID)
	s.removed++
}

func (s *recordingScene) count(kind VisualKind) int {
	n := 0
	for _, k := range s.live {
		if k == kind {
			n++
		}
	}
	return n
}

type recordingAudio struct{ played []Cue }

func (a *recordingAudio) Play(c Cue) { a.played = append(a.played, c) }

func (a *recordingAudio) has(c Cue) bool {
	for _, p := range a.played {
		if p == c {
			return true
		}
	}
	return false
}

func newSceneGame(scene Scene, audio Audio) *Game {
	clk := &testClock{}
	return NewGame(GameOptions{
		Local:  PeerHost,
		Seed:   1,
		Levels: agentLevel,
		Now:    clk.now,
		Scene:  scene,
		Audio:  audio,
	})
}

func TestScenePopulatedOnLoad(t *testing.T) {
	scene := newRecordingScene()
	newSceneGame(scene, nil)
	if scene.count(VisualAgent) != 2 || scene.count(VisualCollectible) != 1 {
		t.Errorf("expected 2 agents and 1 pickup announced, got %v", scene.live)
	}
	if _, ok := scene.live[collectibleVisualID(CollectTreasure, 0)]; !ok {
		t.Error("treasure visual id not announced")
	}
}

func TestShotVisualLifecycle(t *testing.T) {
	scene := newRecordingScene()
	audio := &recordingAudio{}
	g := newSceneGame(scene, audio)

	g.input = AvatarInput{Fire: true}
	g.step()
	if scene.count(VisualBullet) != 1 || !audio.has(CueShot) {
		t.Fatalf("shot should add a bullet visual and play a cue, live %v", scene.live)
	}

	g.input = AvatarInput{}
	for i := 0; i < 120; i++ {
		g.step()
	}
	if scene.count(VisualBullet) != 0 {
		t.Error("spent bullet visual should be removed")
	}
}

func TestRestartRebuildsScene(t *testing.T) {
	scene := newRecordingScene()
	g := newSceneGame(scene, nil)
	before := len(scene.live)

	g.Restart()
	if scene.removed < before {
		t.Errorf("restart should remove every live visual, removed %d of %d", scene.removed, before)
	}
	if len(scene.live) != before {
		t.Errorf("restart should announce the level again, got %d visuals", len(scene.live))
	}
}
