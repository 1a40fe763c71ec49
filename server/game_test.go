package main

import (
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type mockBroadcaster struct {
	mu     sync.Mutex
	json   []Envelope
	binary [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if env, ok := msg.(Envelope); ok {
		m.json = append(m.json, env)
	}
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.binary = append(m.binary, cp)
}

func (m *mockBroadcaster) jsonByType(t string) []Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Envelope
	for _, env := range m.json {
		if env.T == t {
			out = append(out, env)
		}
	}
	return out
}

func newTestGame() *Game {
	return NewGame(DefaultArenaConfig(), "test-session", nil)
}

func TestGameAddPlayerCap(t *testing.T) {
	g := newTestGame()
	for i := 0; i < g.cfg.MaxPlayers; i++ {
		if g.AddPlayer("p") == nil {
			t.Fatalf("player %d rejected below the cap", i)
		}
	}
	if g.AddPlayer("extra") != nil {
		t.Error("player above the cap should be rejected")
	}
	if g.PlayerCount() != g.cfg.MaxPlayers {
		t.Errorf("player count = %d, want %d", g.PlayerCount(), g.cfg.MaxPlayers)
	}
}

func TestGamePlayerStartsInBounds(t *testing.T) {
	g := newTestGame()
	for i := 0; i < 8; i++ {
		p := g.AddPlayer("p")
		if p.Pose.Height < g.cfg.MinHeight || p.Pose.Height > g.cfg.MaxHeight {
			t.Errorf("start height %f outside bounds", p.Pose.Height)
		}
		if p.Pose.Angle < 0 || p.Pose.Angle >= 6.2832 {
			t.Errorf("start angle %f outside [0, 2pi)", p.Pose.Angle)
		}
	}
}

func TestGameHandleInputClamps(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("p")
	g.HandleInput(p.ID, ClientInput{Turn: 99, Lift: -99, Fire: true})
	if p.Turn != 1 || p.Lift != -1 {
		t.Errorf("inputs not clamped: turn=%f lift=%f", p.Turn, p.Lift)
	}
	if !p.Firing {
		t.Error("fire flag lost")
	}
	// Unknown player is a no-op
	g.HandleInput("nobody", ClientInput{Turn: 1})
}

func TestGameSpawnsEnemiesOverTime(t *testing.T) {
	g := newTestGame()
	g.AddPlayer("p")

	// Three simulated seconds cover the 2.5s spawn interval
	for i := 0; i < 180; i++ {
		g.update()
	}
	if g.EnemyCount() == 0 {
		t.Error("no enemies spawned after 3 simulated seconds")
	}
}

func TestGameNoSpawnWithoutPlayers(t *testing.T) {
	g := newTestGame()
	for i := 0; i < 300; i++ {
		g.update()
	}
	if g.EnemyCount() != 0 {
		t.Errorf("%d enemies spawned into an empty session", g.EnemyCount())
	}
}

func TestGameFiringCreatesLaser(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("p")
	g.HandleInput(p.ID, ClientInput{Fire: true})

	g.update()
	if len(g.lasers) != 1 {
		t.Fatalf("lasers = %d, want 1", len(g.lasers))
	}
	// Cooldown holds the second shot
	g.update()
	if len(g.lasers) != 1 {
		t.Errorf("lasers = %d during cooldown, want 1", len(g.lasers))
	}
}

func TestGameMissileLaunch(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("p")
	g.HandleInput(p.ID, ClientInput{Missile: true})

	g.update()
	if len(g.missiles) != 1 {
		t.Fatalf("missiles = %d, want 1", len(g.missiles))
	}
	if p.MissileCD != MissileCooldown {
		t.Errorf("missile cooldown = %f, want %f", p.MissileCD, MissileCooldown)
	}
}

func TestGameBroadcastsBinaryState(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("p")
	mock := &mockBroadcaster{}
	g.SetClient(p.ID, mock)

	for i := 0; i < BroadcastEvery; i++ {
		g.update()
	}

	mock.mu.Lock()
	frames := len(mock.binary)
	var last []byte
	if frames > 0 {
		last = mock.binary[frames-1]
	}
	mock.mu.Unlock()

	if frames != 1 {
		t.Fatalf("binary frames = %d, want 1", frames)
	}
	var state GameState
	if err := msgpack.Unmarshal(last, &state); err != nil {
		t.Fatalf("broadcast frame is not valid msgpack: %v", err)
	}
	if len(state.Players) != 1 || state.Players[0].ID != p.ID {
		t.Errorf("state players = %+v", state.Players)
	}
}

func TestGameHostileLaserKillsPlayer(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("p")
	mock := &mockBroadcaster{}
	g.SetClient(p.ID, mock)
	p.HP = 5

	bolt := &Laser{
		ID: "hostile", OwnerID: "e9", Hostile: true,
		Angle: p.Pose.Angle, Height: p.Pose.Height,
		Damage: LaserDamage, Life: 1, Alive: true,
	}
	g.mu.Lock()
	g.lasers[bolt.ID] = bolt
	g.mu.Unlock()

	g.update()
	if p.Alive {
		t.Fatal("player should be dead")
	}
	deaths := mock.jsonByType(MsgDeath)
	if len(deaths) != 1 {
		t.Errorf("death notifications = %d, want 1", len(deaths))
	}
}

func TestGameBossScheduleFires(t *testing.T) {
	cfg := DefaultArenaConfig()
	cfg.SpawnInterval = 1e9 // keep the regular cadence quiet
	cfg.Bosses = []BossEntry{{
		At: 0.1, Count: 1, Stagger: 1,
		Def: ArchetypeDef{
			Name: "boss", Kind: KindBoss,
			HeightMin: -10, HeightMax: 10, MaxHP: 100, Radius: 3,
			Nav: NavParams{AngularSpeed: 0.3, MinHeight: -10, MaxHeight: 10},
		},
	}}
	g := NewGame(cfg, "s", nil)
	p := g.AddPlayer("p")
	mock := &mockBroadcaster{}
	g.SetClient(p.ID, mock)

	for i := 0; i < 12; i++ { // 0.2s of session time
		g.update()
	}
	if g.EnemyCount() != 1 {
		t.Fatalf("enemies = %d, want the one boss", g.EnemyCount())
	}
	if len(mock.jsonByType(MsgBoss)) != 1 {
		t.Error("boss announcement not broadcast")
	}
}

func TestGameRemovePlayer(t *testing.T) {
	g := newTestGame()
	p := g.AddPlayer("p")
	if !g.HasPlayer(p.ID) {
		t.Fatal("player should be present")
	}
	g.RemovePlayer(p.ID)
	if g.HasPlayer(p.ID) {
		t.Error("player should be gone")
	}
	if g.PlayerCount() != 0 {
		t.Errorf("player count = %d, want 0", g.PlayerCount())
	}
}
