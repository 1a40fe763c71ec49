package main

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	// Flocking tuning for flying enemies
	flockSeparation = 5.0
	flockStrength   = 0.6
	flockMaxForce   = 1.2
)

// Broadcaster interface for sending messages to clients
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Game runs one arena session: a single-threaded fixed-timestep
// simulation under one mutex, so every tick observes a consistent
// snapshot of all poses.
type Game struct {
	mu       sync.RWMutex
	cfg      ArenaConfig
	cyl      Cylinder
	players  map[string]*Player
	enemies  map[string]*Enemy
	lasers   map[string]*Laser
	missiles map[string]*Missile
	clients  map[string]Broadcaster

	alloc   *SpawnAllocator
	rng     *rand.Rand // guarded by mu, like everything else per-game
	sectors *SectorIndex
	spawnCD float64
	clock   float64 // session time, seconds
	tick    uint64
	running bool
	stop    chan struct{}

	events    *EventRecorder // optional
	sessionID string

	// Per-tick scratch, reused across ticks
	enemyList   []*Enemy
	queryBuf    []ActorRef
	neighborBuf []SurfacePose
}

// NewGame creates a session over the given arena configuration
func NewGame(cfg ArenaConfig, sessionID string, events *EventRecorder) *Game {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Game{
		cfg:       cfg,
		cyl:       cfg.Cylinder,
		players:   make(map[string]*Player),
		enemies:   make(map[string]*Enemy),
		lasers:    make(map[string]*Laser),
		missiles:  make(map[string]*Missile),
		clients:   make(map[string]Broadcaster),
		alloc:     NewSpawnAllocator(cfg.Cylinder, cfg.SpawnPoints, cfg.Archetypes, cfg.Bosses, rng),
		rng:       rng,
		sectors:   NewSectorIndex(24, 6, cfg.MinHeight, cfg.MaxHeight),
		spawnCD:   cfg.SpawnInterval,
		stop:      make(chan struct{}),
		events:    events,
		sessionID: sessionID,
	}
}

// Run starts the game loop
func (g *Game) Run() {
	g.mu.Lock()
	g.running = true
	g.mu.Unlock()

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.update()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running {
		g.running = false
		close(g.stop)
	}
}

// SessionTime returns the running session clock in seconds
func (g *Game) SessionTime() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.clock
}

// AddPlayer adds a new player to the game. Returns nil when full.
func (g *Game) AddPlayer(name string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= g.cfg.MaxPlayers {
		return nil
	}

	start := SurfacePose{
		Angle:  g.rng.Float64() * 2 * math.Pi,
		Height: Clamp(0, g.cfg.MinHeight, g.cfg.MaxHeight),
		Facing: 1,
	}
	player := NewPlayer(GenerateID(4), name, start, g.cfg.MinHeight, g.cfg.MaxHeight)
	g.players[player.ID] = player
	return player
}

// RemovePlayer removes a player from the game
func (g *Game) RemovePlayer(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.players, id)
	delete(g.clients, id)
}

// HasPlayer reports whether the player is in this session
func (g *Game) HasPlayer(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.players[id]
	return ok
}

// SetClient associates a broadcaster with a player
func (g *Game) SetClient(playerID string, client Broadcaster) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[playerID] = client
}

// HandleInput processes input from a player
func (g *Game) HandleInput(playerID string, input ClientInput) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.players[playerID]
	if !ok {
		return
	}
	p.Turn = Clamp(input.Turn, -1, 1)
	p.Lift = Clamp(input.Lift, -1, 1)
	p.Firing = input.Fire
	p.Missile = input.Missile
}

// PlayerCount returns the number of players
func (g *Game) PlayerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.players)
}

// EnemyCount returns the number of live enemies
func (g *Game) EnemyCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.enemies)
}

// update runs one game tick
func (g *Game) update() {
	g.mu.Lock()
	defer g.mu.Unlock()

	dt := 1.0 / float64(TickRate)
	g.tick++
	g.clock += dt

	g.updatePlayers(dt)
	g.rebuildSectors()
	g.applyFlocking()
	g.updateEnemies(dt)
	g.updateLasers(dt)
	g.updateMissiles(dt)
	g.runSpawner(dt)
	g.checkLaserHits()
	g.checkContactHits()

	if g.tick%BroadcastEvery == 0 {
		g.broadcastState()
	}
}

func (g *Game) updatePlayers(dt float64) {
	for _, p := range g.players {
		p.Update(dt)

		if p.CanFire() && len(g.lasers) < g.cfg.MaxLasers {
			bolt := NewLaser(g.cyl, p.ID, p.Pose, LaserDamage, false)
			g.lasers[bolt.ID] = bolt
			p.FireCD = FireCooldown
		}
		if p.CanLaunchMissile() && len(g.missiles) < g.cfg.MaxMissiles {
			m := NewMissile(g.cyl, p.ID, p.Pose)
			g.missiles[m.ID] = m
			p.MissileCD = MissileCooldown
		}
	}
}

// rebuildSectors refreshes the broad-phase index with this tick's
// enemy positions
func (g *Game) rebuildSectors() {
	g.sectors.Clear()
	g.enemyList = g.enemyList[:0]
	for _, e := range g.enemies {
		if !e.Alive {
			continue
		}
		g.sectors.Insert(e.Pose.Angle, e.Pose.Height, ActorRef{Kind: 'e', Idx: len(g.enemyList)})
		g.enemyList = append(g.enemyList, e)
	}
}

// applyFlocking queues repulsion forces on flying enemies so they
// spread out instead of stacking on the pursuit path
func (g *Game) applyFlocking() {
	for i, e := range g.enemyList {
		if e.Def.Kind != KindFlying {
			continue
		}
		g.queryBuf = g.queryBuf[:0]
		g.queryBuf = g.sectors.QueryBuf(e.Pose.Angle, e.Pose.Height, g.queryBuf)
		g.neighborBuf = g.neighborBuf[:0]
		for _, ref := range g.queryBuf {
			if ref.Kind != 'e' || ref.Idx == i {
				continue
			}
			o := g.enemyList[ref.Idx]
			if o.Def.Kind == KindFlying {
				g.neighborBuf = append(g.neighborBuf, o.Pose)
			}
		}
		ang, h := Repulsion(g.cyl, e.Pose, g.neighborBuf, flockSeparation, flockStrength, flockMaxForce)
		e.Nav.AddRepulsion(ang, h)
	}
}

func (g *Game) updateEnemies(dt float64) {
	for id, e := range g.enemies {
		if !e.Alive {
			delete(g.enemies, id)
			continue
		}
		target, found := g.nearestAlivePlayer(e.Pose)
		pose := g.remotePose(e.Pose, target, found)

		wantFire := e.Update(dt, pose, g.cyl)
		if wantFire && len(g.lasers) < g.cfg.MaxLasers {
			// Aim along the shortest rotation toward the player
			aim := e.Pose
			if Sign(ShortestAngularDelta(e.Pose.Angle, pose.Angle)) < 0 {
				aim.Facing = -1
			} else {
				aim.Facing = 1
			}
			bolt := NewLaser(g.cyl, e.ID, aim, e.Def.LaserDamage, true)
			g.lasers[bolt.ID] = bolt
		}
	}
}

// remotePose returns the target pose an enemy navigates against. With
// no alive player the target is pushed infinitely far away so every
// navigator falls back to patrol.
func (g *Game) remotePose(self SurfacePose, target *Player, found bool) SurfacePose {
	if found {
		return target.Pose
	}
	return SurfacePose{Angle: self.Angle, Height: 1e9, Facing: 1}
}

func (g *Game) nearestAlivePlayer(pose SurfacePose) (*Player, bool) {
	var best *Player
	bestDist := 0.0
	for _, p := range g.players {
		if !p.Alive {
			continue
		}
		d := CombinedDistance(g.cyl, pose, p.Pose)
		if best == nil || d < bestDist {
			best = p
			bestDist = d
		}
	}
	return best, best != nil
}

func (g *Game) updateLasers(dt float64) {
	for id, bolt := range g.lasers {
		bolt.Update(dt)
		if !bolt.Alive {
			delete(g.lasers, id)
		}
	}
}

func (g *Game) updateMissiles(dt float64) {
	if len(g.missiles) == 0 {
		return
	}
	targets := make([]MissileTarget, 0, len(g.enemyList))
	for _, e := range g.enemyList {
		targets = append(targets, MissileTarget{ID: e.ID, Pos: e.Pose.Position(g.cyl)})
	}

	for id, m := range g.missiles {
		if !m.Update(dt, targets) {
			// Lifetime ran out: detonate in place
			g.detonate(m)
			delete(g.missiles, id)
			continue
		}

		hit := false
		for _, e := range g.enemyList {
			if e.Alive && MissileHit(g.cyl, m, e.Pose, e.Def.Radius) {
				hit = true
				break
			}
		}
		if hit || (m.Armed() && m.NearWall(g.cyl)) {
			g.detonate(m)
			delete(g.missiles, id)
		}
	}
}

// detonate applies falloff damage to everything within the explosion
// radius, player included
func (g *Game) detonate(m *Missile) {
	m.Alive = false
	for _, e := range g.enemyList {
		if !e.Alive {
			continue
		}
		d := e.Pose.Position(g.cyl).Sub(m.Position).Length()
		if dmg := ExplosionDamage(MissileDamage, d); dmg > 0 {
			if _, died := ApplyDamage(e, dmg); died {
				g.creditKill(m.OwnerID, e)
			}
		}
	}
	for _, p := range g.players {
		if !p.Alive {
			continue
		}
		d := p.Pose.Position(g.cyl).Sub(m.Position).Length()
		if dmg := ExplosionDamage(MissileDamage, d); dmg > 0 {
			if _, died := ApplyDamage(p, dmg); died {
				g.notifyPlayerDeath(p, m.OwnerID)
			}
		}
	}
}

func (g *Game) runSpawner(dt float64) {
	if g.alloc.Disabled() {
		return
	}
	target, found := g.anyAlivePlayer()
	if !found {
		return
	}

	// Boss schedule runs on the session clock, independent of the
	// regular cadence
	for _, dec := range g.alloc.BossSpawns(g.clock, target.Pose) {
		e := NewEnemy(dec, g.rng)
		g.enemies[e.ID] = e
		g.broadcastMsg(Envelope{T: MsgBoss, Data: BossMsg{ID: e.ID, Name: e.Def.Name}})
		if g.events != nil {
			g.events.Track(EvtBossSpawn, 0, g.sessionID, e.Def.Name)
		}
	}

	g.spawnCD -= dt
	if g.spawnCD > 0 {
		return
	}
	g.spawnCD = g.cfg.SpawnInterval

	// A failed cycle is skipped silently; the next one may succeed
	if dec, ok := g.alloc.Allocate(target.Pose); ok {
		e := NewEnemy(dec, g.rng)
		g.enemies[e.ID] = e
	}
}

func (g *Game) anyAlivePlayer() (*Player, bool) {
	for _, p := range g.players {
		if p.Alive {
			return p, true
		}
	}
	return nil, false
}

func (g *Game) checkLaserHits() {
	for boltID, bolt := range g.lasers {
		if !bolt.Alive {
			continue
		}
		if bolt.Hostile {
			for _, p := range g.players {
				if !p.Alive {
					continue
				}
				if SurfaceOverlap(g.cyl, bolt.Pose(), p.Pose, LaserRadius, PlayerRadius) {
					_, died := ApplyDamage(p, bolt.Damage)
					bolt.Alive = false
					delete(g.lasers, boltID)
					if died {
						g.notifyPlayerDeath(p, bolt.OwnerID)
					}
					break
				}
			}
			continue
		}

		g.queryBuf = g.queryBuf[:0]
		g.queryBuf = g.sectors.QueryBuf(bolt.Angle, bolt.Height, g.queryBuf)
		for _, ref := range g.queryBuf {
			if ref.Kind != 'e' {
				continue
			}
			e := g.enemyList[ref.Idx]
			if !e.Alive {
				continue
			}
			if SurfaceOverlap(g.cyl, bolt.Pose(), e.Pose, LaserRadius, e.Def.Radius) {
				_, died := ApplyDamage(e, bolt.Damage)
				bolt.Alive = false
				delete(g.lasers, boltID)
				if died {
					g.creditKill(bolt.OwnerID, e)
				}
				break
			}
		}
	}
}

// checkContactHits handles suicide detonations and boss ramming
func (g *Game) checkContactHits() {
	for _, e := range g.enemyList {
		if !e.Alive || e.Def.ContactDamage <= 0 {
			continue
		}
		for _, p := range g.players {
			if !p.Alive {
				continue
			}
			if !SurfaceOverlap(g.cyl, e.Pose, p.Pose, e.Def.Radius, PlayerRadius) {
				continue
			}
			_, died := ApplyDamage(p, e.Def.ContactDamage)
			if died {
				g.notifyPlayerDeath(p, e.ID)
			}
			if e.Def.Kind == KindSuicide {
				// Detonation consumes the attacker
				e.Destroy()
			}
			break
		}
	}
}

func (g *Game) creditKill(ownerID string, e *Enemy) {
	killerName := ""
	if killer, ok := g.players[ownerID]; ok {
		killer.Score += e.Def.KillScore
		killerName = killer.Name
		if g.events != nil {
			g.events.Track(EvtEnemyKill, killer.AuthPilotID, g.sessionID, e.Def.Name)
		}
	}
	g.broadcastMsg(Envelope{T: MsgKill, Data: KillMsg{
		KillerID:   ownerID,
		KillerName: killerName,
		VictimID:   e.ID,
		VictimName: e.Def.Name,
	}})
}

func (g *Game) notifyPlayerDeath(p *Player, killerID string) {
	if g.events != nil {
		g.events.Track(EvtPlayerDeath, p.AuthPilotID, g.sessionID, killerID)
	}
	if client, ok := g.clients[p.ID]; ok {
		client.SendJSON(Envelope{T: MsgDeath, Data: DeathMsg{KillerID: killerID}})
	}
}

// broadcastState sends the current game state to all clients as a
// msgpack-encoded binary frame
func (g *Game) broadcastState() {
	state := GameState{
		Players:  make([]PlayerState, 0, len(g.players)),
		Enemies:  make([]EnemyState, 0, len(g.enemies)),
		Lasers:   make([]LaserState, 0, len(g.lasers)),
		Missiles: make([]MissileState, 0, len(g.missiles)),
		Tick:     g.tick,
		Clock:    round1(g.clock),
	}

	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, e := range g.enemies {
		state.Enemies = append(state.Enemies, e.ToState())
	}
	for _, bolt := range g.lasers {
		state.Lasers = append(state.Lasers, bolt.ToState())
	}
	for _, m := range g.missiles {
		state.Missiles = append(state.Missiles, m.ToState())
	}

	data, err := msgpack.Marshal(state)
	if err != nil {
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}

// broadcastMsg sends a JSON message to all clients in the session
func (g *Game) broadcastMsg(msg Envelope) {
	for _, client := range g.clients {
		client.SendJSON(msg)
	}
}
