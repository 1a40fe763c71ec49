package main

import (
	"math"
	"testing"
)

func TestLaserTravelsAlongFacing(t *testing.T) {
	c := Cylinder{Radius: 20}
	shooter := SurfacePose{Angle: 1.0, Height: 3, Facing: 1}
	bolt := NewLaser(c, "p1", shooter, LaserDamage, false)

	if bolt.Height != 3 {
		t.Errorf("bolt height = %f, want the shooter's 3", bolt.Height)
	}
	if bolt.Angle <= shooter.Angle {
		t.Errorf("bolt should spawn ahead of the shooter: %f vs %f", bolt.Angle, shooter.Angle)
	}

	start := bolt.Angle
	bolt.Update(1.0 / 60.0)
	want := start + LaserSpeed/20.0/60.0
	if !almostEqual(bolt.Angle, want, 1e-9) {
		t.Errorf("after one tick angle = %f, want %f", bolt.Angle, want)
	}
}

func TestLaserTravelsBackward(t *testing.T) {
	c := Cylinder{Radius: 20}
	shooter := SurfacePose{Angle: 1.0, Height: 0, Facing: -1}
	bolt := NewLaser(c, "p1", shooter, LaserDamage, false)

	start := bolt.Angle
	bolt.Update(1.0 / 60.0)
	if bolt.Angle >= start {
		t.Errorf("facing -1 bolt should move to smaller angles: %f -> %f", start, bolt.Angle)
	}
	if bolt.Pose().Facing != -1 {
		t.Errorf("pose facing = %d, want -1", bolt.Pose().Facing)
	}
}

func TestLaserWrapsSeam(t *testing.T) {
	c := Cylinder{Radius: 20}
	shooter := SurfacePose{Angle: 2*math.Pi - 0.01, Height: 0, Facing: 1}
	bolt := NewLaser(c, "p1", shooter, LaserDamage, false)

	for i := 0; i < 10; i++ {
		bolt.Update(1.0 / 60.0)
	}
	if bolt.Angle < 0 || bolt.Angle >= 2*math.Pi {
		t.Errorf("angle %f outside [0, 2pi)", bolt.Angle)
	}
}

func TestLaserExpires(t *testing.T) {
	c := Cylinder{Radius: 20}
	bolt := NewLaser(c, "p1", SurfacePose{Facing: 1}, LaserDamage, false)

	dt := 1.0 / 60.0
	for i := 0; i < int(LaserLifetime*60)+2; i++ {
		bolt.Update(dt)
	}
	if bolt.Alive {
		t.Error("bolt should expire after its lifetime")
	}
}
