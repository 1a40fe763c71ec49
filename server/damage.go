package main

// Damageable is the capability every hittable actor implements. Hit
// applies damage and returns the remaining health plus whether the
// actor was destroyed by it. Projectiles dispatch through this once
// instead of probing concrete types.
type Damageable interface {
	Hit(dmg int) (remaining int, destroyed bool)
}

// ApplyDamage routes damage through the Damageable capability
func ApplyDamage(target Damageable, dmg int) (int, bool) {
	return target.Hit(dmg)
}
