package main

const (
	PickupRadius = 1.5
	AmmoPickup   = 10
	HealthPickup = 1
)

// CollectibleType identifies the kind of pickup
type CollectibleType int

const (
	CollectAmmo CollectibleType = iota
	CollectHealth
	CollectBomb
	CollectIce
	CollectKite
	CollectWood
	CollectTreasure
	collectibleTypeCount
)

var collectibleNames = [collectibleTypeCount]string{
	"ammo", "health", "bomb", "ice", "kite", "wood", "treasure",
}

func (t CollectibleType) String() string {
	if t < 0 || t >= collectibleTypeCount {
		return "unknown"
	}
	return collectibleNames[t]
}

// ParseCollectibleType maps a wire name back to its type
func ParseCollectibleType(s string) (CollectibleType, bool) {
	for i, n := range collectibleNames {
		if n == s {
			return CollectibleType(i), true
		}
	}
	return 0, false
}

// Collectible is a level pickup, addressed on the wire by type and index
type Collectible struct {
	Type      CollectibleType
	Index     int
	X, Z      float64
	Collected bool
}

// CollectRef names a pickup on the wire
type CollectRef struct {
	Type  CollectibleType
	Index int
}

// Collect marks a pickup collected and applies its effect. by is the
// avatar that picked it up when it is owned by this peer, nil when
// mirroring the partner's pickup; shared counters move either way.
// Returns false if the pickup is unknown or already collected.
func (w *World) Collect(t CollectibleType, index int, by *Avatar) bool {
	if t < 0 || t >= collectibleTypeCount {
		return false
	}
	list := w.Collectibles[t]
	if index < 0 || index >= len(list) {
		return false
	}
	c := list[index]
	if c.Collected {
		return false
	}
	c.Collected = true
	w.Collected++

	switch t {
	case CollectWood:
		w.Wood++
	case CollectTreasure:
		w.Treasure++
	}
	if by == nil {
		return true
	}
	switch t {
	case CollectAmmo:
		by.Ammo += AmmoPickup
	case CollectHealth:
		by.Heal(HealthPickup)
	case CollectBomb:
		by.Bombs++
	case CollectIce:
		by.IceCharges++
	case CollectKite:
		by.HasKite = true
	}
	return true
}
