package main

// HazardHit is a damaging overlap found by the trigger pass
type HazardHit struct {
	Cause  string
	Damage int
}

// MoveResult reports what ResolveAvatarMovement found
type MoveResult struct {
	Stuck bool
	Died  bool
	Cause string

	Collected      []CollectRef
	Hazards        []HazardHit
	BridgeRepaired bool
	Portal         bool
}

// ResolveAvatarMovement checks the avatar's new position against static
// geometry and reverts it to (prevX, prevZ) on the first blocking overlap.
// Death zones kill instead of blocking. Triggers are then evaluated at the
// resulting position regardless of whether the move was blocked.
func ResolveAvatarMovement(w *World, a *Avatar, prevX, prevZ float64) MoveResult {
	var res MoveResult
	if a.Dead {
		return res
	}

	cands := w.obstaclesNear(a.X, a.Z, AvatarRadius)
	airborne := a.Airborne()

blocking:
	for class := ObstacleClass(0); class < obstacleClassCount; class++ {
		for _, i := range cands {
			o := &w.Level.Obstacles[i]
			if o.Class != class || !o.Overlaps(a.X, a.Z, AvatarRadius) {
				continue
			}
			switch {
			case class.Deadly():
				if airborne {
					continue
				}
				a.Kill(class.String())
				res.Died = true
				res.Cause = class.String()
				break blocking
			case class == ObstacleHill && airborne:
				continue
			case class == ObstacleRiver && w.BridgeRepaired:
				continue
			}
			a.X, a.Z = prevX, prevZ
			res.Stuck = true
			break blocking
		}
	}
	if res.Died {
		return res
	}

	resolveTriggers(w, a, &res)
	return res
}

// resolveTriggers runs the non-positional pass: pickups, traps, trails,
// bridge repair and the portal.
func resolveTriggers(w *World, a *Avatar, res *MoveResult) {
	for _, i := range w.pickupsNear(a.X, a.Z, PickupRadius) {
		c := w.pickups[i]
		if c.Collected || Distance(a.X, a.Z, c.X, c.Z) >= PickupRadius {
			continue
		}
		if w.Collect(c.Type, c.Index, a) {
			res.Collected = append(res.Collected, CollectRef{Type: c.Type, Index: c.Index})
		}
	}

	if !a.Airborne() {
		for _, trap := range w.Traps {
			if trap.ArmedAt(w.Now) && CirclesOverlap(a.X, a.Z, AvatarRadius, trap.X, trap.Z, trap.Radius) {
				res.Hazards = append(res.Hazards, HazardHit{Cause: CauseTrap, Damage: TrapDamage})
			}
		}
		for _, tr := range w.Trails {
			if w.Now < tr.ExpiresAt && CirclesOverlap(a.X, a.Z, AvatarRadius, tr.X, tr.Z, tr.Radius) {
				res.Hazards = append(res.Hazards, HazardHit{Cause: CauseTrail, Damage: TrailDamage})
			}
		}
	}

	if b := w.Level.Bridge; b != nil && !w.BridgeRepaired && w.Wood >= b.WoodRequired {
		if Distance(a.X, a.Z, b.X, b.Z) < b.Radius+AvatarRadius {
			w.BridgeRepaired = true
			res.BridgeRepaired = true
		}
	}

	p := w.Level.Portal
	if !w.LevelDone && p.Radius > 0 && w.Treasure >= p.RequiredTreasure {
		if Distance(a.X, a.Z, p.X, p.Z) < p.Radius+AvatarRadius {
			res.Portal = true
		}
	}
}
