package guide

import (
	"github.com/dilitS/travel-conductor-ai-sub000/internal/shared/geo"
	"github.com/dilitS/travel-conductor-ai-sub000/internal/trip"
)

// NearestCue picks the narratable step closest to the fix and computes its
// autoplay eligibility: inside the trigger radius and not yet played. The
// coordinator layers its own played-set check on top as the authoritative
// guard; the AlreadyPlayed flag here is advisory for UI.
func NearestCue(steps []trip.Step, fix *GeoFix, played func(string) bool) *StepCue {
	if fix == nil {
		return nil
	}

	var cue *StepCue
	for _, step := range steps {
		if step.Narration == "" {
			continue
		}
		d := geo.DistanceM(fix.Lat, fix.Lng, step.Lat, step.Lng)
		if cue != nil && d >= cue.DistanceM {
			continue
		}
		alreadyPlayed := played != nil && played(step.ID)
		cue = &StepCue{
			EventID:       step.ID,
			Name:          step.Name,
			Narration:     step.Narration,
			DistanceM:     d,
			Eligible:      d <= step.TriggerRadiusM && !alreadyPlayed,
			AlreadyPlayed: alreadyPlayed,
		}
	}
	return cue
}
