// Package availability computes the bookable times for a service on a
// date: the offered tick set minus the already-booked set.
package availability

import (
	"sort"

	"github.com/agendly/agendly/internal/model"
)

// Free returns the offered ticks that are not booked, in ascending time
// order. The input slices are not modified.
func Free(offered, booked []model.TimeOfDay) []model.TimeOfDay {
	taken := make(map[model.TimeOfDay]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	free := make([]model.TimeOfDay, 0, len(offered))
	for _, t := range offered {
		if _, ok := taken[t]; ok {
			continue
		}
		free = append(free, t)
	}
	sort.Slice(free, func(i, j int) bool { return free[i] < free[j] })
	return free
}
