package scheduler

// GridItem is a placement annotated for stacked rendering.
type GridItem struct {
	Placement
	Overlap bool `json:"overlap"`
	Offset  int  `json:"offset"`
}

// ProcessOverlaps flags placements that visually collide on the grid and
// assigns each colliding one the lowest free stack offset among its
// intersecting neighbours, in input order. Sessions of the same subject on the
// same weekday are pulled onto the offset of the item being assigned, even
// when they do not intersect anything.
func ProcessOverlaps(placements []Placement) []GridItem {
	items := make([]GridItem, len(placements))
	for i, p := range placements {
		items[i] = GridItem{Placement: p, Offset: -1}
	}

	for i := range items {
		for j := range items {
			if i != j && collides(items[i].Placement, items[j].Placement) {
				items[i].Overlap = true
				break
			}
		}
	}

	for i := range items {
		if !items[i].Overlap || items[i].Offset != -1 {
			continue
		}

		taken := make(map[int]struct{})
		for j := range items {
			if i == j || items[j].Offset == -1 {
				continue
			}
			if collides(items[i].Placement, items[j].Placement) {
				taken[items[j].Offset] = struct{}{}
			}
		}
		offset := 0
		for {
			if _, used := taken[offset]; !used {
				break
			}
			offset++
		}
		items[i].Offset = offset

		for k := range items {
			if k == i || items[k].Weekday != items[i].Weekday {
				continue
			}
			if items[k].SubjectID == items[i].SubjectID {
				items[k].Overlap = true
				items[k].Offset = offset
			}
		}
	}
	return items
}

// StackDepth returns how many sub-rows a weekday needs: max offset + 1, at least 1.
func StackDepth(items []GridItem, weekday Weekday) int {
	depth := 1
	for _, item := range items {
		if item.Weekday == weekday && item.Offset+1 > depth {
			depth = item.Offset + 1
		}
	}
	return depth
}

func collides(a, b Placement) bool {
	return a.Weekday == b.Weekday && a.Span.Intersects(b.Span)
}
