package matching

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Resolution: интерпретированный ответ решателя.
type Resolution struct {
	Assignments []Assignment
	Unfilled    map[string]int
	Warnings    []Warning
}

type resolvedPair struct {
	slot *Slot
	cand *Candidate
	cost float64
}

// Resolve превращает пары решателя в назначения.
//
// Пара с недопустимой клеткой (или стоимостью не ниже заглушки) отбрасывается,
// а её роль получает +1 к незаполненным; слот без пары тоже незаполнен.
// Затем проверяется, что каждый ресурс назначен не более одного раза: из
// повторов остаётся самая дешёвая пара (при равенстве: с меньшей строкой),
// остальные слоты становятся незаполненными с предупреждением.
func Resolve(m CostMatrix, pairs []Pair, slots []Slot, candidates []Candidate) Resolution {
	res := Resolution{Unfilled: make(map[string]int)}

	matched := make([]bool, len(slots))
	kept := make([]resolvedPair, 0, len(pairs))

	for _, p := range pairs {
		if p.Row < 0 || p.Row >= len(slots) || p.Col < 0 || p.Col >= len(candidates) {
			continue
		}
		slot := &slots[p.Row]
		matched[p.Row] = true

		if !m.FeasibleAt(p.Row, p.Col) {
			res.Unfilled[slot.Role]++
			continue
		}
		kept = append(kept, resolvedPair{
			slot: slot,
			cand: &candidates[p.Col],
			cost: m.Cells[p.Row][p.Col].Value,
		})
	}

	for r := range slots {
		if !matched[r] {
			res.Unfilled[slots[r].Role]++
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].cost != kept[j].cost {
			return kept[i].cost < kept[j].cost
		}
		return kept[i].slot.Row < kept[j].slot.Row
	})

	taken := make(map[uuid.UUID]*resolvedPair, len(kept))
	winners := make([]resolvedPair, 0, len(kept))
	for i := range kept {
		rp := &kept[i]
		id := rp.cand.Resource.ID
		if first, dup := taken[id]; dup {
			res.Unfilled[rp.slot.Role]++
			resourceID := id
			res.Warnings = append(res.Warnings, Warning{
				Code: WarnDuplicateAssignment,
				Message: fmt.Sprintf("ресурс %s повторно назначен на роль %q (уже занят ролью %q), слот оставлен незаполненным",
					id, rp.slot.Role, first.slot.Role),
				ResourceID: &resourceID,
				Role:       rp.slot.Role,
			})
			continue
		}
		taken[id] = rp
		winners = append(winners, *rp)
	}

	sort.Slice(winners, func(i, j int) bool {
		return winners[i].slot.Row < winners[j].slot.Row
	})

	res.Assignments = make([]Assignment, 0, len(winners))
	for _, rp := range winners {
		res.Assignments = append(res.Assignments, Assignment{
			ProjectID:    rp.slot.Project.ID,
			ProjectName:  rp.slot.Project.Name,
			Role:         rp.slot.Role,
			Seat:         rp.slot.Seat,
			ResourceID:   rp.cand.Resource.ID,
			ResourceName: rp.cand.Resource.Name,
			Score:        -rp.cost,
		})
	}

	return res
}
