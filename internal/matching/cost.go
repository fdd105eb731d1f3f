package matching

import "math"

// Cost хранит стоимость клетки: либо -score допустимой пары, либо Infeasible.
// В число-заглушку Infeasible превращается только на границе с решателем.
type Cost struct {
	Value    float64
	Feasible bool
	Reason   Reason
}

// CostMatrix: слоты (строки) × кандидаты (столбцы).
type CostMatrix struct {
	Cells    [][]Cost
	Rows     int
	Cols     int
	Sentinel float64
}

// BuildCostMatrix заполняет матрицу стоимостей и вычисляет заглушку.
//
// Заглушка выбирается так, чтобы любая замена недопустимой пары на допустимую
// уменьшала суммарную стоимость: 2 * max|cost| * max(rows, cols) + 1.
// Заданное значение configured используется, только если оно не меньше этой
// границы; второй результат сообщает, что заданное значение пришлось поднять.
func BuildCostMatrix(slots []Slot, candidates []Candidate, w Weights, orgScoping bool, configured float64) (CostMatrix, bool) {
	m := CostMatrix{
		Cells: make([][]Cost, len(slots)),
		Rows:  len(slots),
		Cols:  len(candidates),
	}

	maxAbs := 1.0
	for r := range slots {
		row := make([]Cost, len(candidates))
		for c := range candidates {
			ok, reason := CheckEligibility(&candidates[c], &slots[r], orgScoping)
			if !ok {
				row[c] = Cost{Reason: reason}
				continue
			}
			value := -Score(&candidates[c], &slots[r], w)
			row[c] = Cost{Value: value, Feasible: true}
			if a := math.Abs(value); a > maxAbs {
				maxAbs = a
			}
		}
		m.Cells[r] = row
	}

	n := m.Rows
	if m.Cols > n {
		n = m.Cols
	}
	safe := 2*maxAbs*float64(n) + 1

	raised := false
	switch {
	case configured <= 0:
		m.Sentinel = safe
	case configured < safe:
		m.Sentinel = safe
		raised = true
	default:
		m.Sentinel = configured
	}

	return m, raised
}

// Numeric отдаёт прямоугольную числовую матрицу для решателя.
func (m CostMatrix) Numeric() [][]float64 {
	out := make([][]float64, m.Rows)
	for r := 0; r < m.Rows; r++ {
		row := make([]float64, m.Cols)
		for c := 0; c < m.Cols; c++ {
			if m.Cells[r][c].Feasible {
				row[c] = m.Cells[r][c].Value
			} else {
				row[c] = m.Sentinel
			}
		}
		out[r] = row
	}
	return out
}

// FeasibleAt сообщает, пригодна ли клетка для назначения.
func (m CostMatrix) FeasibleAt(row, col int) bool {
	cell := m.Cells[row][col]
	return cell.Feasible && cell.Value < m.Sentinel
}
