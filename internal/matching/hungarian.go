package matching

import (
	"fmt"
	"math"
)

// Pair: строка и столбец, попавшие в паросочетание.
type Pair struct {
	Row int
	Col int
}

// Solve находит паросочетание минимальной суммарной стоимости (венгерский
// алгоритм с потенциалами, O(n³) по большей стороне).
//
// Прямоугольная матрица дополняется до квадратной фиктивными строками или
// столбцами со стоимостью не ниже максимальной клетки; пары с фиктивной
// стороной в ответ не попадают. Строки обрабатываются по возрастанию
// индекса, при равенстве выбирается столбец с меньшим индексом, поэтому
// одна и та же матрица всегда даёт один и тот же ответ. Пустая матрица
// даёт пустой ответ.
func Solve(costs [][]float64) ([]Pair, error) {
	rows := len(costs)
	if rows == 0 {
		return nil, nil
	}
	cols := len(costs[0])
	if cols == 0 {
		return nil, nil
	}

	pad := math.Inf(-1)
	for r, row := range costs {
		if len(row) != cols {
			return nil, &SolverError{Reason: fmt.Sprintf("строка %d имеет длину %d, ожидается %d", r, len(row), cols)}
		}
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &SolverError{Reason: fmt.Sprintf("клетка (%d, %d) не является конечным числом", r, c)}
			}
			if v > pad {
				pad = v
			}
		}
	}

	n := rows
	if cols > n {
		n = cols
	}
	at := func(r, c int) float64 {
		if r < rows && c < cols {
			return costs[r][c]
		}
		return pad
	}

	// Индексация с единицы: нулевой столбец: служебный.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	match := make([]int, n+1) // match[col] = row
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for i := 1; i <= n; i++ {
		match[0] = i
		j0 := 0
		for j := 0; j <= n; j++ {
			minv[j] = math.Inf(1)
			used[j] = false
		}

		for {
			used[j0] = true
			i0 := match[j0]
			delta := math.Inf(1)
			j1 := 0

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := at(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			if j1 == 0 {
				return nil, &SolverError{Reason: fmt.Sprintf("не найден увеличивающий путь для строки %d", i-1)}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if match[j0] == 0 {
				break
			}
		}

		for j0 != 0 {
			j1 := way[j0]
			match[j0] = match[j1]
			j0 = j1
		}
	}

	byRow := make([]int, rows)
	for r := range byRow {
		byRow[r] = -1
	}
	for j := 1; j <= n; j++ {
		r, c := match[j]-1, j-1
		if r >= 0 && r < rows && c < cols {
			byRow[r] = c
		}
	}

	pairs := make([]Pair, 0, rows)
	for r, c := range byRow {
		if c >= 0 {
			pairs = append(pairs, Pair{Row: r, Col: c})
		}
	}
	return pairs, nil
}

// TotalCost суммирует стоимость паросочетания.
func TotalCost(costs [][]float64, pairs []Pair) float64 {
	total := 0.0
	for _, p := range pairs {
		total += costs[p.Row][p.Col]
	}
	return total
}
