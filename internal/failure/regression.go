package failure

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// scaler standardizes feature columns to zero mean and unit variance. The
// same scaler must transform both the training rows and the rows being
// predicted.
type scaler struct {
	means []float64
	stds  []float64
}

func fitScaler(rows [][]float64) *scaler {
	if len(rows) == 0 {
		return &scaler{}
	}
	p := len(rows[0])
	s := &scaler{
		means: make([]float64, p),
		stds:  make([]float64, p),
	}

	col := make([]float64, len(rows))
	for j := 0; j < p; j++ {
		for i := range rows {
			col[i] = rows[i][j]
		}
		s.means[j] = stat.Mean(col, nil)
		sd := 0.0
		if len(rows) >= 2 {
			sd = stat.StdDev(col, nil)
		}
		if sd == 0 {
			// Constant column (e.g. a one-hot level absent from the
			// batch): leave it centered but unscaled.
			sd = 1
		}
		s.stds[j] = sd
	}
	return s
}

func (s *scaler) transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.means[j]) / s.stds[j]
		}
		out[i] = scaled
	}
	return out
}

// fitRidge solves the ridge-regularized normal equations
// (X'X + lambda*I) w = X'y over rows augmented with a bias column. The
// returned weight vector has the bias coefficient last.
func fitRidge(rows [][]float64, labels []float64) ([]float64, error) {
	n := len(rows)
	p := len(rows[0]) + 1 // bias column

	x := mat.NewDense(n, p, nil)
	for i, row := range rows {
		for j, v := range row {
			x.Set(i, j, v)
		}
		x.Set(i, p-1, 1)
	}
	y := mat.NewVecDense(n, labels)

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	for j := 0; j < p; j++ {
		xtx.Set(j, j, xtx.At(j, j)+ridgeLambda)
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return nil, fmt.Errorf("solve normal equations: %w", err)
	}

	out := make([]float64, p)
	for j := 0; j < p; j++ {
		out[j] = w.AtVec(j)
	}
	return out, nil
}

// predictRow evaluates the fitted model on one scaled row and truncates to
// whole days.
func predictRow(weights []float64, row []float64) int {
	sum := weights[len(weights)-1] // bias
	for j, v := range row {
		sum += weights[j] * v
	}
	return int(sum)
}
