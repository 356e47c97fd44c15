package ensemble

import (
	"math"
	"sort"
)

// Held-out evaluation metrics. Logged after training, never asserted; a weak
// model still persists.

type classifierMetrics struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	AUC       float64
}

type regressorMetrics struct {
	RMSE float64
	MAE  float64
}

func evaluateClassifier(c *Classifier, x [][]float64, y []float64) classifierMetrics {
	var tp, fp, tn, fn float64
	probs := make([]float64, len(y))
	for i, row := range x {
		probs[i] = c.PredictProba(row)
		predicted := probs[i] > 0.5
		actual := y[i] > 0.5
		switch {
		case predicted && actual:
			tp++
		case predicted && !actual:
			fp++
		case !predicted && !actual:
			tn++
		default:
			fn++
		}
	}

	m := classifierMetrics{AUC: rankAUC(probs, y)}
	if total := tp + fp + tn + fn; total > 0 {
		m.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	return m
}

func evaluateRegressor(r *Regressor, x [][]float64, y []float64) regressorMetrics {
	if len(y) == 0 {
		return regressorMetrics{}
	}
	var sumSq, sumAbs float64
	for i, row := range x {
		d := r.Predict(row) - y[i]
		sumSq += d * d
		sumAbs += math.Abs(d)
	}
	n := float64(len(y))
	return regressorMetrics{
		RMSE: math.Sqrt(sumSq / n),
		MAE:  sumAbs / n,
	}
}

// rankAUC computes ROC AUC from the rank statistic: the probability that a
// random positive scores higher than a random negative, with ties counted
// half. Returns 0 when only one class is present.
func rankAUC(scores, y []float64) float64 {
	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, len(y))
	var nPos, nNeg float64
	for i := range y {
		pairs[i] = pair{scores[i], y[i] > 0.5}
		if pairs[i].pos {
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	// Sum positive ranks, averaging ranks across tied scores
	rankSum := 0.0
	i := 0
	for i < len(pairs) {
		j := i
		for j < len(pairs) && pairs[j].score == pairs[i].score {
			j++
		}
		avgRank := float64(i+j+1) / 2 // 1-based ranks i+1..j averaged
		for k := i; k < j; k++ {
			if pairs[k].pos {
				rankSum += avgRank
			}
		}
		i = j
	}

	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
}
