// Package viz describes the plots a run asks for and renders them to PNG.
// The pipeline only builds Requests; rendering is left to the caller.
package viz

import (
	"sort"

	"github.com/aadhilajas/ML-Studio/pkg/model"
)

// Kind names a plot.
type Kind string

const (
	ConfusionMatrix   Kind = "confusion_matrix"
	FeatureImportance Kind = "feature_importance"
	ResidualPlot      Kind = "residual_plot"
	ClusterPlot       Kind = "cluster_plot"
)

// TopFeatures caps the bars in an importance plot.
const TopFeatures = 10

// Request is the input bundle for one plot. Only the fields its Kind needs
// are set.
type Request struct {
	Kind         Kind        `json:"kind"`
	YTrue        []float64   `json:"y_true,omitempty"`
	YPred        []float64   `json:"y_pred,omitempty"`
	ClassNames   []string    `json:"class_names,omitempty"`
	FeatureNames []string    `json:"feature_names,omitempty"`
	Importances  []float64   `json:"importances,omitempty"`
	Points       [][]float64 `json:"points,omitempty"`
	Labels       []int       `json:"labels,omitempty"`
}

// Set maps plot kinds to their requests.
type Set map[Kind]Request

// Kinds returns the set's kinds in sorted order.
func (s Set) Kinds() []Kind {
	out := make([]Kind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ForClassification asks for a confusion matrix and an importance chart.
// classNames decodes class codes for the matrix axes and may be nil.
func ForClassification(yTrue, yPred []float64, classNames, featureNames []string, importances []float64) Set {
	return Set{
		ConfusionMatrix:   {Kind: ConfusionMatrix, YTrue: yTrue, YPred: yPred, ClassNames: classNames},
		FeatureImportance: importanceRequest(featureNames, importances),
	}
}

// ForRegression asks for a residual plot and an importance chart.
func ForRegression(yTrue, yPred []float64, featureNames []string, importances []float64) Set {
	return Set{
		ResidualPlot:      {Kind: ResidualPlot, YTrue: yTrue, YPred: yPred},
		FeatureImportance: importanceRequest(featureNames, importances),
	}
}

// ForClustering asks for a 2-D scatter of X coloured by label. Wider inputs
// are projected onto their first two principal components; a single column
// yields a request with no points.
func ForClustering(X [][]float64, labels []int) Set {
	r := Request{Kind: ClusterPlot, Labels: labels}
	if len(X) > 0 && len(X[0]) >= 2 {
		r.Points = project2D(X)
	}
	return Set{ClusterPlot: r}
}

func importanceRequest(names []string, imp []float64) Request {
	return Request{Kind: FeatureImportance, FeatureNames: names, Importances: imp}
}

func project2D(X [][]float64) [][]float64 {
	if len(X[0]) > 2 {
		if Z, err := model.NewPCA(2).FitTransform(X); err == nil && len(Z[0]) == 2 {
			return Z
		}
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = []float64{row[0], row[1]}
	}
	return out
}

// topImportances returns up to n (name, value) pairs in descending order.
// ok is false when the inputs cannot be paired.
func topImportances(names []string, imp []float64, n int) ([]string, []float64, bool) {
	if len(imp) == 0 || len(imp) != len(names) {
		return nil, nil, false
	}
	idx := make([]int, len(imp))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return imp[idx[a]] > imp[idx[b]] })
	if len(idx) > n {
		idx = idx[:n]
	}
	outN := make([]string, len(idx))
	outV := make([]float64, len(idx))
	for k, i := range idx {
		outN[k], outV[k] = names[i], imp[i]
	}
	return outN, outV, true
}
