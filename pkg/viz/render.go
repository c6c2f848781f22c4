package viz

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/aadhilajas/ML-Studio/pkg/evaluate"
	"github.com/aadhilajas/ML-Studio/pkg/model"
)

// ErrUnknownKind is returned for a request whose kind has no renderer.
var ErrUnknownKind = errors.New("viz: unknown plot kind")

// Renderer draws requests as PNG images.
type Renderer struct {
	Width, Height vg.Length
}

func NewRenderer() *Renderer { return &Renderer{Width: 8 * vg.Inch, Height: 6 * vg.Inch} }

// Render draws one request. ok is false when the request has nothing to
// draw, such as a model without importances or a one-column cluster input.
func (r *Renderer) Render(req Request) (png []byte, ok bool, err error) {
	var p *plot.Plot
	switch req.Kind {
	case ConfusionMatrix:
		p, ok, err = confusionPlot(req)
	case FeatureImportance:
		p, ok, err = importancePlot(req)
	case ResidualPlot:
		p, ok, err = residualPlot(req)
	case ClusterPlot:
		p, ok, err = clusterPlot(req)
	default:
		return nil, false, errors.Wrapf(ErrUnknownKind, "%q", req.Kind)
	}
	if err != nil || !ok {
		return nil, false, err
	}
	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, false, errors.Wrapf(err, "viz: encode %s", req.Kind)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, false, errors.Wrapf(err, "viz: encode %s", req.Kind)
	}
	return buf.Bytes(), true, nil
}

// RenderAll draws every request in s, omitting those with nothing to draw.
func (r *Renderer) RenderAll(s Set) (map[Kind][]byte, error) {
	out := make(map[Kind][]byte, len(s))
	for _, k := range s.Kinds() {
		png, ok, err := r.Render(s[k])
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = png
		}
	}
	return out, nil
}

// confusionGrid adapts a confusion matrix to plotter.GridXYZ: columns are
// predicted classes, rows actual classes.
type confusionGrid [][]int

func (g confusionGrid) Dims() (c, r int)   { return len(g), len(g) }
func (g confusionGrid) Z(c, r int) float64 { return float64(g[r][c]) }
func (g confusionGrid) X(c int) float64    { return float64(c) }
func (g confusionGrid) Y(r int) float64    { return float64(r) }

func confusionPlot(req Request) (*plot.Plot, bool, error) {
	if len(req.YTrue) == 0 || len(req.YTrue) != len(req.YPred) {
		return nil, false, nil
	}
	labels, counts := evaluate.ConfusionMatrix(req.YTrue, req.YPred)
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = strconv.FormatFloat(l, 'g', -1, 64)
		if c := int(l); float64(c) == l && c >= 0 && c < len(req.ClassNames) {
			names[i] = req.ClassNames[c]
		}
	}

	p := plot.New()
	p.Title.Text = "Confusion Matrix"
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	g := confusionGrid(counts)
	hm := plotter.NewHeatMap(g, palette.Heat(12, 1))
	if hm.Min == hm.Max {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	var xys plotter.XYs
	var text []string
	for r, row := range counts {
		for c, v := range row {
			xys = append(xys, plotter.XY{X: float64(c), Y: float64(r)})
			text = append(text, strconv.Itoa(v))
		}
	}
	lbl, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: text})
	if err != nil {
		return nil, false, errors.Wrap(err, "viz: confusion labels")
	}
	p.Add(lbl)
	p.NominalX(names...)
	p.NominalY(names...)
	return p, true, nil
}

func importancePlot(req Request) (*plot.Plot, bool, error) {
	names, vals, ok := topImportances(req.FeatureNames, req.Importances, TopFeatures)
	if !ok {
		return nil, false, nil
	}
	// Bars are drawn bottom-up; reverse so the largest sits on top.
	for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
		vals[i], vals[j] = vals[j], vals[i]
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Top %d Feature Importances", len(vals))
	p.X.Label.Text = "Importance"
	bars, err := plotter.NewBarChart(plotter.Values(vals), vg.Points(14))
	if err != nil {
		return nil, false, errors.Wrap(err, "viz: importance bars")
	}
	bars.Horizontal = true
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)
	return p, true, nil
}

func residualPlot(req Request) (*plot.Plot, bool, error) {
	if len(req.YTrue) == 0 || len(req.YTrue) != len(req.YPred) {
		return nil, false, nil
	}
	pts := make(plotter.XYs, len(req.YPred))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, pred := range req.YPred {
		pts[i] = plotter.XY{X: pred, Y: req.YTrue[i] - pred}
		lo, hi = math.Min(lo, pred), math.Max(hi, pred)
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	p := plot.New()
	p.Title.Text = "Residual Plot"
	p.X.Label.Text = "Predicted Values"
	p.Y.Label.Text = "Residuals"

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, false, errors.Wrap(err, "viz: residual scatter")
	}
	s.Color = color.RGBA{R: 50, G: 50, B: 255, A: 160}
	p.Add(s)

	zero, err := plotter.NewLine(plotter.XYs{{X: lo, Y: 0}, {X: hi, Y: 0}})
	if err != nil {
		return nil, false, errors.Wrap(err, "viz: zero line")
	}
	zero.Color = color.RGBA{R: 255, A: 255}
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(zero)
	return p, true, nil
}

func clusterPlot(req Request) (*plot.Plot, bool, error) {
	if len(req.Points) == 0 || len(req.Points) != len(req.Labels) {
		return nil, false, nil
	}
	groups := map[int]plotter.XYs{}
	var order []int
	for i, pt := range req.Points {
		if len(pt) < 2 {
			return nil, false, nil
		}
		l := req.Labels[i]
		if _, seen := groups[l]; !seen {
			order = append(order, l)
		}
		groups[l] = append(groups[l], plotter.XY{X: pt[0], Y: pt[1]})
	}

	p := plot.New()
	p.Title.Text = "Cluster Visualization (First 2 Components)"
	p.X.Label.Text = "Component 1"
	p.Y.Label.Text = "Component 2"
	for k, l := range order {
		s, err := plotter.NewScatter(groups[l])
		if err != nil {
			return nil, false, errors.Wrap(err, "viz: cluster scatter")
		}
		name := fmt.Sprintf("cluster %d", l)
		if l == model.Noise {
			s.Color = color.Black
			s.Shape = draw.CrossGlyph{}
			name = "noise"
		} else {
			s.Color = plotutil.Color(k)
			s.Shape = draw.CircleGlyph{}
		}
		p.Add(s)
		p.Legend.Add(name, s)
	}
	return p, true, nil
}
