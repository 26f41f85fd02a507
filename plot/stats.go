package plot

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/stenstromen/healthviz/dataset"
)

// axis maps the cells of one column onto plot coordinates. Numeric columns
// keep their values; text columns become categories 0..n-1 in first-seen
// order. Columns mixing both are rejected.
type axis struct {
	values     []float64
	present    []bool
	categories []string
}

func (a axis) categorical() bool {
	return a.categories != nil
}

func newAxis(cells []dataset.Value) (axis, error) {
	var numeric, text int
	for _, c := range cells {
		switch {
		case c.Missing():
		case c.Numeric:
			numeric++
		default:
			text++
		}
	}
	if numeric > 0 && text > 0 {
		return axis{}, errors.New("column mixes numbers and text")
	}

	a := axis{values: make([]float64, len(cells)), present: make([]bool, len(cells))}
	if text == 0 {
		for i, c := range cells {
			if c.Numeric {
				a.values[i] = c.Num
				a.present[i] = true
			}
		}
		return a, nil
	}

	index := map[string]int{}
	a.categories = []string{}
	for i, c := range cells {
		if c.Missing() {
			continue
		}
		k, ok := index[c.Raw]
		if !ok {
			k = len(a.categories)
			index[c.Raw] = k
			a.categories = append(a.categories, c.Raw)
		}
		a.values[i] = float64(k)
		a.present[i] = true
	}
	return a, nil
}

func numericAxis(cells []dataset.Value, name string) (axis, error) {
	a, err := newAxis(cells)
	if err != nil {
		return axis{}, err
	}
	if a.categorical() {
		return axis{}, fmt.Errorf("%s must be numeric", name)
	}
	return a, nil
}

// pairs keeps the rows where both axes have a value.
func pairs(x, y axis) (xs, ys []float64) {
	for i := range x.values {
		if x.present[i] && y.present[i] {
			xs = append(xs, x.values[i])
			ys = append(ys, y.values[i])
		}
	}
	return xs, ys
}

// group is one category of a categorical summary.
type group struct {
	label string
	key   float64
	sum   float64
	n     int
}

func (g group) mean() float64 {
	return g.sum / float64(g.n)
}

// groups buckets rows by their x cell. Numeric keys come out sorted
// ascending, text keys in first-seen order. With ys nil every row counts.
func groups(xs []dataset.Value, ys []float64, yok []bool) ([]*group, error) {
	a, err := newAxis(xs)
	if err != nil {
		return nil, err
	}

	byLabel := map[string]*group{}
	var out []*group
	for i, c := range xs {
		if !a.present[i] {
			continue
		}
		if ys != nil && !yok[i] {
			continue
		}
		g, ok := byLabel[c.Raw]
		if !ok {
			g = &group{label: c.Raw, key: a.values[i]}
			byLabel[c.Raw] = g
			out = append(out, g)
		}
		g.n++
		if ys != nil {
			g.sum += ys[i]
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no data to group")
	}
	if !a.categorical() {
		sort.SliceStable(out, func(i, j int) bool { return out[i].key < out[j].key })
	}
	return out, nil
}

// meanByX sorts points by x and averages ys sharing an x.
func meanByX(xs, ys []float64) ([]float64, []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	var ox, oy []float64
	var n int
	for _, i := range idx {
		if len(ox) > 0 && ox[len(ox)-1] == xs[i] {
			n++
			last := len(oy) - 1
			oy[last] += (ys[i] - oy[last]) / float64(n)
			continue
		}
		ox = append(ox, xs[i])
		oy = append(oy, ys[i])
		n = 1
	}
	return ox, oy
}

func minMax(vs []float64) (float64, float64) {
	if len(vs) == 0 {
		return math.Inf(1), math.Inf(-1)
	}
	return floats.Min(vs), floats.Max(vs)
}

// stddev is the sample standard deviation, zero below two values.
func stddev(vs []float64) float64 {
	if len(vs) < 2 {
		return 0
	}
	return stat.StdDev(vs, nil)
}

// histogram bins vs using Sturges' rule and scales bar heights so the total
// area is one.
func histogram(vs []float64) (edges, density []float64) {
	lo, hi := minMax(vs)
	bins := int(math.Ceil(math.Log2(float64(len(vs))))) + 1
	if lo == hi {
		lo, hi, bins = lo-0.5, hi+0.5, 1
	}
	width := (hi - lo) / float64(bins)
	edges = floats.Span(make([]float64, bins+1), lo, hi)
	edges[bins] = hi

	// The last divider is exclusive, so nudge it past the maximum.
	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)
	counts := stat.Histogram(nil, dividers, sorted, nil)

	density = make([]float64, bins)
	for i, c := range counts {
		density[i] = c / (float64(len(vs)) * width)
	}
	return edges, density
}

// kde evaluates a Gaussian kernel density estimate with Scott's bandwidth on
// points evenly spaced over the data range. It returns nil when the data has
// no spread.
func kde(vs []float64, points int) (xs, ys []float64) {
	sd := stddev(vs)
	if sd == 0 {
		return nil, nil
	}
	h := sd * math.Pow(float64(len(vs)), -0.2)
	lo, hi := minMax(vs)
	xs = floats.Span(make([]float64, points), lo, hi)

	norm := 1 / (float64(len(vs)) * h * math.Sqrt(2*math.Pi))
	ys = make([]float64, points)
	for i, x := range xs {
		var sum float64
		for _, v := range vs {
			u := (x - v) / h
			sum += math.Exp(-0.5 * u * u)
		}
		ys[i] = sum * norm
	}
	return xs, ys
}
