package model

type Credential struct {
	Username   string
	Password   string
	TOTPSecret string
}

type UserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	Username   string `json:"username"`
	TOTPSecret string `json:"totp_secret,omitempty"`
}

// SessionState is the per-request view of the cookie session.
type SessionState struct {
	LoggedIn bool
	Username string
}

// None marks an axis selector left unset.
const None = "None"

type PlotKind int

const (
	LinePlot PlotKind = iota
	BarChart
	ScatterPlot
	DistributionPlot
	CountPlot
)

var PlotKinds = []PlotKind{LinePlot, BarChart, ScatterPlot, DistributionPlot, CountPlot}

func (k PlotKind) String() string {
	switch k {
	case LinePlot:
		return "Line Plot"
	case BarChart:
		return "Bar Chart"
	case ScatterPlot:
		return "Scatter Plot"
	case DistributionPlot:
		return "Distribution Plot"
	case CountPlot:
		return "Count Plot"
	}
	return "Unknown Plot"
}

// ParsePlotKind accepts the display name shown in the plot selector.
func ParsePlotKind(s string) (PlotKind, bool) {
	for _, k := range PlotKinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

type PlotRequest struct {
	XColumn string
	YColumn string
	Kind    PlotKind
}

// HasX reports whether an x column was selected.
func (p PlotRequest) HasX() bool {
	return p.XColumn != "" && p.XColumn != None
}

func (p PlotRequest) HasY() bool {
	return p.YColumn != "" && p.YColumn != None
}
