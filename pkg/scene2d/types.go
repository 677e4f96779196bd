package scene2d

// Scene2D is the top-down scene of one designed triple for an SVG renderer.
type Scene2D struct {
	Metadata Metadata     `json:"metadata"`
	Contour  [][2]float64 `json:"contour,omitempty"`
	Wells    []Well2D     `json:"wells"`
	Zones    []Zone2D     `json:"zones"`
	FirstRow []Link2D     `json:"first_row"`
	Bounds   Bounds       `json:"bounds"`
}

// Metadata holds triple-level summary data.
type Metadata struct {
	Project      string   `json:"project"`
	Triple       string   `json:"triple"`
	MeanRadiusM  float64  `json:"mean_radius_m"`
	ZoneRadiusM  float64  `json:"zone_radius_m"`
	WellCount    int      `json:"well_count"`
	Selected     int      `json:"selected"`
	NotCovered   []string `json:"not_covered"`
	AreaCoverage float64  `json:"area_coverage"`
	GeneratedAt  string   `json:"generated_at"`
}

// Well2D is one well trace. Vertical wells have Head == Toe.
type Well2D struct {
	Name       string     `json:"name"`
	Role       string     `json:"role"`
	Kind       string     `json:"kind"`
	Head       [2]float64 `json:"head"`
	Toe        [2]float64 `json:"toe"`
	Selected   bool       `json:"selected"`
	Forced     bool       `json:"forced,omitempty"`
	SurveyYear int        `json:"survey_year,omitempty"`
}

// Zone2D is the monitoring zone of a selected well.
type Zone2D struct {
	Well       string       `json:"well"`
	SurveyYear int          `json:"survey_year"`
	Polygon    [][2]float64 `json:"polygon"`
}

// Link2D joins an injector to one of its first-row wells.
type Link2D struct {
	From  string     `json:"from"`
	To    string     `json:"to"`
	Start [2]float64 `json:"start"`
	End   [2]float64 `json:"end"`
}

// Bounds is the axis-aligned extent of everything in the scene.
type Bounds struct {
	Min [2]float64 `json:"min"`
	Max [2]float64 `json:"max"`
}

// Width of the bounds.
func (b Bounds) Width() float64 { return b.Max[0] - b.Min[0] }

// Height of the bounds.
func (b Bounds) Height() float64 { return b.Max[1] - b.Min[1] }
