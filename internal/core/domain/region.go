package domain

// RegionQuery carries the raw, unparsed coordinate input of a request.
// Empty strings mean the parameter was not supplied.
type RegionQuery struct {
	Lat    string
	Lon    string
	Radius string // km, point queries only

	LatMin string
	LonMin string
	LatMax string
	LonMax string
}

// HasBox reports whether any of the box parameters were supplied.
func (q RegionQuery) HasBox() bool {
	return q.LatMin != "" || q.LonMin != "" || q.LatMax != "" || q.LonMax != ""
}

// HasPoint reports whether either point parameter was supplied.
func (q RegionQuery) HasPoint() bool {
	return q.Lat != "" || q.Lon != ""
}

// RegionSource records which input shape produced a Region.
type RegionSource string

const (
	RegionFromBox     RegionSource = "box"
	RegionFromPoint   RegionSource = "point"
	RegionFromDefault RegionSource = "default"
)

// Region is the canonical query area: one box plus the center used to
// anchor synthetic flights.
type Region struct {
	Box    BoundingBox  `json:"box"`
	Center GeoPoint     `json:"center"`
	Source RegionSource `json:"source"`
}
