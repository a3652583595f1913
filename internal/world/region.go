package world

// UserRegion holds user-supplied fixes.
const UserRegion = "USER_FIX"

// Region is an ICAO region code such as "K1" or "ED".
type Region struct {
	id string
}

func (r *Region) ID() string {
	return r.id
}

func (r *Region) String() string {
	return r.id
}
