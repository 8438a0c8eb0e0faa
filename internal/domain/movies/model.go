package movies

import "time"

// List es la lista compartida donde vive la película.
// @Enum Barbara, Nico, Juntos
type List string

const (
	ListBarbara  List = "Barbara"
	ListNico     List = "Nico"
	ListTogether List = "Juntos"
)

func (l List) Valid() bool {
	switch l {
	case ListBarbara, ListNico, ListTogether:
		return true
	}
	return false
}

type Movie struct {
	ID    string
	Title string

	// ID de la película en el catálogo externo.
	APIID string

	List    List
	Watched bool
	Poster  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Counts alimenta el rollup de stats.
type Counts struct {
	Total   int
	Watched int
}
