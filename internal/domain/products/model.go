package products

import "time"

type Product struct {
	ID        string
	Name      string
	ImageURL  string
	StoreName string
	StoreLink string

	Bought      bool
	LikeNico    bool
	LikeBarbara bool
	// LikeBoth es derivado: LikeNico && LikeBarbara.
	LikeBoth bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) recompute() {
	p.LikeBoth = p.LikeNico && p.LikeBarbara
}

type Counts struct {
	Total  int
	Bought int
	Liked  int
}
