package coupons

import "time"

// Owner es quien puede canjear el cupón.
// @Enum Nico, Barbara
type Owner string

const (
	OwnerNico    Owner = "Nico"
	OwnerBarbara Owner = "Barbara"

	DefaultOwner = OwnerBarbara
)

// Owners es el set cerrado de dueños, en orden estable.
func Owners() []Owner {
	return []Owner{OwnerNico, OwnerBarbara}
}

func (o Owner) Valid() bool {
	for _, x := range Owners() {
		if o == x {
			return true
		}
	}
	return false
}

type Coupon struct {
	ID          string
	Title       string
	Description string
	Owner       Owner

	Redeemed bool
	// Reusable: al canjear se marca en vez de borrarse.
	Reusable bool

	// nil => no vence.
	ExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired indica si el cupón ya venció en now.
func (c Coupon) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

type Counts struct {
	Total    int
	Redeemed int
}
