package pets

import "strings"

// deltas: tabla de calibración. Los valores son de producto; los signos no.
// deleteMovie es la única interacción que resta curiosidad.
var deltas = map[InteractionType]Delta{
	InteractionAddMovie:     {Curiosity: 10},
	InteractionMarkWatched:  {Happiness: 15},
	InteractionDeleteMovie:  {Curiosity: -5},
	InteractionAddProduct:   {Curiosity: 8},
	InteractionBuyProduct:   {Happiness: 12},
	InteractionLikeOne:      {Energy: 5},
	InteractionLikeBoth:     {Happiness: 20},
	InteractionAddCoupon:    {Curiosity: 7},
	InteractionRedeemCoupon: {Happiness: 18},
}

// Classify devuelve el delta de una interacción.
// Tipos desconocidos devuelven delta cero (nunca error) para que los productores
// puedan agregar interacciones nuevas sin romper el motor.
func Classify(t InteractionType) Delta {
	return deltas[t]
}

// InteractionTypes lista el set cerrado, en orden estable.
func InteractionTypes() []InteractionType {
	return []InteractionType{
		InteractionAddMovie,
		InteractionMarkWatched,
		InteractionDeleteMovie,
		InteractionAddProduct,
		InteractionBuyProduct,
		InteractionLikeOne,
		InteractionLikeBoth,
		InteractionAddCoupon,
		InteractionRedeemCoupon,
	}
}

// ParseInteractionType normaliza el path param. No valida: desconocido => delta cero.
func ParseInteractionType(s string) InteractionType {
	s = strings.TrimSpace(s)
	for _, t := range InteractionTypes() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return InteractionType(s)
}
