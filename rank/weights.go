package rank

import "github.com/poiesic/telsearch/core"

// Weights is the dense/sparse blend applied after per-pool
// normalization. Dense and Sparse always sum to one.
type Weights struct {
	Dense  float64
	Sparse float64
}

// intentWeights encodes how much each intent trusts lexical versus
// semantic evidence. Price and document questions hinge on exact
// tokens (amounts, form names); general questions lean on embeddings.
var intentWeights = map[core.Intent]Weights{
	core.IntentPrice:       {Dense: 0.2, Sparse: 0.8},
	core.IntentSpeed:       {Dense: 0.3, Sparse: 0.7},
	core.IntentDocuments:   {Dense: 0.1, Sparse: 0.9},
	core.IntentBeneficiary: {Dense: 0.6, Sparse: 0.4},
	core.IntentGeneral:     {Dense: 0.7, Sparse: 0.3},
}

// WeightsFor returns the blend for an intent, defaulting to the
// general-purpose blend for unknown values.
func WeightsFor(intent core.Intent) Weights {
	if w, ok := intentWeights[intent]; ok {
		return w
	}
	return intentWeights[core.IntentGeneral]
}
