// File: internal/classifier/network_test.go
package classifier

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetwork_ForwardIsDistribution(t *testing.T) {
	net := NewNetwork(6, 8, 4, rand.New(rand.NewSource(1)))

	out := net.Forward([]float64{1, 0, 0.5, 0, 1, 0.25})
	require.Len(t, out, 4)

	var sum float64
	for _, p := range out {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "softmax output must sum to one")
}

func TestNetwork_DeterministicInit(t *testing.T) {
	a := NewNetwork(5, 4, 3, rand.New(rand.NewSource(99)))
	b := NewNetwork(5, 4, 3, rand.New(rand.NewSource(99)))
	assert.Equal(t, a, b)
}

// TestNetwork_LearnsSeparableToy trains on a trivially separable problem
// (one-hot inputs mapped to matching labels) and checks the loss drops.
func TestNetwork_LearnsSeparableToy(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	net := NewNetwork(3, 8, 3, rng)

	inputs := [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

	var firstPass, lastPass float64
	const rounds = 200
	for round := 0; round < rounds; round++ {
		var roundLoss float64
		for label, input := range inputs {
			roundLoss += net.TrainStep(input, label, 0.5)
		}
		if round == 0 {
			firstPass = roundLoss
		}
		if round == rounds-1 {
			lastPass = roundLoss
		}
	}

	assert.Less(t, lastPass, firstPass, "training must reduce cross-entropy loss")
	assert.Less(t, lastPass, 0.1, "a separable toy problem should be nearly solved")

	for label, input := range inputs {
		probs := net.Forward(input)
		assert.Equal(t, label, argmax(probs))
	}
}
