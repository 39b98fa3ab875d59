// File: internal/classifier/network.go
// Description: A small feed-forward network: one tanh hidden layer into a
// softmax output, trained with plain SGD on cross-entropy loss. No
// dependency on an ML framework; the weight matrices are plain slices so
// the whole model serializes as JSON.

package classifier

import (
	"math"
	"math/rand"
)

// Network is a fully-connected net with a single hidden layer. Weights are
// exported so the enclosing model can serialize them.
type Network struct {
	InputSize  int         `json:"input_size"`
	HiddenSize int         `json:"hidden_size"`
	OutputSize int         `json:"output_size"`
	W1         [][]float64 `json:"w1"` // [input][hidden]
	B1         []float64   `json:"b1"`
	W2         [][]float64 `json:"w2"` // [hidden][output]
	B2         []float64   `json:"b2"`
}

// NewNetwork builds a network with Xavier-style uniform initialization from
// the supplied RNG, so identical seeds yield identical starting weights.
func NewNetwork(inputSize, hiddenSize, outputSize int, rng *rand.Rand) *Network {
	n := &Network{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		OutputSize: outputSize,
		W1:         make([][]float64, inputSize),
		B1:         make([]float64, hiddenSize),
		W2:         make([][]float64, hiddenSize),
		B2:         make([]float64, outputSize),
	}

	limit1 := math.Sqrt(6.0 / float64(inputSize+hiddenSize))
	for i := range n.W1 {
		n.W1[i] = make([]float64, hiddenSize)
		for j := range n.W1[i] {
			n.W1[i][j] = (rng.Float64()*2 - 1) * limit1
		}
	}

	limit2 := math.Sqrt(6.0 / float64(hiddenSize+outputSize))
	for i := range n.W2 {
		n.W2[i] = make([]float64, outputSize)
		for j := range n.W2[i] {
			n.W2[i][j] = (rng.Float64()*2 - 1) * limit2
		}
	}
	return n
}

// Forward computes the softmax output distribution for one input vector.
func (n *Network) Forward(input []float64) []float64 {
	hidden, _ := n.forwardHidden(input)
	return n.forwardOutput(hidden)
}

// forwardHidden returns the tanh activations and the pre-activation sums of
// the hidden layer. The sums are kept for the backward pass.
func (n *Network) forwardHidden(input []float64) (act, sum []float64) {
	act = make([]float64, n.HiddenSize)
	sum = make([]float64, n.HiddenSize)
	for j := 0; j < n.HiddenSize; j++ {
		z := n.B1[j]
		for i, x := range input {
			if x != 0 {
				z += x * n.W1[i][j]
			}
		}
		sum[j] = z
		act[j] = math.Tanh(z)
	}
	return act, sum
}

func (n *Network) forwardOutput(hidden []float64) []float64 {
	logits := make([]float64, n.OutputSize)
	for k := 0; k < n.OutputSize; k++ {
		z := n.B2[k]
		for j, h := range hidden {
			z += h * n.W2[j][k]
		}
		logits[k] = z
	}
	return softmax(logits)
}

// TrainStep performs one SGD update for a single (input, label) pair and
// returns the cross-entropy loss before the update.
func (n *Network) TrainStep(input []float64, label int, learningRate float64) float64 {
	hidden, _ := n.forwardHidden(input)
	probs := n.forwardOutput(hidden)

	loss := -math.Log(math.Max(probs[label], 1e-12))

	// Output layer gradient: softmax with cross-entropy collapses to
	// (probs - onehot).
	dOut := make([]float64, n.OutputSize)
	copy(dOut, probs)
	dOut[label] -= 1

	// Backpropagate into the hidden layer before touching W2.
	dHidden := make([]float64, n.HiddenSize)
	for j := 0; j < n.HiddenSize; j++ {
		var grad float64
		for k := 0; k < n.OutputSize; k++ {
			grad += dOut[k] * n.W2[j][k]
		}
		dHidden[j] = grad * (1 - hidden[j]*hidden[j]) // tanh'
	}

	for j := 0; j < n.HiddenSize; j++ {
		for k := 0; k < n.OutputSize; k++ {
			n.W2[j][k] -= learningRate * dOut[k] * hidden[j]
		}
	}
	for k := 0; k < n.OutputSize; k++ {
		n.B2[k] -= learningRate * dOut[k]
	}

	for i, x := range input {
		if x == 0 {
			continue
		}
		for j := 0; j < n.HiddenSize; j++ {
			n.W1[i][j] -= learningRate * dHidden[j] * x
		}
	}
	for j := 0; j < n.HiddenSize; j++ {
		n.B1[j] -= learningRate * dHidden[j]
	}

	return loss
}

func softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}
	var sum float64
	out := make([]float64, len(logits))
	for i, l := range logits {
		out[i] = math.Exp(l - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
