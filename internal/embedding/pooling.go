package embedding

// MeanPool averages the rows of hidden, a row-major [len(mask)][dims] matrix of token
// states, over the positions whose attention mask is set. It returns a zero vector when
// no position is set.
func MeanPool(hidden []float32, mask []int64, dims int) []float32 {
	out := make([]float32, dims)
	if dims <= 0 {
		return out
	}
	var count float32
	for pos, m := range mask {
		if m == 0 {
			continue
		}
		row := pos * dims
		if row+dims > len(hidden) {
			break
		}
		for j := 0; j < dims; j++ {
			out[j] += hidden[row+j]
		}
		count++
	}
	if count == 0 {
		return out
	}
	for j := range out {
		out[j] /= count
	}
	return out
}
