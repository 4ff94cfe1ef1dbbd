package metrics

// FindPeaks returns the indices of local maxima strictly above threshold.
// A run of equal values counts once and is reported at its midpoint.
func FindPeaks(values []float64, threshold float64) []int {
	peaks := make([]int, 0)
	n := len(values)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[j+1] == values[i] {
			j++
		}

		v := values[i]
		leftLower := i == 0 || values[i-1] < v
		rightLower := j == n-1 || values[j+1] < v
		if v > threshold && leftLower && rightLower {
			peaks = append(peaks, (i+j)/2)
		}
		i = j + 1
	}
	return peaks
}

func CountPeaks(values []float64, threshold float64) int {
	return len(FindPeaks(values, threshold))
}
