package lens

import "sync"

// parallelFor executes fn over [0, n) split into at most workers contiguous chunks.
func parallelFor(n, workers, minChunk int, fn func(start, end int)) {
	if workers <= 1 || n <= minChunk {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
