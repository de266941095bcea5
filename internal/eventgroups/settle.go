package eventgroups

import "sync"

// settleAll runs fn for every index concurrently and waits for all of them,
// returning one error slot per item. A failure in one item never cancels the
// others; the caller decides how to surface partial failure.
func settleAll(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			errs[i] = fn(i)
		}(i)
	}
	wg.Wait()
	return errs
}
