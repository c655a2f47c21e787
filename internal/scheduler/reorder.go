package scheduler

// reorder buffers results that complete early and releases them strictly
// in sequence order.
type reorder struct {
	next    int64
	pending map[int64]Result
}

func newReorder() *reorder {
	return &reorder{pending: make(map[int64]Result)}
}

// push adds res and returns every result that is now in order.
func (r *reorder) push(res Result) []Result {
	if res.Seq != r.next {
		r.pending[res.Seq] = res
		return nil
	}
	ready := []Result{res}
	r.next++
	for {
		res, ok := r.pending[r.next]
		if !ok {
			return ready
		}
		delete(r.pending, r.next)
		ready = append(ready, res)
		r.next++
	}
}

// buffered returns how many results are waiting for an earlier one.
func (r *reorder) buffered() int {
	return len(r.pending)
}
