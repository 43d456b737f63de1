package navigation

// heapNode is an open-set entry, idx is the flat cell index
type heapNode struct {
	idx int32
	f   float64
	g   float64
}

// nodeHeap is a binary min-heap ordered by f.
// Ties prefer the larger g, deeper nodes are closer to the goal and
// keep the search from stalling on equal-cost frontiers
type nodeHeap []heapNode

func nodeLess(a, b heapNode) bool {
	if a.f != b.f {
		return a.f < b.f
	}
	return a.g > b.g
}

func (h *nodeHeap) push(n heapNode) {
	*h = append(*h, n)
	i := len(*h) - 1
	for i > 0 {
		parent := (i - 1) / 2
		if !nodeLess((*h)[i], (*h)[parent]) {
			break
		}
		(*h)[i], (*h)[parent] = (*h)[parent], (*h)[i]
		i = parent
	}
}

func (h *nodeHeap) pop() heapNode {
	old := *h
	top := old[0]
	last := len(old) - 1
	old[0] = old[last]
	*h = old[:last]

	i := 0
	for {
		left := 2*i + 1
		if left >= last {
			break
		}
		small := left
		if right := left + 1; right < last && nodeLess(old[right], old[left]) {
			small = right
		}
		if !nodeLess(old[small], old[i]) {
			break
		}
		old[i], old[small] = old[small], old[i]
		i = small
	}
	return top
}
