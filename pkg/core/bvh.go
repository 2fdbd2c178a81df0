package core

// The BVH is built top-down with the surface area heuristic: centroids are
// binned into a fixed number of buckets along the longest centroid axis and
// the cheapest of the candidate splits wins. Nodes live in a contiguous array
// and children are indices, keeping traversal cache-friendly.

const (
	// Leaf threshold: ranges of this many or fewer shapes become leaves
	bvhLeafSize = 4
	// Number of SAH buckets per split evaluation
	bvhBuckets = 12
)

// BVHNode is one node of the flattened hierarchy. Count > 0 marks a leaf
// covering shapes[First : First+Count]; internal nodes hold child indices.
type BVHNode struct {
	Bounds AABB
	Left   int32
	Right  int32
	First  int32
	Count  int32
}

// BVH is a bounding volume hierarchy over a fixed set of shapes
type BVH struct {
	nodes  []BVHNode
	shapes []Shape
}

type bvhPrimitive struct {
	shape    Shape
	bounds   AABB
	centroid Vec3
}

// NewBVH constructs a BVH from a slice of shapes. The input slice is not
// modified; shapes are reordered internally by the build partition.
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	prims := make([]bvhPrimitive, len(shapes))
	for i, shape := range shapes {
		bounds := shape.BoundingBox()
		prims[i] = bvhPrimitive{
			shape:    shape,
			bounds:   bounds,
			centroid: bounds.Center(),
		}
	}

	bvh := &BVH{
		nodes:  make([]BVHNode, 0, 2*len(shapes)),
		shapes: make([]Shape, 0, len(shapes)),
	}
	bvh.build(prims)
	return bvh
}

// Root returns the root node bounds, or an empty AABB for an empty BVH
func (bvh *BVH) Root() AABB {
	if len(bvh.nodes) == 0 {
		return EmptyAABB()
	}
	return bvh.nodes[0].Bounds
}

// Len returns the number of shapes in the hierarchy
func (bvh *BVH) Len() int {
	return len(bvh.shapes)
}

// build recursively partitions prims and returns the new node's index
func (bvh *BVH) build(prims []bvhPrimitive) int32 {
	bounds := EmptyAABB()
	centroidBounds := EmptyAABB()
	for _, prim := range prims {
		bounds = bounds.Union(prim.bounds)
		centroidBounds = centroidBounds.Union(NewAABBFromPoints(prim.centroid))
	}

	nodeIndex := int32(len(bvh.nodes))
	bvh.nodes = append(bvh.nodes, BVHNode{Bounds: bounds})

	if len(prims) <= bvhLeafSize {
		bvh.makeLeaf(nodeIndex, prims)
		return nodeIndex
	}

	axis := centroidBounds.LongestAxis()
	extent := centroidBounds.Size().Axis(axis)
	if extent < 1e-12 {
		// All centroids coincide along the split axis
		bvh.makeLeaf(nodeIndex, prims)
		return nodeIndex
	}

	// Bin centroids into equal-width buckets along the split axis
	var bucketCounts [bvhBuckets]int
	var bucketBounds [bvhBuckets]AABB
	for b := range bucketBounds {
		bucketBounds[b] = EmptyAABB()
	}
	lo := centroidBounds.Min.Axis(axis)
	for _, prim := range prims {
		b := bucketFor(prim.centroid.Axis(axis), lo, extent)
		bucketCounts[b]++
		bucketBounds[b] = bucketBounds[b].Union(prim.bounds)
	}

	// Evaluate the cost of each of the bucket boundaries:
	// cost = area(left) * countLeft + area(right) * countRight
	bestSplit := -1
	bestCost := bounds.SurfaceArea() * float64(len(prims))
	for split := 0; split < bvhBuckets-1; split++ {
		leftBounds, rightBounds := EmptyAABB(), EmptyAABB()
		leftCount, rightCount := 0, 0
		for b := 0; b <= split; b++ {
			if bucketCounts[b] > 0 {
				leftBounds = leftBounds.Union(bucketBounds[b])
				leftCount += bucketCounts[b]
			}
		}
		for b := split + 1; b < bvhBuckets; b++ {
			if bucketCounts[b] > 0 {
				rightBounds = rightBounds.Union(bucketBounds[b])
				rightCount += bucketCounts[b]
			}
		}
		if leftCount == 0 || rightCount == 0 {
			continue
		}

		cost := leftBounds.SurfaceArea()*float64(leftCount) +
			rightBounds.SurfaceArea()*float64(rightCount)
		if cost < bestCost {
			bestCost = cost
			bestSplit = split
		}
	}

	if bestSplit < 0 {
		// No split improves on the leaf cost
		bvh.makeLeaf(nodeIndex, prims)
		return nodeIndex
	}

	// Stable partition so leaf order is deterministic
	left := make([]bvhPrimitive, 0, len(prims))
	right := make([]bvhPrimitive, 0, len(prims))
	for _, prim := range prims {
		if bucketFor(prim.centroid.Axis(axis), lo, extent) <= bestSplit {
			left = append(left, prim)
		} else {
			right = append(right, prim)
		}
	}

	leftIndex := bvh.build(left)
	rightIndex := bvh.build(right)
	bvh.nodes[nodeIndex].Left = leftIndex
	bvh.nodes[nodeIndex].Right = rightIndex
	return nodeIndex
}

func bucketFor(centroid, lo, extent float64) int {
	b := int(float64(bvhBuckets) * (centroid - lo) / extent)
	if b >= bvhBuckets {
		b = bvhBuckets - 1
	}
	if b < 0 {
		b = 0
	}
	return b
}

func (bvh *BVH) makeLeaf(nodeIndex int32, prims []bvhPrimitive) {
	bvh.nodes[nodeIndex].First = int32(len(bvh.shapes))
	bvh.nodes[nodeIndex].Count = int32(len(prims))
	for _, prim := range prims {
		bvh.shapes = append(bvh.shapes, prim.shape)
	}
}

// Hit finds the closest intersection along the ray, walking the hierarchy
// with an explicit stack and visiting the nearer child first
func (bvh *BVH) Hit(ray Ray, tMin, tMax float64) (*HitRecord, bool) {
	if len(bvh.nodes) == 0 {
		return nil, false
	}

	var closestHit *HitRecord
	closestSoFar := tMax

	stack := make([]int32, 1, 64)
	stack[0] = 0

	for len(stack) > 0 {
		node := &bvh.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		tNear, _, ok := node.Bounds.HitRange(ray, tMin, closestSoFar)
		if !ok || tNear > closestSoFar {
			continue
		}

		if node.Count > 0 {
			for _, shape := range bvh.shapes[node.First : node.First+node.Count] {
				if hit, isHit := shape.Hit(ray, tMin, closestSoFar); isHit {
					closestSoFar = hit.T
					closestHit = hit
				}
			}
			continue
		}

		// Push the farther child first so the nearer is processed first
		leftNear, _, leftOK := bvh.nodes[node.Left].Bounds.HitRange(ray, tMin, closestSoFar)
		rightNear, _, rightOK := bvh.nodes[node.Right].Bounds.HitRange(ray, tMin, closestSoFar)
		switch {
		case leftOK && rightOK:
			if leftNear <= rightNear {
				stack = append(stack, node.Right, node.Left)
			} else {
				stack = append(stack, node.Left, node.Right)
			}
		case leftOK:
			stack = append(stack, node.Left)
		case rightOK:
			stack = append(stack, node.Right)
		}
	}

	return closestHit, closestHit != nil
}

// AnyHit reports whether anything intersects the ray with t in
// (tMin, maxDistance), short-circuiting on the first hit found. The returned
// t is the parameter of whichever hit stopped the walk, not the closest.
func (bvh *BVH) AnyHit(ray Ray, tMin, maxDistance float64) (float64, bool) {
	if len(bvh.nodes) == 0 {
		return 0, false
	}

	stack := make([]int32, 1, 64)
	stack[0] = 0

	for len(stack) > 0 {
		node := &bvh.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if !node.Bounds.Hit(ray, tMin, maxDistance) {
			continue
		}

		if node.Count > 0 {
			for _, shape := range bvh.shapes[node.First : node.First+node.Count] {
				if hit, isHit := shape.Hit(ray, tMin, maxDistance); isHit {
					return hit.T, true
				}
			}
			continue
		}

		stack = append(stack, node.Left, node.Right)
	}

	return 0, false
}
