package service

import "context"

// maxHierarchyDepth 父链上溯深度上限，超出按数据异常处理
const maxHierarchyDepth = 64

// BuildForest 把平铺节点列表组装成森林
// items 需按期望的兄弟顺序排好（仓储层按 sort_order, created_at 排序）；
// 父节点缺失的孤儿节点提升为根，不丢弃
func BuildForest[N any](items []N, id func(N) int64, parent func(N) *int64, attach func(parentNode, child N)) []N {
	index := make(map[int64]N, len(items))
	for _, item := range items {
		index[id(item)] = item
	}

	var roots []N
	for _, item := range items {
		pid := parent(item)
		if pid == nil {
			roots = append(roots, item)
			continue
		}
		parentNode, ok := index[*pid]
		if !ok || *pid == id(item) {
			roots = append(roots, item)
			continue
		}
		attach(parentNode, item)
	}
	return roots
}

// parentLookup 按节点 ID 取其父 ID，节点不存在时返回错误
type parentLookup func(ctx context.Context, id int64) (*int64, error)

// wouldCreateCycle 判断把 nodeID 的父节点改为 newParentID 是否会成环：
// 从新父沿父链上溯，命中 nodeID 即成环；链深超限同样拒绝
func wouldCreateCycle(ctx context.Context, nodeID, newParentID int64, lookup parentLookup) (bool, error) {
	if nodeID == newParentID {
		return true, nil
	}

	current := newParentID
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		pid, err := lookup(ctx, current)
		if err != nil {
			return false, err
		}
		if pid == nil {
			return false, nil
		}
		if *pid == nodeID {
			return true, nil
		}
		current = *pid
	}
	return true, nil
}

// findSubtree 在森林中定位 id 对应的子树根
func findSubtree[N any](roots []N, targetID int64, id func(N) int64, children func(N) []N) (N, bool) {
	var zero N
	stack := make([]N, len(roots))
	copy(stack, roots)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id(node) == targetID {
			return node, true
		}
		stack = append(stack, children(node)...)
	}
	return zero, false
}
