package service

import (
	"context"
	"testing"
)

// ==================== 测试辅助 ====================

// treeNode 树构建测试用的最小节点
type treeNode struct {
	ID       int64
	ParentID *int64
	Children []*treeNode
}

func ptr(v int64) *int64 { return &v }

// lookupFromMap 用内存父表模拟仓储查询
func lookupFromMap(parents map[int64]*int64) parentLookup {
	return func(_ context.Context, id int64) (*int64, error) {
		return parents[id], nil
	}
}

// ==================== 单元测试 ====================

func TestBuildForest(t *testing.T) {
	// 1 ── 2 ── 3
	//   └─ 4
	// 5（根）
	items := []*treeNode{
		{ID: 1},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
		{ID: 4, ParentID: ptr(1)},
		{ID: 5},
	}

	roots := BuildForest(items,
		func(n *treeNode) int64 { return n.ID },
		func(n *treeNode) *int64 { return n.ParentID },
		func(p, c *treeNode) { p.Children = append(p.Children, c) },
	)

	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
	if len(roots[0].Children) != 2 {
		t.Errorf("node 1 children = %d, want 2", len(roots[0].Children))
	}
	if len(roots[0].Children[0].Children) != 1 {
		t.Errorf("node 2 children = %d, want 1", len(roots[0].Children[0].Children))
	}
}

func TestBuildForest_OrphanPromoted(t *testing.T) {
	// 父节点 99 不存在，孤儿提升为根而不是被丢弃
	items := []*treeNode{
		{ID: 1},
		{ID: 2, ParentID: ptr(99)},
	}

	roots := BuildForest(items,
		func(n *treeNode) int64 { return n.ID },
		func(n *treeNode) *int64 { return n.ParentID },
		func(p, c *treeNode) { p.Children = append(p.Children, c) },
	)

	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}
}

func TestWouldCreateCycle(t *testing.T) {
	// 1 → 2 → 3 的父链
	parents := map[int64]*int64{
		1: nil,
		2: ptr(1),
		3: ptr(2),
	}
	lookup := lookupFromMap(parents)
	ctx := context.Background()

	// 把 1 挂到自己的后代 3 下面，成环
	cycle, err := wouldCreateCycle(ctx, 1, 3, lookup)
	if err != nil {
		t.Fatalf("wouldCreateCycle: %v", err)
	}
	if !cycle {
		t.Error("1 → 3 应判为成环")
	}

	// 自引用
	cycle, _ = wouldCreateCycle(ctx, 2, 2, lookup)
	if !cycle {
		t.Error("自引用应判为成环")
	}

	// 正常换父
	cycle, err = wouldCreateCycle(ctx, 3, 1, lookup)
	if err != nil {
		t.Fatalf("wouldCreateCycle: %v", err)
	}
	if cycle {
		t.Error("3 → 1 不应判为成环")
	}
}

func TestWouldCreateCycle_DepthLimit(t *testing.T) {
	// 构造超过上限的长父链，数据异常时应拒绝而不是死循环
	parents := make(map[int64]*int64)
	for i := int64(1); i <= maxHierarchyDepth+10; i++ {
		parents[i] = ptr(i + 1)
	}

	cycle, err := wouldCreateCycle(context.Background(), 9999, 1, lookupFromMap(parents))
	if err != nil {
		t.Fatalf("wouldCreateCycle: %v", err)
	}
	if !cycle {
		t.Error("超深父链应按成环拒绝")
	}
}

func TestFindSubtree(t *testing.T) {
	root := &treeNode{ID: 1, Children: []*treeNode{
		{ID: 2, Children: []*treeNode{{ID: 3}}},
		{ID: 4},
	}}

	node, found := findSubtree([]*treeNode{root}, 3,
		func(n *treeNode) int64 { return n.ID },
		func(n *treeNode) []*treeNode { return n.Children },
	)
	if !found || node.ID != 3 {
		t.Errorf("findSubtree(3) = (%v, %v), want node 3", node, found)
	}

	_, found = findSubtree([]*treeNode{root}, 42,
		func(n *treeNode) int64 { return n.ID },
		func(n *treeNode) []*treeNode { return n.Children },
	)
	if found {
		t.Error("findSubtree(42) 不应命中")
	}
}
