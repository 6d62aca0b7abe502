package service

import (
	"sort"

	"github.com/d60-Lab/lablinker/internal/model"
)

// buildForest 把平铺的评论组装成树，迭代构建，不随嵌套深度递归。
// 同级按 created_at 升序，时间相同按 id。父评论不在列表中的回复被丢弃。
func buildForest(comments []*model.Comment, toNode func(*model.Comment) *CommentNode) ([]*CommentNode, map[string]*CommentNode) {
	sorted := make([]*model.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	nodes := make(map[string]*CommentNode, len(sorted))
	for _, c := range sorted {
		nodes[c.ID] = toNode(c)
	}

	roots := make([]*CommentNode, 0)
	for _, c := range sorted {
		n := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, n)
		}
	}
	return roots, nodes
}
