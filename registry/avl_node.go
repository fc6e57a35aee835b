package registry

// AVLNode is one patient in the BalancedTree. Each node owns its children.
type AVLNode struct {
	Record Record
	Height int
	Left   *AVLNode
	Right  *AVLNode
}

func height(node *AVLNode) int {
	if node == nil {
		return 0
	}
	return node.Height
}

func updateHeight(node *AVLNode) {
	node.Height = max(height(node.Left), height(node.Right)) + 1
}

func balanceFactor(node *AVLNode) int {
	if node == nil {
		return 0
	}
	return height(node.Left) - height(node.Right)
}
