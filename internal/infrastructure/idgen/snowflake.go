// Package idgen issues human readable invoice numbers.
package idgen

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeNumberGenerator produces invoice numbers of the form PREFIX-<id>.
// Numbers are unique across instances as long as each uses its own node id.
type SnowflakeNumberGenerator struct {
	prefix string
	node   *snowflake.Node
}

// NewSnowflakeNumberGenerator creates a generator for the given node (0-1023)
func NewSnowflakeNumberGenerator(prefix string, nodeID int64) (*SnowflakeNumberGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), "-")
	if prefix == "" {
		prefix = "INV"
	}
	return &SnowflakeNumberGenerator{prefix: prefix, node: node}, nil
}

// Next returns a new invoice number
func (g *SnowflakeNumberGenerator) Next() string {
	return g.prefix + "-" + g.node.Generate().String()
}
