package repositories

import "github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"

// NetworkRepository provides access to the node and route graph
type NetworkRepository interface {
	GetNode(id entities.NodeID) (*entities.Node, error)
	GetAllNodes() ([]*entities.Node, error)
	GetAllRoutes() ([]*entities.Route, error)
	// GetRoutesFrom returns the routes leaving a node, ordered by destination
	GetRoutesFrom(origin entities.NodeID) ([]*entities.Route, error)
	LoadNodes(nodes []*entities.Node) error
	LoadRoutes(routes []*entities.Route) error
}
