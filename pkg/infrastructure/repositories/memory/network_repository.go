package memory

import (
	"fmt"
	"sort"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/repositories"
)

// NetworkRepository provides in-memory node and route storage
type NetworkRepository struct {
	nodes    []entities.Node
	nodesMap map[entities.NodeID]int
	routes   []entities.Route
	// routesFrom indexes routes by origin
	routesFrom map[entities.NodeID][]int
}

// NewNetworkRepository creates a new in-memory network repository
func NewNetworkRepository(expectedNodes int) *NetworkRepository {
	return &NetworkRepository{
		nodes:      make([]entities.Node, 0, expectedNodes),
		nodesMap:   make(map[entities.NodeID]int, expectedNodes),
		routesFrom: make(map[entities.NodeID][]int),
	}
}

// Verify interface compliance
var _ repositories.NetworkRepository = (*NetworkRepository)(nil)

// LoadNodes loads nodes into the repository, rejecting duplicate ids
func (r *NetworkRepository) LoadNodes(nodes []*entities.Node) error {
	for _, node := range nodes {
		if _, exists := r.nodesMap[node.ID]; exists {
			return fmt.Errorf("duplicate node: %s", node.ID)
		}
		r.nodesMap[node.ID] = len(r.nodes)
		r.nodes = append(r.nodes, *node)
	}
	return nil
}

// LoadRoutes loads routes into the repository
func (r *NetworkRepository) LoadRoutes(routes []*entities.Route) error {
	for _, route := range routes {
		r.routesFrom[route.Origin] = append(r.routesFrom[route.Origin], len(r.routes))
		r.routes = append(r.routes, *route)
	}
	return nil
}

// GetNode returns the node with the given id
func (r *NetworkRepository) GetNode(id entities.NodeID) (*entities.Node, error) {
	index, exists := r.nodesMap[id]
	if !exists {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return &r.nodes[index], nil
}

// GetAllNodes returns all nodes in load order
func (r *NetworkRepository) GetAllNodes() ([]*entities.Node, error) {
	nodes := make([]*entities.Node, 0, len(r.nodes))
	for i := range r.nodes {
		nodes = append(nodes, &r.nodes[i])
	}
	return nodes, nil
}

// GetAllRoutes returns all routes in load order
func (r *NetworkRepository) GetAllRoutes() ([]*entities.Route, error) {
	routes := make([]*entities.Route, 0, len(r.routes))
	for i := range r.routes {
		routes = append(routes, &r.routes[i])
	}
	return routes, nil
}

// GetRoutesFrom returns the routes leaving origin ordered by destination
func (r *NetworkRepository) GetRoutesFrom(origin entities.NodeID) ([]*entities.Route, error) {
	var routes []*entities.Route
	for _, i := range r.routesFrom[origin] {
		routes = append(routes, &r.routes[i])
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].Destination < routes[j].Destination
	})
	return routes, nil
}
