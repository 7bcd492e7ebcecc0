package memory

import (
	"fmt"

	"github.com/sverzijl/planning-latest-sub007/pkg/domain/entities"
	"github.com/sverzijl/planning-latest-sub007/pkg/domain/repositories"
)

// ProductRepository provides in-memory product storage
type ProductRepository struct {
	products    []entities.Product
	productsMap map[entities.ProductID]int
}

// NewProductRepository creates a new in-memory product repository
func NewProductRepository(expectedProducts int) *ProductRepository {
	return &ProductRepository{
		products:    make([]entities.Product, 0, expectedProducts),
		productsMap: make(map[entities.ProductID]int, expectedProducts),
	}
}

// Verify interface compliance
var _ repositories.ProductRepository = (*ProductRepository)(nil)

// LoadProducts loads products into the repository. A later product with the
// same id replaces the earlier one.
func (r *ProductRepository) LoadProducts(products []*entities.Product) error {
	for _, product := range products {
		r.AddProduct(*product)
	}
	return nil
}

// AddProduct adds or replaces a product
func (r *ProductRepository) AddProduct(product entities.Product) {
	if index, exists := r.productsMap[product.ID]; exists {
		r.products[index] = product
		return
	}
	r.productsMap[product.ID] = len(r.products)
	r.products = append(r.products, product)
}

// GetProduct returns product master data
func (r *ProductRepository) GetProduct(id entities.ProductID) (*entities.Product, error) {
	index, exists := r.productsMap[id]
	if !exists {
		return nil, fmt.Errorf("product not found: %s", id)
	}
	return &r.products[index], nil
}

// GetAllProducts returns all products
func (r *ProductRepository) GetAllProducts() ([]*entities.Product, error) {
	products := make([]*entities.Product, 0, len(r.products))
	for i := range r.products {
		products = append(products, &r.products[i])
	}
	return products, nil
}
