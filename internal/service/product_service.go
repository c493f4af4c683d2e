package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"catalog-api/internal/domain"
	"catalog-api/internal/encryption"
	"catalog-api/internal/repository"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// ProductInput carries the six write-request fields. Materials and
// ImageURLs may be empty but must be present (non-nil).
type ProductInput struct {
	SKU         string
	ProductName string
	CategoryID  int64
	Price       decimal.Decimal
	Materials   []int64
	ImageURLs   []string
}

// ProductService defines the catalog business logic. SKUs are plaintext on
// this interface; encryption and decryption happen inside so neither the
// transport above nor the repositories below ever handle both forms.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (int64, error)
	Replace(ctx context.Context, id int64, input ProductInput) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context) ([]*domain.ProductView, error)
	GetByID(ctx context.Context, id int64) (*domain.ProductDetail, error)
	HighestPricePerCategory(ctx context.Context) ([]*domain.CategoryMaxPrice, error)
	PriceHistogram(ctx context.Context) ([]*domain.PriceRangeCount, error)
	ProductsWithoutMedia(ctx context.Context) ([]*domain.ProductIDName, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	ListMaterials(ctx context.Context) ([]*domain.Material, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	readRepo     repository.ProductReadRepository
	categoryRepo repository.CategoryRepository
	materialRepo repository.MaterialRepository
	cipher       *encryption.Cipher
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	productRepo repository.ProductRepository,
	readRepo repository.ProductReadRepository,
	categoryRepo repository.CategoryRepository,
	materialRepo repository.MaterialRepository,
	cipher *encryption.Cipher,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		readRepo:     readRepo,
		categoryRepo: categoryRepo,
		materialRepo: materialRepo,
		cipher:       cipher,
	}
}

// Create validates the input, encrypts the SKU and inserts the product with
// its materials and media in one transaction. Returns the new product id.
func (s *productService) Create(ctx context.Context, input ProductInput) (int64, error) {
	if err := validateInput(input); err != nil {
		return 0, err
	}

	encryptedSKU, err := s.cipher.Encrypt(input.SKU)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt SKU: %w", err)
	}

	product := &domain.Product{
		SKU:         encryptedSKU,
		ProductName: input.ProductName,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
	}

	return s.productRepo.Create(ctx, product, input.Materials, input.ImageURLs)
}

// Replace validates the input and replaces the product row, its material set
// and its media list wholesale in one transaction.
func (s *productService) Replace(ctx context.Context, id int64, input ProductInput) error {
	if err := validateInput(input); err != nil {
		return err
	}

	encryptedSKU, err := s.cipher.Encrypt(input.SKU)
	if err != nil {
		return fmt.Errorf("failed to encrypt SKU: %w", err)
	}

	product := &domain.Product{
		ProductID:   id,
		SKU:         encryptedSKU,
		ProductName: input.ProductName,
		CategoryID:  input.CategoryID,
		Price:       input.Price,
	}

	return s.productRepo.Replace(ctx, product, input.Materials, input.ImageURLs)
}

// Delete removes the product and its dependent rows. Deleting an id that
// does not exist succeeds (idempotent).
func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.productRepo.Delete(ctx, id)
}

// GetAll returns all product views with decrypted SKUs
func (s *productService) GetAll(ctx context.Context) ([]*domain.ProductView, error) {
	views, err := s.readRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, view := range views {
		view.SKU, err = s.cipher.Decrypt(view.SKU)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt SKU for product %d: %w", view.ProductID, err)
		}
	}

	return views, nil
}

// GetByID returns one product view with a decrypted SKU
func (s *productService) GetByID(ctx context.Context, id int64) (*domain.ProductDetail, error) {
	detail, err := s.readRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail.SKU, err = s.cipher.Decrypt(detail.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt SKU for product %d: %w", id, err)
	}

	return detail, nil
}

func (s *productService) HighestPricePerCategory(ctx context.Context) ([]*domain.CategoryMaxPrice, error) {
	return s.readRepo.HighestPricePerCategory(ctx)
}

func (s *productService) PriceHistogram(ctx context.Context) ([]*domain.PriceRangeCount, error) {
	return s.readRepo.CountByPriceRange(ctx)
}

func (s *productService) ProductsWithoutMedia(ctx context.Context) ([]*domain.ProductIDName, error) {
	return s.readRepo.ListWithoutMedia(ctx)
}

func (s *productService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categoryRepo.List(ctx)
}

func (s *productService) ListMaterials(ctx context.Context) ([]*domain.Material, error) {
	return s.materialRepo.List(ctx)
}

// validateInput runs before any transaction opens. Materials and ImageURLs
// must be present but may be empty; a zero price is valid, a negative one is
// not.
func validateInput(input ProductInput) error {
	if strings.TrimSpace(input.SKU) == "" {
		return fmt.Errorf("%w: sku is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.ProductName) == "" {
		return fmt.Errorf("%w: product_name is required", ErrInvalidInput)
	}
	if input.CategoryID <= 0 {
		return fmt.Errorf("%w: category_id is required", ErrInvalidInput)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if input.Materials == nil {
		return fmt.Errorf("%w: materials is required", ErrInvalidInput)
	}
	if input.ImageURLs == nil {
		return fmt.Errorf("%w: image_urls is required", ErrInvalidInput)
	}
	return nil
}
