package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"catalog-api/internal/domain"
)

// The repository only ever sees ciphertext, so any unique string stands in
// for an encrypted SKU here.
func testProduct(sku string) *domain.Product {
	return &domain.Product{
		SKU:         sku,
		ProductName: "Widget",
		CategoryID:  chairsCategoryID,
		Price:       decimal.NewFromFloat(19.99),
	}
}

func countRows(t *testing.T, table string, productID int64) int {
	t.Helper()
	var count int
	err := testDB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE product_id = $1", productID).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestCreateAndFindByID(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	readRepo := NewProductReadRepository(testDB)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProduct("enc-abc-100"),
		[]int64{oakMaterialID, steelMaterialID},
		[]string{"http://x/1.png"},
	)
	require.NoError(t, err)
	require.NotZero(t, id)

	detail, err := readRepo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "enc-abc-100", detail.SKU)
	require.Equal(t, "Widget", detail.ProductName)
	require.Equal(t, chairsCategoryID, detail.CategoryID)
	require.Equal(t, "Chairs", detail.CategoryName)
	require.True(t, detail.Price.Equal(decimal.NewFromFloat(19.99)))
	require.ElementsMatch(t, []int64{oakMaterialID, steelMaterialID}, detail.MaterialIDs)
	require.Equal(t, []string{"http://x/1.png"}, detail.ImageURLs)
}

func TestCreateDuplicateSKU(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, testProduct("enc-dup"), []int64{}, []string{})
	require.NoError(t, err)

	_, err = repo.Create(ctx, testProduct("enc-dup"), []int64{}, []string{})
	require.ErrorIs(t, err, ErrDuplicateSKU)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM product").Scan(&count))
	require.Equal(t, 1, count, "duplicate create must not insert a row")
}

// A failing association insert mid-batch must roll back the whole create,
// including the already-inserted product row.
func TestCreateRollsBackOnUnknownMaterial(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, testProduct("enc-atomic"),
		[]int64{oakMaterialID, 99999, steelMaterialID},
		[]string{"http://x/1.png"},
	)
	require.ErrorIs(t, err, ErrMaterialNotFound)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM product WHERE sku = $1", "enc-atomic").Scan(&count))
	require.Zero(t, count, "product row must not survive a failed association insert")
}

func TestCreateUnknownCategory(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)

	product := testProduct("enc-nocat")
	product.CategoryID = 99999

	_, err := repo.Create(context.Background(), product, []int64{}, []string{})
	require.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCreateCollapsesDuplicateMaterials(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProduct("enc-dupmat"),
		[]int64{oakMaterialID, oakMaterialID, oakMaterialID},
		[]string{},
	)
	require.NoError(t, err)
	require.Equal(t, 1, countRows(t, "product_material", id))
}

func TestCreatePreservesMediaOrder(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	urls := []string{"http://x/3.png", "http://x/1.png", "http://x/2.png"}
	id, err := repo.Create(ctx, testProduct("enc-media"), []int64{}, urls)
	require.NoError(t, err)

	rows, err := testDB.Query("SELECT url FROM product_media WHERE product_id = $1 ORDER BY media_id", id)
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var url string
		require.NoError(t, rows.Scan(&url))
		got = append(got, url)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, urls, got, "media_id order must follow insertion order")
}

func TestReplaceIsFullReplacement(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	readRepo := NewProductReadRepository(testDB)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProduct("enc-abc-100"),
		[]int64{oakMaterialID, steelMaterialID},
		[]string{"http://x/1.png"},
	)
	require.NoError(t, err)

	replacement := testProduct("enc-abc-100")
	replacement.ProductID = id
	replacement.ProductName = "Widget v2"
	replacement.Price = decimal.NewFromFloat(24.50)

	require.NoError(t, repo.Replace(ctx, replacement, []int64{steelMaterialID}, []string{}))

	detail, err := readRepo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Widget v2", detail.ProductName)
	require.True(t, detail.Price.Equal(decimal.NewFromFloat(24.50)))
	require.Equal(t, []int64{steelMaterialID}, detail.MaterialIDs)
	require.Empty(t, detail.ImageURLs)
}

func TestReplaceMissingProduct(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)

	replacement := testProduct("enc-ghost")
	replacement.ProductID = 99999

	err := repo.Replace(context.Background(), replacement, []int64{}, []string{})
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestReplaceDuplicateSKUFromOtherProduct(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, testProduct("enc-taken"), []int64{}, []string{})
	require.NoError(t, err)

	otherID, err := repo.Create(ctx, testProduct("enc-mine"), []int64{}, []string{})
	require.NoError(t, err)

	// Stealing another product's SKU is a conflict
	replacement := testProduct("enc-taken")
	replacement.ProductID = otherID
	err = repo.Replace(ctx, replacement, []int64{}, []string{})
	require.ErrorIs(t, err, ErrDuplicateSKU)

	// Keeping your own SKU is not
	replacement = testProduct("enc-mine")
	replacement.ProductID = otherID
	require.NoError(t, repo.Replace(ctx, replacement, []int64{}, []string{}))
}

func TestDeleteCascades(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	readRepo := NewProductReadRepository(testDB)
	ctx := context.Background()

	id, err := repo.Create(ctx, testProduct("enc-gone"),
		[]int64{oakMaterialID},
		[]string{"http://x/1.png", "http://x/2.png"},
	)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	require.Zero(t, countRows(t, "product_material", id))
	require.Zero(t, countRows(t, "product_media", id))

	_, err = readRepo.FindByID(ctx, id)
	require.ErrorIs(t, err, ErrProductNotFound)

	// Deleting an id with no rows is not an error
	require.NoError(t, repo.Delete(ctx, id))
}

func TestListAggregatesPerProduct(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	readRepo := NewProductReadRepository(testDB)
	ctx := context.Background()

	_, err := repo.Create(ctx, testProduct("enc-one"),
		[]int64{oakMaterialID, steelMaterialID},
		[]string{"http://x/1.png"},
	)
	require.NoError(t, err)

	bare := testProduct("enc-two")
	bare.ProductName = "Bare"
	_, err = repo.Create(ctx, bare, []int64{}, []string{})
	require.NoError(t, err)

	views, err := readRepo.List(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]*domain.ProductView{}
	for _, view := range views {
		byName[view.ProductName] = view
	}

	require.ElementsMatch(t, []string{"Oak", "Steel"}, byName["Widget"].Materials)
	require.Equal(t, []string{"http://x/1.png"}, byName["Widget"].ImageURLs)
	require.Empty(t, byName["Bare"].Materials)
	require.Empty(t, byName["Bare"].ImageURLs)
}

func TestStatistics(t *testing.T) {
	resetProducts(t)
	repo := NewProductRepository(testDB)
	readRepo := NewProductReadRepository(testDB)
	ctx := context.Background()

	prices := []struct {
		sku      string
		name     string
		category int64
		price    float64
		media    []string
	}{
		{"enc-s1", "Cheap chair", chairsCategoryID, 120.00, []string{"http://x/c.png"}},
		{"enc-s2", "Mid chair", chairsCategoryID, 750.50, nil},
		{"enc-s3", "Grand table", tablesCategoryID, 1800.00, nil},
	}

	for _, p := range prices {
		product := &domain.Product{
			SKU:         p.sku,
			ProductName: p.name,
			CategoryID:  p.category,
			Price:       decimal.NewFromFloat(p.price),
		}
		media := p.media
		if media == nil {
			media = []string{}
		}
		_, err := repo.Create(ctx, product, []int64{}, media)
		require.NoError(t, err)
	}

	maxPrices, err := readRepo.HighestPricePerCategory(ctx)
	require.NoError(t, err)
	maxByCategory := map[string]decimal.Decimal{}
	for _, row := range maxPrices {
		maxByCategory[row.CategoryName] = row.HighestPrice
	}
	require.True(t, maxByCategory["Chairs"].Equal(decimal.NewFromFloat(750.50)))
	require.True(t, maxByCategory["Tables"].Equal(decimal.NewFromFloat(1800.00)))

	histogram, err := readRepo.CountByPriceRange(ctx)
	require.NoError(t, err)
	countByRange := map[string]int64{}
	for _, row := range histogram {
		countByRange[row.PriceRange] = row.ProductCount
	}
	require.Equal(t, int64(1), countByRange["0-500"])
	require.Equal(t, int64(1), countByRange["501-1000"])
	require.Equal(t, int64(1), countByRange["1000+"])

	noMedia, err := readRepo.ListWithoutMedia(ctx)
	require.NoError(t, err)
	require.Len(t, noMedia, 2)
	names := []string{noMedia[0].ProductName, noMedia[1].ProductName}
	require.ElementsMatch(t, []string{"Mid chair", "Grand table"}, names)
}

func TestCategoryAndMaterialLists(t *testing.T) {
	categories, err := NewCategoryRepository(testDB).List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	require.Equal(t, "Chairs", categories[0].CategoryName)

	materials, err := NewMaterialRepository(testDB).List(context.Background())
	require.NoError(t, err)
	require.Len(t, materials, 2)
	require.Equal(t, "Oak", materials[0].MaterialName)
}
