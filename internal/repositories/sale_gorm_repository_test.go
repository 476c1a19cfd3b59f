package repositories_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"panaderia/internal/apperrors"
	"panaderia/internal/models"
	"panaderia/internal/repositories"
)

// openTestDB opens a fresh named in-memory SQLite database per test so
// tests cannot see each other's rows.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Sale{}, &models.SaleItem{}))
	return db
}

type fixture struct {
	db       *gorm.DB
	sales    *repositories.GORMSaleRepository
	products *repositories.GORMProductRepository
	user     models.User
	panA     models.Product
	panB     models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)

	f := &fixture{
		db:       db,
		sales:    repositories.NewGORMSaleRepository(db),
		products: repositories.NewGORMProductRepository(db),
		user:     models.User{Email: "vendedor@panaderia.com", Password: "vendedor123", Role: models.RoleVendedor},
		panA:     models.Product{Name: "Pan Francés", Price: decimal.NewFromFloat(0.25), Stock: 100, Category: "Pan"},
		panB:     models.Product{Name: "Pan Dulce", Price: decimal.NewFromFloat(0.50), Stock: 50, Category: "Pan"},
	}
	assert.NoError(t, db.Create(&f.user).Error)
	assert.NoError(t, db.Create(&f.panA).Error)
	assert.NoError(t, db.Create(&f.panB).Error)
	return f
}

func (f *fixture) stockOf(t *testing.T, id uint) int {
	t.Helper()
	product, err := f.products.GetByID(id)
	assert.NoError(t, err)
	return product.Stock
}

func TestSaleRepository_CreateDecrementsStockAndSnapshotsPrice(t *testing.T) {
	f := newFixture(t)

	sale, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: f.panA.ID, Quantity: 30},
		{ProductID: f.panB.ID, Quantity: 20},
	})
	assert.NoError(t, err)

	assert.Equal(t, 70, f.stockOf(t, f.panA.ID))
	assert.Equal(t, 30, f.stockOf(t, f.panB.ID))

	// total = 30×0.25 + 20×0.50
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(17.50)), "total was %s", sale.Total)
	assert.Equal(t, f.user.ID, sale.UserID)
	assert.False(t, sale.Date.IsZero())

	// Read-after-write join resolves owner and products.
	assert.NotNil(t, sale.User)
	assert.Equal(t, f.user.Email, sale.User.Email)
	assert.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].UnitPrice.Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, sale.Items[1].UnitPrice.Equal(decimal.NewFromFloat(0.50)))
	assert.NotNil(t, sale.Items[0].Product)
	assert.True(t, sale.Items[0].Subtotal().Equal(decimal.NewFromFloat(7.50)))
}

func TestSaleRepository_InsufficientStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)

	// The first line would succeed; the second cannot. Nothing may stick.
	_, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: f.panA.ID, Quantity: 30},
		{ProductID: f.panB.ID, Quantity: 60},
	})
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientStock))

	var appErr *apperrors.Error
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 50, appErr.Details["available"])
	assert.Equal(t, 60, appErr.Details["requested"])

	assert.Equal(t, 100, f.stockOf(t, f.panA.ID))
	assert.Equal(t, 50, f.stockOf(t, f.panB.ID))

	var saleCount, itemCount int64
	assert.NoError(t, f.db.Model(&models.Sale{}).Count(&saleCount).Error)
	assert.NoError(t, f.db.Model(&models.SaleItem{}).Count(&itemCount).Error)
	assert.Zero(t, saleCount)
	assert.Zero(t, itemCount)
}

func TestSaleRepository_UnknownProductRollsBackEverything(t *testing.T) {
	f := newFixture(t)

	_, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: f.panA.ID, Quantity: 10},
		{ProductID: 9999, Quantity: 1},
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	assert.Contains(t, err.Error(), "9999")

	assert.Equal(t, 100, f.stockOf(t, f.panA.ID))
}

func TestSaleRepository_DuplicateLinesAccumulate(t *testing.T) {
	f := newFixture(t)

	scarce := models.Product{Name: "Croissant", Price: decimal.NewFromFloat(1.20), Stock: 5, Category: "Pan"}
	assert.NoError(t, f.db.Create(&scarce).Error)

	// 3+3 exceeds the 5 in stock once the first line's decrement lands.
	_, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: scarce.ID, Quantity: 3},
		{ProductID: scarce.ID, Quantity: 3},
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientStock))
	assert.Equal(t, 5, f.stockOf(t, scarce.ID))

	// 2+3 fits exactly and yields two independent lines.
	sale, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: scarce.ID, Quantity: 2},
		{ProductID: scarce.ID, Quantity: 3},
	})
	assert.NoError(t, err)
	assert.Equal(t, 0, f.stockOf(t, scarce.ID))
	assert.Len(t, sale.Items, 2)
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(6.00)))
}

func TestSaleRepository_ConcurrentSalesNeverOversell(t *testing.T) {
	f := newFixture(t)

	scarce := models.Product{Name: "Baguette", Price: decimal.NewFromFloat(2.00), Stock: 5, Category: "Pan"}
	assert.NoError(t, f.db.Create(&scarce).Error)

	// Two competing sales, each for the full stock. The write-time guard
	// must serialize them: one wins, one fails, stock never goes negative.
	start := make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := f.sales.Create(f.user.ID, []models.SaleLine{
				{ProductID: scarce.ID, Quantity: 5},
			})
			results <- err
		}()
	}
	close(start)

	var successes int
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			successes++
		} else {
			assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientStock), "loser got: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, f.stockOf(t, scarce.ID))

	// Exactly one sale with one line committed.
	var saleCount, itemCount int64
	assert.NoError(t, f.db.Model(&models.Sale{}).Count(&saleCount).Error)
	assert.NoError(t, f.db.Model(&models.SaleItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(1), saleCount)
	assert.Equal(t, int64(1), itemCount)
}

func TestSaleRepository_SnapshotSurvivesPriceEdit(t *testing.T) {
	f := newFixture(t)

	sale, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: f.panA.ID, Quantity: 4},
	})
	assert.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.NewFromFloat(1.00)))

	// Raise the catalog price after the sale committed.
	f.panA.Price = decimal.NewFromFloat(9.99)
	f.panA.Stock = 96
	assert.NoError(t, f.products.Update(&f.panA))

	reloaded, err := f.sales.GetByID(sale.ID)
	assert.NoError(t, err)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(decimal.NewFromFloat(0.25)))
	assert.True(t, reloaded.Total.Equal(decimal.NewFromFloat(1.00)))
}

func TestSaleRepository_DeleteRestoresStock(t *testing.T) {
	f := newFixture(t)

	sale, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: f.panA.ID, Quantity: 30},
		{ProductID: f.panB.ID, Quantity: 20},
	})
	assert.NoError(t, err)
	assert.Equal(t, 70, f.stockOf(t, f.panA.ID))

	assert.NoError(t, f.sales.Delete(sale.ID))

	assert.Equal(t, 100, f.stockOf(t, f.panA.ID))
	assert.Equal(t, 50, f.stockOf(t, f.panB.ID))

	_, err = f.sales.GetByID(sale.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
	var itemCount int64
	assert.NoError(t, f.db.Model(&models.SaleItem{}).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestSaleRepository_DeleteSkipsVanishedProduct(t *testing.T) {
	f := newFixture(t)

	sale, err := f.sales.Create(f.user.ID, []models.SaleLine{
		{ProductID: f.panA.ID, Quantity: 10},
		{ProductID: f.panB.ID, Quantity: 10},
	})
	assert.NoError(t, err)

	// Remove panB out-of-band, bypassing the referential guard.
	assert.NoError(t, f.db.Delete(&models.Product{}, f.panB.ID).Error)

	assert.NoError(t, f.sales.Delete(sale.ID))

	// panA is restored; the vanished product is skipped silently.
	assert.Equal(t, 100, f.stockOf(t, f.panA.ID))
	_, err = f.sales.GetByID(sale.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestSaleRepository_DeleteMissingSale(t *testing.T) {
	f := newFixture(t)
	err := f.sales.Delete(12345)
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestSaleRepository_GetByUserScopesToOwner(t *testing.T) {
	f := newFixture(t)

	other := models.User{Email: "admin@panaderia.com", Password: "admin123", Role: models.RoleAdmin}
	assert.NoError(t, f.db.Create(&other).Error)

	first, err := f.sales.Create(f.user.ID, []models.SaleLine{{ProductID: f.panA.ID, Quantity: 1}})
	assert.NoError(t, err)
	_, err = f.sales.Create(other.ID, []models.SaleLine{{ProductID: f.panA.ID, Quantity: 2}})
	assert.NoError(t, err)
	second, err := f.sales.Create(f.user.ID, []models.SaleLine{{ProductID: f.panB.ID, Quantity: 3}})
	assert.NoError(t, err)

	mine, err := f.sales.GetByUser(f.user.ID)
	assert.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, sale := range mine {
		assert.Equal(t, f.user.ID, sale.UserID)
	}
	// Newest first.
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := f.sales.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}
