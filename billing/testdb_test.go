package billing

import (
	"testing"
	"time"

	"mediverse-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One in-memory sqlite DB per connection; pin the pool to a single
	// connection so every session sees the same data.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Admin{},
		&models.Customer{},
		&models.CustomerAddress{},
		&models.Supplier{},
		&models.Medicine{},
		&models.Stock{},
		&models.LineItem{},
		&models.PurchaseSession{},
		&models.Invoice{},
		&models.Payment{},
		&models.Feedback{},
	))
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) models.Admin {
	t.Helper()
	admin := models.Admin{Username: "root", Email: "root@pharmacy.test"}
	admin.SetPassword("changeme123")
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func seedCustomer(t *testing.T, db *gorm.DB, name string) models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:        name,
		Email:       name + "@customers.test",
		PhoneNumber: "0000000000",
	}
	customer.SetPassword("customerpw1")
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedMedicine(t *testing.T, db *gorm.DB, name string, price float64) models.Medicine {
	t.Helper()
	medicine := models.Medicine{
		Name:        name,
		Composition: name + " 500mg",
		UnitPrice:   price,
		ExpiryDate:  time.Now().AddDate(2, 0, 0),
		Type:        "tablet",
		Active:      true,
	}
	require.NoError(t, db.Create(&medicine).Error)
	return medicine
}

func seedSupplier(t *testing.T, db *gorm.DB, name string) models.Supplier {
	t.Helper()
	supplier := models.Supplier{
		Name:        name,
		Address:     "1 Warehouse Rd",
		City:        "Chennai",
		State:       "TN",
		Zip:         "600001",
		Email:       name + "@suppliers.test",
		PhoneNumber: "1111111111",
	}
	require.NoError(t, db.Create(&supplier).Error)
	return supplier
}

func seedStock(t *testing.T, db *gorm.DB, medicineID string, supplierID uint, qty int) {
	t.Helper()
	require.NoError(t, AdjustStock(db, medicineID, supplierID, qty))
}

// groupItems assigns the given line items to one fresh session and returns
// its key.
func groupItems(t *testing.T, db *gorm.DB, customerID uint, itemIDs ...uint) string {
	t.Helper()
	require.NotEmpty(t, itemIDs)

	key, err := AssignToSession(db, customerID, itemIDs[0], "")
	require.NoError(t, err)
	for _, id := range itemIDs[1:] {
		_, err := AssignToSession(db, customerID, id, key)
		require.NoError(t, err)
	}
	return key
}
