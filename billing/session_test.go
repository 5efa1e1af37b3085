package billing

import (
	"testing"

	"mediverse-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemSnapshotsAmount(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 12.50)

	item, err := AddItem(db, customer.Id, med.Id, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 25.00, item.Amount)
	assert.Nil(t, item.SessionKey)
	assert.Nil(t, item.SupplierId)
	assert.False(t, item.Invoiced)

	// A later catalog price edit must not alter the snapshot.
	require.NoError(t, db.Model(&models.Medicine{}).Where("id = ?", med.Id).Update("unit_price", 99.99).Error)

	var reloaded models.LineItem
	require.NoError(t, db.First(&reloaded, item.Id).Error)
	assert.Equal(t, 25.00, reloaded.Amount)
}

func TestAddItemValidation(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 12.50)

	_, err := AddItem(db, customer.Id, med.Id, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = AddItem(db, customer.Id, med.Id, nil, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = AddItem(db, customer.Id, "no-such-medicine", nil, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddItemChecksSupplierStock(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "ibuprofen", 4.00)
	sup := seedSupplier(t, db, "alpha")
	seedStock(t, db, med.Id, sup.Id, 5)

	// Stock is only checked at cart time, not reserved.
	item, err := AddItem(db, customer.Id, med.Id, &sup.Id, 5)
	require.NoError(t, err)
	assert.Equal(t, &sup.Id, item.SupplierId)

	qty, err := SupplierStock(db, med.Id, sup.Id)
	require.NoError(t, err)
	assert.Equal(t, 5, qty, "adding to cart must not touch stock")

	_, err = AddItem(db, customer.Id, med.Id, &sup.Id, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestEditItemRecomputesAmount(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)
	other := seedMedicine(t, db, "cetirizine", 2.50)

	item, err := AddItem(db, customer.Id, med.Id, nil, 2)
	require.NoError(t, err)
	require.Equal(t, 20.00, item.Amount)

	qty := 4
	updated, err := EditItem(db, customer.Id, item.Id, ItemEdit{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, 40.00, updated.Amount)

	// Switching medicine recomputes from that medicine's current price.
	updated, err = EditItem(db, customer.Id, item.Id, ItemEdit{MedicineId: &other.Id})
	require.NoError(t, err)
	assert.Equal(t, 10.00, updated.Amount)

	bad := 0
	_, err = EditItem(db, customer.Id, item.Id, ItemEdit{Quantity: &bad})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = EditItem(db, customer.Id+1, item.Id, ItemEdit{Quantity: &qty})
	assert.ErrorIs(t, err, ErrNotFound, "items are scoped to their owner")
}

// A supplier is pinned per medicine: switching the medicine drops the pin
// (its stock row belongs to the old medicine), so invoicing later never
// decrements a stock row that was never checked. Pinning a new supplier in
// the same edit keeps that one.
func TestEditItemMedicineSwitchDropsSupplier(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)
	other := seedMedicine(t, db, "cetirizine", 2.50)
	sup := seedSupplier(t, db, "alpha")
	seedStock(t, db, med.Id, sup.Id, 5)

	item, err := AddItem(db, customer.Id, med.Id, &sup.Id, 2)
	require.NoError(t, err)
	require.NotNil(t, item.SupplierId)

	updated, err := EditItem(db, customer.Id, item.Id, ItemEdit{MedicineId: &other.Id})
	require.NoError(t, err)
	assert.Nil(t, updated.SupplierId)
	assert.Equal(t, 5.00, updated.Amount)

	seedStock(t, db, other.Id, sup.Id, 5)
	updated, err = EditItem(db, customer.Id, item.Id, ItemEdit{MedicineId: &med.Id, SupplierId: &sup.Id})
	require.NoError(t, err)
	require.NotNil(t, updated.SupplierId)
	assert.Equal(t, sup.Id, *updated.SupplierId)
}

func TestAssignCreatesSessionImplicitly(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	item, err := AddItem(db, customer.Id, med.Id, nil, 1)
	require.NoError(t, err)

	key, err := AssignToSession(db, customer.Id, item.Id, "")
	require.NoError(t, err)
	require.NotEmpty(t, key)

	var session models.PurchaseSession
	require.NoError(t, db.First(&session, "session_key = ?", key).Error)
	assert.Equal(t, customer.Id, session.CustomerId)
	assert.Nil(t, session.ActualAmtToPay)

	var reloaded models.LineItem
	require.NoError(t, db.First(&reloaded, item.Id).Error)
	require.NotNil(t, reloaded.SessionKey)
	assert.Equal(t, key, *reloaded.SessionKey)
}

func TestUnassignDropsEmptySession(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	item, err := AddItem(db, customer.Id, med.Id, nil, 1)
	require.NoError(t, err)
	key := groupItems(t, db, customer.Id, item.Id)

	require.NoError(t, UnassignItem(db, customer.Id, item.Id))

	var reloaded models.LineItem
	require.NoError(t, db.First(&reloaded, item.Id).Error)
	assert.Nil(t, reloaded.SessionKey)

	var sessions int64
	require.NoError(t, db.Model(&models.PurchaseSession{}).Where("session_key = ?", key).Count(&sessions).Error)
	assert.Zero(t, sessions, "empty session must cease to exist")
}

func TestAssignRejectsForeignSession(t *testing.T) {
	db := newTestDB(t)
	asha := seedCustomer(t, db, "asha")
	ravi := seedCustomer(t, db, "ravi")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	ashaItem, err := AddItem(db, asha.Id, med.Id, nil, 1)
	require.NoError(t, err)
	ashaKey := groupItems(t, db, asha.Id, ashaItem.Id)

	raviItem, err := AddItem(db, ravi.Id, med.Id, nil, 1)
	require.NoError(t, err)

	_, err = AssignToSession(db, ravi.Id, raviItem.Id, ashaKey)
	assert.ErrorIs(t, err, ErrCustomerMismatch)
}

func TestMergeSessionsMovesMembership(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	a1, err := AddItem(db, customer.Id, med.Id, nil, 1)
	require.NoError(t, err)
	a2, err := AddItem(db, customer.Id, med.Id, nil, 2)
	require.NoError(t, err)
	b1, err := AddItem(db, customer.Id, med.Id, nil, 3)
	require.NoError(t, err)

	keyA := groupItems(t, db, customer.Id, a1.Id, a2.Id)
	keyB := groupItems(t, db, customer.Id, b1.Id)

	require.NoError(t, MergeSessions(db, keyA, keyB))

	// Every item formerly keyed A is now keyed B.
	var moved int64
	require.NoError(t, db.Model(&models.LineItem{}).Where("session_key = ?", keyB).Count(&moved).Error)
	assert.EqualValues(t, 3, moved)

	var leftovers int64
	require.NoError(t, db.Model(&models.LineItem{}).Where("session_key = ?", keyA).Count(&leftovers).Error)
	assert.Zero(t, leftovers)

	// A no longer exists as a grouping.
	var sessions int64
	require.NoError(t, db.Model(&models.PurchaseSession{}).Where("session_key = ?", keyA).Count(&sessions).Error)
	assert.Zero(t, sessions)
}

func TestMergeSessionsGuards(t *testing.T) {
	db := newTestDB(t)
	asha := seedCustomer(t, db, "asha")
	ravi := seedCustomer(t, db, "ravi")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	ashaItem, err := AddItem(db, asha.Id, med.Id, nil, 1)
	require.NoError(t, err)
	raviItem, err := AddItem(db, ravi.Id, med.Id, nil, 1)
	require.NoError(t, err)

	ashaKey := groupItems(t, db, asha.Id, ashaItem.Id)
	raviKey := groupItems(t, db, ravi.Id, raviItem.Id)

	assert.ErrorIs(t, MergeSessions(db, ashaKey, raviKey), ErrCustomerMismatch)
	assert.ErrorIs(t, MergeSessions(db, ashaKey, "00000000-0000-0000-0000-000000000000"), ErrNotFound)
	assert.NoError(t, MergeSessions(db, ashaKey, ashaKey), "self-merge is a no-op")
}

func TestDeleteSessionCascades(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	i1, err := AddItem(db, customer.Id, med.Id, nil, 1)
	require.NoError(t, err)
	i2, err := AddItem(db, customer.Id, med.Id, nil, 2)
	require.NoError(t, err)
	key := groupItems(t, db, customer.Id, i1.Id, i2.Id)

	require.NoError(t, DeleteSession(db, key))

	var items int64
	require.NoError(t, db.Model(&models.LineItem{}).Where("session_key = ?", key).Count(&items).Error)
	assert.Zero(t, items)

	assert.ErrorIs(t, DeleteSession(db, key), ErrNotFound)
}

func TestSetSessionAmountOverride(t *testing.T) {
	db := newTestDB(t)
	customer := seedCustomer(t, db, "asha")
	med := seedMedicine(t, db, "paracetamol", 10.00)

	item, err := AddItem(db, customer.Id, med.Id, nil, 3)
	require.NoError(t, err)
	key := groupItems(t, db, customer.Id, item.Id)

	amount := 25.50
	require.NoError(t, SetSessionAmount(db, key, &amount))

	var session models.PurchaseSession
	require.NoError(t, db.First(&session, "session_key = ?", key).Error)
	require.NotNil(t, session.ActualAmtToPay)
	assert.Equal(t, 25.50, *session.ActualAmtToPay)

	// Clearing restores "charge the sum".
	require.NoError(t, SetSessionAmount(db, key, nil))
	require.NoError(t, db.First(&session, "session_key = ?", key).Error)
	assert.Nil(t, session.ActualAmtToPay)

	negative := -1.0
	assert.ErrorIs(t, SetSessionAmount(db, key, &negative), ErrInvalidAmount)
	assert.ErrorIs(t, SetSessionAmount(db, "00000000-0000-0000-0000-000000000000", &amount), ErrNotFound)
}
