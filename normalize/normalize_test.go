package normalize_test

import (
	"testing"
	"time"

	"food-delivery-relay/models"
	"food-delivery-relay/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedID(id string) normalize.IDFunc {
	return func() string { return id }
}

func decode(t *testing.T, raw string) normalize.Payload {
	t.Helper()
	p, err := normalize.Decode([]byte(raw))
	require.NoError(t, err)
	return p
}

func TestDecode(t *testing.T) {
	t.Run("should return nil for empty body", func(t *testing.T) {
		p, err := normalize.Decode(nil)
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("should return nil for literal null", func(t *testing.T) {
		p, err := normalize.Decode([]byte(" null "))
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("should reject non-object", func(t *testing.T) {
		_, err := normalize.Decode([]byte(`[1,2]`))
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})
}

func TestRestaurant(t *testing.T) {
	t.Run("should reject missing payload", func(t *testing.T) {
		_, err := normalize.Restaurant(nil, fixedID("x"))
		require.ErrorIs(t, err, normalize.ErrMissingPayload)
	})

	t.Run("should generate id when absent", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"name":"Pizza Place"}`), fixedID("gen-1"))
		require.NoError(t, err)
		assert.Equal(t, "gen-1", patch.ID)
		require.NotNil(t, patch.Name)
		assert.Equal(t, "Pizza Place", *patch.Name)
	})

	t.Run("should keep caller id and accept numeric ids", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"id":42}`), fixedID("gen"))
		require.NoError(t, err)
		assert.Equal(t, "42", patch.ID)
	})

	t.Run("should resolve type alias for cuisine", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"id":"r1","type":"Thai"}`), fixedID("gen"))
		require.NoError(t, err)
		require.NotNil(t, patch.Cuisine)
		assert.Equal(t, "Thai", *patch.Cuisine)
	})

	t.Run("should default malformed isOpen to true", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"id":"r1","isOpen":"nope"}`), fixedID("gen"))
		require.NoError(t, err)
		require.NotNil(t, patch.IsOpen)
		assert.True(t, *patch.IsOpen)
	})

	t.Run("should keep explicit false isOpen", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"id":"r1","isOpen":false}`), fixedID("gen"))
		require.NoError(t, err)
		require.NotNil(t, patch.IsOpen)
		assert.False(t, *patch.IsOpen)
	})

	t.Run("should leave absent fields unset", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"id":"r1"}`), fixedID("gen"))
		require.NoError(t, err)
		assert.Nil(t, patch.Name)
		assert.Nil(t, patch.Rating)
		assert.Nil(t, patch.IsOpen)
		assert.Nil(t, patch.Menu)
	})

	t.Run("should resolve menuItems alias in order", func(t *testing.T) {
		patch, err := normalize.Restaurant(decode(t, `{"id":"r1","menuItems":[{"id":"m1","name":"A"},{"id":"m2","name":"B","price":"7.5"}]}`), fixedID("gen"))
		require.NoError(t, err)
		require.Len(t, patch.Menu, 2)
		assert.Equal(t, "m1", patch.Menu[0].ID)
		assert.Equal(t, "m2", patch.Menu[1].ID)
		assert.Equal(t, 7.5, patch.Menu[1].Price)
		assert.Equal(t, "r1", patch.Menu[0].RestaurantID)
	})

	t.Run("should reject non-list menu", func(t *testing.T) {
		_, err := normalize.Restaurant(decode(t, `{"id":"r1","menu":"x"}`), fixedID("gen"))
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})
}

func TestMenuItem(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		item, err := normalize.MenuItem(decode(t, `{"name":"Samosa"}`), "r1", fixedID("m-gen"))
		require.NoError(t, err)
		assert.Equal(t, models.MenuItem{ID: "m-gen", Name: "Samosa", IsVeg: true, RestaurantID: "r1"}, item)
	})

	t.Run("should keep explicit isVeg false", func(t *testing.T) {
		item, err := normalize.MenuItem(decode(t, `{"name":"Wings","isVeg":false,"price":9}`), "r1", fixedID("m"))
		require.NoError(t, err)
		assert.False(t, item.IsVeg)
		assert.Equal(t, 9.0, item.Price)
	})

	t.Run("should reject negative price", func(t *testing.T) {
		_, err := normalize.MenuItem(decode(t, `{"name":"X","price":-1}`), "r1", fixedID("m"))
		var fe *normalize.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "price", fe.Field)
	})

	t.Run("should require name", func(t *testing.T) {
		_, err := normalize.MenuItem(decode(t, `{"price":3}`), "r1", fixedID("m"))
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})

	t.Run("should reject missing payload", func(t *testing.T) {
		_, err := normalize.MenuItem(nil, "r1", fixedID("m"))
		require.ErrorIs(t, err, normalize.ErrMissingPayload)
	})
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should default status to pending", func(t *testing.T) {
		o, err := normalize.NewOrder(decode(t, `{"customerId":"c1","restaurantId":"r1","items":[{"id":"i1"}],"total":20}`), now)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, o.Status)
		assert.Equal(t, 20.0, o.Total)
		assert.Equal(t, now, o.CreatedAt)
		require.Len(t, o.Items, 1)
		assert.JSONEq(t, `{"id":"i1"}`, string(o.Items[0]))
		assert.Nil(t, o.DeliveryPartnerID)
	})

	t.Run("should fall back to timestamp id", func(t *testing.T) {
		o, err := normalize.NewOrder(decode(t, `{"customerId":"c1","restaurantId":"r1","items":[]}`), now)
		require.NoError(t, err)
		assert.Equal(t, "1714564800000", o.ID)
	})

	t.Run("should prefer caller id", func(t *testing.T) {
		o, err := normalize.NewOrder(decode(t, `{"id":"o-9","customerId":"c1","restaurantId":"r1","items":[]}`), now)
		require.NoError(t, err)
		assert.Equal(t, "o-9", o.ID)
	})

	t.Run("should reject missing correlation fields", func(t *testing.T) {
		cases := map[string]string{
			"customerId":   `{"restaurantId":"r1","items":[]}`,
			"restaurantId": `{"customerId":"c1","items":[]}`,
			"items":        `{"customerId":"c1","restaurantId":"r1"}`,
		}
		for field, raw := range cases {
			_, err := normalize.NewOrder(decode(t, raw), now)
			var fe *normalize.FieldError
			require.ErrorAs(t, err, &fe, field)
			assert.Equal(t, field, fe.Field)
		}
	})

	t.Run("should reject non-list items", func(t *testing.T) {
		_, err := normalize.NewOrder(decode(t, `{"customerId":"c1","restaurantId":"r1","items":{"a":1}}`), now)
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})

	t.Run("should reject missing payload", func(t *testing.T) {
		_, err := normalize.NewOrder(nil, now)
		require.ErrorIs(t, err, normalize.ErrMissingPayload)
	})
}

func TestOrderUpdate(t *testing.T) {
	t.Run("should read orderId alias and only present fields", func(t *testing.T) {
		patch, err := normalize.OrderUpdate(decode(t, `{"orderId":"o1","status":"ready"}`))
		require.NoError(t, err)
		assert.Equal(t, "o1", patch.ID)
		require.NotNil(t, patch.Status)
		assert.Equal(t, models.StatusReady, *patch.Status)
		assert.Nil(t, patch.Total)
		assert.Nil(t, patch.Items)
		assert.Nil(t, patch.DeliveryPartnerID)
	})

	t.Run("should require an id", func(t *testing.T) {
		_, err := normalize.OrderUpdate(decode(t, `{"status":"ready"}`))
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})
}

func TestOrderMerge(t *testing.T) {
	patch, err := normalize.OrderMerge(decode(t, `{"id":"o1","customerId":42,"restaurantId":"r1","items":[],"status":""}`), "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", patch.ID)
	require.NotNil(t, patch.CustomerID)
	assert.Equal(t, "42", *patch.CustomerID)
	assert.NotNil(t, patch.Items)
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.Total)
	assert.Nil(t, patch.DeliveryAddress)
	assert.Nil(t, patch.CustomerName)
}

func TestID(t *testing.T) {
	assert.Equal(t, "12345678", normalize.ID(12345678.0))
	assert.Equal(t, "7", normalize.ID(7.0))
	assert.Equal(t, "c1", normalize.ID(" c1 "))
	assert.Empty(t, normalize.ID(true))
}

func TestAcceptance(t *testing.T) {
	orderID, partnerID, err := normalize.Acceptance(decode(t, `{"orderId":"o1","driverId":"d7"}`))
	require.NoError(t, err)
	assert.Equal(t, "o1", orderID)
	assert.Equal(t, "d7", partnerID)

	_, _, err = normalize.Acceptance(decode(t, `{"orderId":"o1"}`))
	require.ErrorIs(t, err, normalize.ErrMalformed)
}

func TestLocation(t *testing.T) {
	now := time.Now()

	t.Run("should read flat coordinates", func(t *testing.T) {
		ping, err := normalize.Location(decode(t, `{"orderId":"o1","lat":12.5,"lng":77.1}`), now)
		require.NoError(t, err)
		assert.Equal(t, 12.5, ping.Lat)
		assert.Equal(t, 77.1, ping.Lng)
	})

	t.Run("should read nested location", func(t *testing.T) {
		ping, err := normalize.Location(decode(t, `{"orderId":"o1","location":{"latitude":1,"longitude":2}}`), now)
		require.NoError(t, err)
		assert.Equal(t, 1.0, ping.Lat)
		assert.Equal(t, 2.0, ping.Lng)
	})

	t.Run("should require coordinates", func(t *testing.T) {
		_, err := normalize.Location(decode(t, `{"orderId":"o1"}`), now)
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})
}

func TestMenuAppend(t *testing.T) {
	t.Run("should read nested item", func(t *testing.T) {
		rid, item, err := normalize.MenuAppend(decode(t, `{"restaurantId":"r1","item":{"name":"Naan"}}`))
		require.NoError(t, err)
		assert.Equal(t, "r1", rid)
		assert.Equal(t, "Naan", item["name"])
	})

	t.Run("should read inline item without the restaurant key", func(t *testing.T) {
		rid, item, err := normalize.MenuAppend(decode(t, `{"restaurantId":"r1","name":"Naan","price":2}`))
		require.NoError(t, err)
		assert.Equal(t, "r1", rid)
		assert.Equal(t, "Naan", item["name"])
		_, hasRestaurant := item["restaurantId"]
		assert.False(t, hasRestaurant)
	})

	t.Run("should require restaurantId", func(t *testing.T) {
		_, _, err := normalize.MenuAppend(decode(t, `{"name":"Naan"}`))
		require.ErrorIs(t, err, normalize.ErrMalformed)
	})
}
