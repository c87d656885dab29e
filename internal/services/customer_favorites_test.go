package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/unihome/internal/models"
	"github.com/example/unihome/internal/utils"
)

func seedFavorites(t *testing.T) (*FavoriteService, []*models.User, []*models.Property) {
	t.Helper()

	db := newTestDB(t)
	svc := NewFavoriteService(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	a := createProperty(t, db, alice, models.Property{Name: "Downtown Loft", Location: "多伦多", Price: 900})
	b := createProperty(t, db, alice, models.Property{Name: "Campus Room", Location: "北京", Country: "China", Price: 3000, Currency: models.CurrencyCNY})

	for _, pair := range [][2]uint{{alice.ID, a.ID}, {bob.ID, a.ID}, {bob.ID, b.ID}} {
		_, err := svc.Add(pair[0], pair[1])
		require.NoError(t, err)
	}

	return svc, []*models.User{alice, bob}, []*models.Property{a, b}
}

func TestCustomerFavoritesSearchAndPaging(t *testing.T) {
	svc, users, _ := seedFavorites(t)

	q := ParseFavoriteQuery(func(key string) string {
		if key == "search" {
			return "bob"
		}
		return ""
	})
	favorites, total, err := CustomerFavorites(svc.db, q, utils.NewPagination("1", "1", 20, 0))
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, favorites, 1)
	assert.Equal(t, users[1].ID, favorites[0].UserID)
	require.NotNil(t, favorites[0].User)
	require.NotNil(t, favorites[0].Property)

	row := CustomerFavoriteMap(&favorites[0])
	assert.Contains(t, row, "user")
	assert.Contains(t, row, "property")
}

func TestCustomerFavoritesFilterByProperty(t *testing.T) {
	svc, _, properties := seedFavorites(t)

	favorites, err := AllCustomerFavorites(svc.db, FavoriteQuery{PropertyID: properties[0].ID})
	require.NoError(t, err)
	assert.Len(t, favorites, 2)

	favorites, err = AllCustomerFavorites(svc.db, FavoriteQuery{Search: "北京"})
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestParseFavoriteQueryDates(t *testing.T) {
	q := ParseFavoriteQuery(func(key string) string {
		switch key {
		case "date_from":
			return "2024-03-01"
		case "date_to":
			return "2024-03-02"
		case "user_id":
			return "x"
		}
		return ""
	})

	require.NotNil(t, q.DateFrom)
	require.NotNil(t, q.DateTo)
	assert.Equal(t, 1, q.DateFrom.Day())
	assert.Equal(t, 23, q.DateTo.Hour())
	assert.Equal(t, 2, q.DateTo.Day())
	assert.Zero(t, q.UserID)
}

func TestCustomerFavoriteStats(t *testing.T) {
	svc, users, properties := seedFavorites(t)

	stats, err := CustomerFavoriteStats(svc.db, time.Now())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalFavorites)
	assert.Equal(t, int64(3), stats.WeekFavorites)
	require.NotEmpty(t, stats.PopularProperties)
	assert.Equal(t, properties[0].ID, stats.PopularProperties[0].ID)
	assert.Equal(t, int64(2), stats.PopularProperties[0].FavoriteCount)
	require.NotEmpty(t, stats.ActiveUsers)
	assert.Equal(t, users[1].ID, stats.ActiveUsers[0].ID)
}

func TestWriteFavoritesCSV(t *testing.T) {
	svc, _, _ := seedFavorites(t)

	favorites, err := AllCustomerFavorites(svc.db, FavoriteQuery{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteFavoritesCSV(&buf, favorites))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, len(CSVHeader))
	}
}
