package flyers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartsaver/backend/internal/domain"
)

func wireItem(name, merchant, price string) flyerItem {
	return flyerItem{
		Name:         name,
		Merchant:     merchant,
		CurrentPrice: price,
		ValidFrom:    time.Now().AddDate(0, 0, -1).Format(wireDateLayout),
		ValidTo:      time.Now().AddDate(0, 0, 6).Format(wireDateLayout),
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, "fr-CA", client.locale)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("test-api-key", "https://api.example.com")

	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/search", r.URL.Path)
		assert.Equal(t, "lait|milk", r.URL.Query().Get("q"))
		assert.Equal(t, "fr-CA", r.URL.Query().Get("locale"))
		assert.Equal(t, "200", r.URL.Query().Get("limit"))
		assert.Equal(t, "test-api-key", r.URL.Query().Get("api_key"))

		response := searchResponse{
			Items: []flyerItem{
				wireItem("Lait 2% 2L", "IGA", "4.50"),
				wireItem("Lait 2% 2L", "Metro", "4.75"),
			},
			Total: 2,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	ctx := context.Background()

	records, err := client.Search(ctx, []string{"lait", "milk"})

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Lait 2% 2L", records[0].ProductName)
	assert.Equal(t, "IGA", records[0].StoreName)
	assert.Equal(t, 4.50, records[0].SalePrice)
	assert.Equal(t, "Metro", records[1].StoreName)
}

func TestSearch_EmptyKeywords(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient("", server.URL)

	records, err := client.Search(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, records)
	assert.False(t, called)
}

func TestSearch_NoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["api_key"]
		assert.False(t, present)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer server.Close()

	client := NewClient("", server.URL)

	_, err := client.Search(context.Background(), []string{"lait"})
	require.NoError(t, err)
}

func TestSearch_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Search(context.Background(), []string{"introuvable"})

	// 404 means no matching flyers, not a failure
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestSearch_ServerError_Retries(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Items: []flyerItem{wireItem("Pain tranche", "Maxi", "2.99")},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Search(context.Background(), []string{"pain"})

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 3, attempts)
}

func TestSearch_AllRetriesFail(t *testing.T) {
	attempts := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Search(context.Background(), []string{"lait"})

	assert.Nil(t, records)
	assert.ErrorIs(t, err, domain.ErrFlyerAPIFailure)
	assert.Equal(t, 3, attempts)
}

func TestSearch_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Search(context.Background(), []string{"lait"})

	assert.Nil(t, records)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestSearch_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	records, err := client.Search(ctx, []string{"lait"})

	assert.Nil(t, records)
	assert.Error(t, err)
}

func TestSearch_UnknownStoresFiltered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(searchResponse{
			Items: []flyerItem{
				wireItem("Lait 2% 2L", "IGA", "4.50"),
				wireItem("Lait 2% 2L", "Costco", "3.99"),
			},
		})
	}))
	defer server.Close()

	client := NewClient("test-api-key", server.URL)

	records, err := client.Search(context.Background(), []string{"lait"})

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "IGA", records[0].StoreName)
}
