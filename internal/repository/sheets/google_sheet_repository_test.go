package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/mamadbah2/cellar/internal/config"
)

func TestGoogleSheetRepository_ReplaceRange(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
		written [][]interface{}
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			methods = append(methods, "clear")
			_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id"}`))
		case r.Method == http.MethodPut:
			methods = append(methods, "update")
			assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
			var body struct {
				Values [][]interface{} `json:"values"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			written = body.Values
			_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id","updatedRows":2}`))
		default:
			http.Error(w, "unexpected call", http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)

	repo, err := NewGoogleSheetRepository(context.Background(),
		config.SheetsConfig{SpreadsheetID: "sheet-id"},
		nil,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	rows := [][]interface{}{{"Name", "Stock"}, {"Almaviva", "2"}}
	require.NoError(t, repo.ReplaceRange(context.Background(), "Cellar!A1", rows))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"clear", "update"}, methods)
	assert.Equal(t, rows, written)
}

func TestGoogleSheetRepository_ReplaceRangeRequiresRange(t *testing.T) {
	repo := &GoogleSheetRepository{}
	assert.Error(t, repo.ReplaceRange(context.Background(), "", nil))
}
