package mock

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studiowebux/carcli/internal/types"
)

type testAPI struct {
	t     *testing.T
	srv   *httptest.Server
	mock  *Server
	token string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	m := NewServer(DefaultConfig(), nil)
	srv := httptest.NewServer(m.Handler())
	t.Cleanup(srv.Close)

	api := &testAPI{t: t, srv: srv, mock: m}
	api.token = api.login("admin", "admin")
	return api
}

func (a *testAPI) login(user, pass string) string {
	body, _ := json.Marshal(types.Credentials{Username: user, Password: pass})
	resp, err := http.Post(a.srv.URL+"/user/login", "application/json", bytes.NewReader(body))
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ""
	}
	var tok types.TokenResponse
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&tok))
	return tok.Token
}

func (a *testAPI) do(method, path string, body io.Reader, contentType string) *http.Response {
	req, err := http.NewRequest(method, a.srv.URL+path, body)
	require.NoError(a.t, err)
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	a.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) page(query string) types.PageResult {
	resp := a.do(http.MethodGet, "/car/byPage?"+query, nil, "")
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	var page types.PageResult
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&page))
	return page
}

func carForm(t *testing.T, draft types.CarDraft, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	data, err := json.Marshal(draft)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("car", string(data)))
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		io.WriteString(fw, content)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	assert.NotEmpty(t, api.token)
	assert.Empty(t, api.login("admin", "wrong"))

	sub, err := api.mock.verifyToken(api.token)
	require.NoError(t, err)
	assert.Equal(t, "admin", sub)
}

func TestRoutesRequireBearer(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/brand", nil, "").StatusCode)

	api.token = "not-a-jwt"
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/car", nil, "").StatusCode)
}

func TestCarsByPage_DefaultsAndMetadata(t *testing.T) {
	api := newTestAPI(t)

	page := api.page("pageNo=0&pageSize=5&sortBy=id&sortDir=asc&searchTerm=")
	require.Len(t, page.Content, 5)
	assert.Equal(t, int64(1), page.Content[0].IDValue())
	assert.Equal(t, int64(len(demoCars)), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.Last)

	last := api.page("pageNo=2&pageSize=5")
	assert.Len(t, last.Content, 2)
	assert.True(t, last.Last)
}

func TestCarsByPage_FiltersAndSearch(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"brand equality", "brand=Toyota", 3},
		{"brand is not a substring match", "brand=Toy", 0},
		{"specification like", "specification=civic", 1},
		{"search spec or brand", "searchTerm=bmw", 3},
		{"search spec", "searchTerm=yaris", 1},
		{"new only", "isNew=true", 7},
		{"price range", "minPrice=20000&maxPrice=45000", 5},
		{"engine", "engineLiter=3", 3},
		{"date range", "minDate=2023-01-01T00:00:00&maxDate=2023-12-31T23:59:59", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := api.page("pageSize=50&" + tt.query)
			assert.Len(t, page.Content, tt.want)
		})
	}
}

func TestCarsByPage_SortByBrandName(t *testing.T) {
	api := newTestAPI(t)

	page := api.page("pageSize=50&sortBy=brand&sortDir=desc")
	require.NotEmpty(t, page.Content)
	assert.Equal(t, "Toyota", page.Content[0].Brand.Name)
	assert.Equal(t, "Audi", page.Content[len(page.Content)-1].Brand.Name)

	resp := api.do(http.MethodGet, "/car/byPage?sortBy=colour", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCarLifecycleWithUpload(t *testing.T) {
	api := newTestAPI(t)

	body, ct := carForm(t, types.CarDraft{
		Brand:         &types.Brand{ID: 3, Name: "Toyota"},
		Specification: "Supra",
		Price:         types.Float(60000),
		IsNew:         types.Bool(true),
	}, "supra.png", "PNGDATA")
	resp := api.do(http.MethodPost, "/car", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created types.Car
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Toyota", created.Brand.Name)
	require.NotNil(t, created.Image)
	assert.True(t, strings.HasSuffix(created.Image.Filename, "_supra.png"))

	img := api.do(http.MethodGet, "/uploads/"+created.Image.Filename, nil, "")
	data, _ := io.ReadAll(img.Body)
	assert.Equal(t, "PNGDATA", string(data))

	body, ct = carForm(t, types.CarDraft{Specification: "Supra GR"}, "", "")
	resp = api.do(http.MethodPut, "/car/13", body, ct)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated types.Car
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	assert.Equal(t, "Supra GR", updated.Specification)
	assert.Equal(t, 60000.0, updated.Price, "partial update keeps other fields")
	assert.NotNil(t, updated.Image)

	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/car/13", nil, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/car/13", nil, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/uploads/"+created.Image.Filename, nil, "").StatusCode)
}

func TestCreateCar_UnknownBrand(t *testing.T) {
	api := newTestAPI(t)
	body, ct := carForm(t, types.CarDraft{BrandID: 404, Specification: "Ghost"}, "", "")
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodPost, "/car", body, ct).StatusCode)
}

func TestBrandCRUD(t *testing.T) {
	api := newTestAPI(t)

	resp := api.do(http.MethodPost, "/brand", strings.NewReader(`{"name":"Mazda"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b types.Brand
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&b))
	assert.Equal(t, int64(6), b.ID)

	resp = api.do(http.MethodPut, "/brand/1", strings.NewReader(`{"name":"BMW AG"}`), "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, api.page("pageSize=50&brand=BMW%20AG").Content, 3, "rename propagates to cars")

	assert.Equal(t, http.StatusConflict, api.do(http.MethodDelete, "/brand/1", nil, "").StatusCode)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, "/brand/6", nil, "").StatusCode)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, "/brand/6", nil, "").StatusCode)

	resp = api.do(http.MethodPost, "/brand", strings.NewReader(`{"name":"  "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestLog(t *testing.T) {
	api := newTestAPI(t)
	api.mock.DrainLogs()
	api.do(http.MethodGet, "/nothing", nil, "")
	api.do(http.MethodGet, "/brand", nil, "")

	logs := api.mock.DrainLogs()
	require.Len(t, logs, 1, "unmatched routes are not logged")
	assert.Equal(t, "/brand", logs[0].Route)
	assert.Equal(t, http.StatusOK, logs[0].Status)
	assert.Empty(t, api.mock.DrainLogs())
}

func TestWatch(t *testing.T) {
	api := newTestAPI(t)
	api.mock.DrainLogs()
	api.do(http.MethodGet, "/brand", nil, "")
	api.do(http.MethodDelete, "/car/999", nil, "")

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var seen []RequestLog
	api.mock.Watch(ctx, func(e RequestLog) { seen = append(seen, e) })

	require.Len(t, seen, 2)
	assert.Equal(t, "/brand", seen[0].Path)
	assert.Equal(t, http.MethodDelete, seen[1].Method)
	assert.Equal(t, "/car/{id:[0-9]+}", seen[1].Route)
	assert.Equal(t, http.StatusNotFound, seen[1].Status)
}

func TestWatch_Live(t *testing.T) {
	api := newTestAPI(t)
	api.mock.DrainLogs()

	ctx, cancel := context.WithCancel(t.Context())
	got := make(chan RequestLog, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		api.mock.Watch(ctx, func(e RequestLog) {
			got <- e
			cancel()
		})
	}()

	api.do(http.MethodGet, "/car", nil, "")
	select {
	case e := <-got:
		assert.Equal(t, "/car", e.Path)
	case <-time.After(time.Second):
		t.Fatal("request was not delivered")
	}
	<-done
}
