package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zibot/farmconnect/internal/adapter/apiclient"
	"github.com/zibot/farmconnect/internal/apitest"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/pkg/formdata"
)

func strPtr(s string) *string { return &s }

func newClient(t *testing.T, srv *apitest.Server) apiclient.Client {
	t.Helper()
	c, err := apiclient.New(apiclient.BaseURLOpt(srv.URL()))
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("MissingBaseURL", func(t *testing.T) {
		_, err := apiclient.New()
		assert.ErrorIs(t, err, apiclient.ErrNoBaseURL)
	})

	t.Run("RelativeBaseURL", func(t *testing.T) {
		_, err := apiclient.New(apiclient.BaseURLOpt("/api/v1"))
		assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)
	})

	t.Run("TrailingSlashTrimmed", func(t *testing.T) {
		c, err := apiclient.New(apiclient.BaseURLOpt("http://localhost:8000/api/v1/"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api/v1", c.BaseURL())
	})
}

func TestClientHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := apiclient.New(
		apiclient.BaseURLOpt(srv.URL),
		apiclient.UserAgentOpt("farmconnect-test"),
	)
	require.NoError(t, err)

	_, err = c.ListProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "farmconnect-test", got.Get("User-Agent"))
	_, err = uuid.Parse(got.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestClientStatusError(t *testing.T) {
	t.Run("BodyBecomesMessage", func(t *testing.T) {
		srv := apitest.NewServer(t)
		srv.Fail(http.MethodGet, "/products", http.StatusForbidden, `{"detail":"Not allowed"}`)
		c := newClient(t, srv)

		_, err := c.ListProducts(context.Background())
		var se *apiclient.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusForbidden, se.StatusCode)
		assert.Equal(t, `{"detail":"Not allowed"}`, se.Message)
		assert.Equal(t, "Not allowed", se.Detail())
		assert.Equal(t, `{"detail":"Not allowed"}`, apiclient.Message(err))
	})

	t.Run("EmptyBodyFallback", func(t *testing.T) {
		srv := apitest.NewServer(t)
		srv.Fail(http.MethodGet, "/products", http.StatusInternalServerError, "")
		c := newClient(t, srv)

		_, err := c.ListProducts(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Request failed: 500", apiclient.Message(err))
	})

	t.Run("PlainDetail", func(t *testing.T) {
		se := &apiclient.StatusError{StatusCode: 502, Message: "bad gateway"}
		assert.Equal(t, "bad gateway", se.Detail())
	})
}

func TestClientDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c, err := apiclient.New(apiclient.BaseURLOpt(srv.URL))
	require.NoError(t, err)

	_, err = c.ListProducts(context.Background())
	require.Error(t, err)
	var se *apiclient.StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClientCanceledContext(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListProducts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientLogin(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedUser(apitest.User{
		ID: 7, Name: "Ann", Email: "ann@farm.io", Role: "seller", Password: "pw",
	})
	c := newClient(t, srv)

	u, err := c.Login(context.Background(), domain.Credentials{
		Email: "ann@farm.io", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.User{
		ID: 7, Name: "Ann", Email: "ann@farm.io", Role: domain.RoleSeller,
	}, u)

	calls := srv.CallsTo(http.MethodPost, "/auth/login")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"email":"ann@farm.io","password":"pw"}`, string(calls[0].Body))

	_, err = c.Login(context.Background(), domain.Credentials{
		Email: "ann@farm.io", Password: "wrong",
	})
	var se *apiclient.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Invalid email or password", se.Detail())
}

func TestClientSignup(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	u, err := c.Signup(context.Background(), domain.Registration{
		Name: "Bo", Email: "bo@farm.io", Password: "pw", Role: domain.RoleBuyer,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleBuyer, u.Role)
	assert.Equal(t, "bo@farm.io", u.Email)

	calls := srv.CallsTo(http.MethodPost, "/auth/signup")
	require.Len(t, calls, 1)
	assert.JSONEq(t,
		`{"name":"Bo","email":"bo@farm.io","password":"pw","role":"buyer"}`,
		string(calls[0].Body),
	)
}

func TestClientListProducts(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedProducts(
		apitest.Product{
			ID: 1, Name: "Tomatoes", Price: 2.5, Quantity: 10, Category: "Vegetables",
			Location: strPtr("Kent"), SellerID: 3, Status: "approved",
		},
		apitest.Product{ID: 2, Name: "Milk", Price: 1, Quantity: 4, Category: "Dairy"},
	)
	c := newClient(t, srv)

	ps, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 2)

	assert.Equal(t, "Tomatoes", ps[0].Name)
	assert.True(t, decimal.RequireFromString("2.5").Equal(ps[0].Price))
	assert.Equal(t, "Kent", ps[0].Location)
	assert.Equal(t, "", ps[0].Description)
	assert.Equal(t, domain.StatusApproved, ps[0].Status)
	assert.Equal(t, domain.StatusPending, ps[1].Status)
}

func TestClientCreateProduct(t *testing.T) {
	srv := apitest.NewServer(t)
	c := newClient(t, srv)

	f := formdata.New().
		Add("name", "Eggs").
		Add("price", "3.20").
		Add("quantity", "12").
		Add("category", "Dairy").
		Add("seller_id", "7")

	p, err := c.CreateProduct(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, int64(7), p.SellerID)

	calls := srv.CallsTo(http.MethodPost, "/products")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"Eggs"}, calls[0].Form["name"])
	assert.Equal(t, []string{"3.20"}, calls[0].Form["price"])
	assert.Nil(t, calls[0].Upload)
}

func TestClientUpdateProductForm(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedProducts(apitest.Product{ID: 4, Name: "Kale", Price: 1, Quantity: 1, Category: "Vegetables"})
	c := newClient(t, srv)

	f := formdata.New().Add("name", "Curly kale")
	require.NoError(t, f.Attach(formdata.Attachment{
		Field: "image", FileName: "kale.png", ContentType: "image/png", Content: []byte{0x89, 'P', 'N', 'G'},
	}))

	p, err := c.UpdateProductForm(context.Background(), 4, f)
	require.NoError(t, err)
	assert.Equal(t, "Curly kale", p.Name)
	assert.Equal(t, "https://cdn.test/kale.png", p.ImageURL)

	calls := srv.CallsTo(http.MethodPatch, "/products/4/form")
	require.Len(t, calls, 1)
	require.NotNil(t, calls[0].Upload)
	assert.Equal(t, "kale.png", calls[0].Upload.FileName)
	assert.Equal(t, "image/png", calls[0].Upload.ContentType)
}

func TestClientDeleteProduct(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedProducts(apitest.Product{ID: 9, Name: "Honey", Category: "Pantry"})
	c := newClient(t, srv)

	require.NoError(t, c.DeleteProduct(context.Background(), 9))
	assert.Empty(t, srv.Products())

	var se *apiclient.StatusError
	err := c.DeleteProduct(context.Background(), 9)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestClientBulk(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedProducts(
		apitest.Product{ID: 1, Name: "A", Category: "X"},
		apitest.Product{ID: 2, Name: "B", Category: "X"},
		apitest.Product{ID: 3, Name: "C", Category: "Y"},
	)
	c := newClient(t, srv)
	ctx := context.Background()

	updated, err := c.BulkUpdateStatus(ctx, []int64{1, 3}, domain.StatusBlocked)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, p := range updated {
		assert.Equal(t, domain.StatusBlocked, p.Status)
	}

	calls := srv.CallsTo(http.MethodPost, "/products/bulk/status")
	require.Len(t, calls, 1)
	var body struct {
		IDs    []int64 `json:"ids"`
		Status string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Equal(t, []int64{1, 3}, body.IDs)
	assert.Equal(t, "blocked", body.Status)

	n, err := c.BulkDeleteProducts(ctx, []int64{1, 2, 42})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, srv.Products(), 1)
}
